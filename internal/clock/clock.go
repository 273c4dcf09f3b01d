package clock

import (
	"time"
	_ "time/tzdata" // zone database must be present regardless of the host image

	"support-lookup/internal/apperr"
)

// DefaultZone is the civil zone used for display timestamps.
const DefaultZone = "America/Sao_Paulo"

// Display layouts. DisplayLayout is dd/MM/yyyy HH:mm:ss.
const (
	DisplayLayout      = "02/01/2006 15:04:05"
	DisplayLayoutZoned = DisplayLayout + " MST"
)

// Clock supplies the current instant.
// Operations that depend on time take "now" as a parameter; only handlers read a Clock.
type Clock interface {
	Now() time.Time
}

// System is the wall clock, normalized to UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// LoadZone resolves a zone identifier. Unknown ids are a configuration error.
func LoadZone(id string) (*time.Location, error) {
	if id == "" {
		id = DefaultZone
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, apperr.Configuration("APP_TIMEZONE", err)
	}
	return loc, nil
}

// Format projects t into loc using layout. t is not modified.
func Format(t time.Time, loc *time.Location, layout string) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(layout)
}
