package customers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Column names with conversion rules. Every other column passes through as read.
const (
	ColumnTaxID       = "cpf"
	ColumnOpenInvoice = "fatura_aberta"
)

// Customer is a read-only billing record keyed by tax ID (CPF).
type Customer struct {
	TaxID       string
	OpenInvoice bool

	// Attributes holds the remaining columns unchanged.
	Attributes map[string]any
}

// MarshalJSON flattens the row: pass-through columns plus cpf and the
// open-invoice flag as a JSON boolean.
func (c Customer) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Attributes)+2)
	for k, v := range c.Attributes {
		out[k] = v
	}
	out[ColumnTaxID] = c.TaxID
	out[ColumnOpenInvoice] = c.OpenInvoice
	return json.Marshal(out)
}

// customerFromRow builds a Customer from a column->value map.
func customerFromRow(row map[string]any) (Customer, error) {
	c := Customer{Attributes: make(map[string]any, len(row))}
	for k, v := range row {
		switch k {
		case ColumnTaxID:
			c.TaxID = fmt.Sprint(v)
		case ColumnOpenInvoice:
			b, err := openInvoiceFlag(v)
			if err != nil {
				return Customer{}, err
			}
			c.OpenInvoice = b
		default:
			c.Attributes[k] = v
		}
	}
	return c, nil
}

// openInvoiceFlag decodes the 0/1 storage encoding. Only 1 is true.
func openInvoiceFlag(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case int64:
		return x == 1, nil
	case int32:
		return x == 1, nil
	case int16:
		return x == 1, nil
	case int:
		return x == 1, nil
	case string:
		return parseFlag(x)
	case []byte:
		return parseFlag(string(x))
	default:
		return false, fmt.Errorf("fatura_aberta: unsupported type %T", v)
	}
}

func parseFlag(s string) (bool, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return false, fmt.Errorf("fatura_aberta: %w", err)
	}
	return n == 1, nil
}
