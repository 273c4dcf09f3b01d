package protocols

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"support-lookup/internal/apperr"
)

// NOTE: This repository assumes the protocolos_detalhados table from
// internal/store/schema.sql, indexed on (numero_telefone, data_criacao DESC).

// Repository is the persistence contract for protocol details.
type Repository interface {
	FindByProtocol(ctx context.Context, protocol string) (ProtocolDetail, error)

	// FindLatestByPhoneSince returns the most recent row for phone with
	// data_criacao >= since. Ties on identical instants resolve to the
	// greatest protocol string.
	FindLatestByPhoneSince(ctx context.Context, phone string, since time.Time) (ProtocolDetail, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const selectColumns = `protocolo, data_criacao, numero_telefone, campo_custom_1, campo_custom_2, campo_custom_3, campo_custom_4`

func (r *PostgresRepo) FindByProtocol(ctx context.Context, protocol string) (ProtocolDetail, error) {
	const q = `
SELECT ` + selectColumns + `
FROM protocolos_detalhados
WHERE protocolo = $1
ORDER BY data_criacao DESC
LIMIT 1
`
	return scanDetail(r.db.QueryRowContext(ctx, q, protocol), "select protocolo")
}

func (r *PostgresRepo) FindLatestByPhoneSince(ctx context.Context, phone string, since time.Time) (ProtocolDetail, error) {
	const q = `
SELECT ` + selectColumns + `
FROM protocolos_detalhados
WHERE numero_telefone = $1 AND data_criacao >= $2
ORDER BY data_criacao DESC, protocolo DESC
LIMIT 1
`
	return scanDetail(r.db.QueryRowContext(ctx, q, phone, since), "select protocolo por telefone")
}

func scanDetail(row *sql.Row, op string) (ProtocolDetail, error) {
	var d ProtocolDetail
	if err := row.Scan(
		&d.Protocol,
		&d.CreatedAt,
		&d.PhoneNumber,
		&d.Custom1,
		&d.Custom2,
		&d.Custom3,
		&d.Custom4,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProtocolDetail{}, apperr.ErrNotFound
		}
		return ProtocolDetail{}, apperr.Store(op, err)
	}
	d.CreatedAt = d.CreatedAt.UTC()
	return d, nil
}
