package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresEventStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresEventStorage(pool *pgxpool.Pool) *PostgresEventStorage {
	return &PostgresEventStorage{pool: pool}
}

func (s *PostgresEventStorage) AppendTx(ctx context.Context, tx pgx.Tx, event *Event) error {
	query := `INSERT INTO ledger_events (height, sender, op, payload) VALUES ($1, $2, $3, $4) RETURNING seq, applied_at`
	return tx.QueryRow(ctx, query, event.Height, event.Sender, event.Op, event.Payload).Scan(&event.Seq, &event.AppliedAt)
}

func (s *PostgresEventStorage) Append(ctx context.Context, event *Event) error {
	query := `INSERT INTO ledger_events (height, sender, op, payload) VALUES ($1, $2, $3, $4) RETURNING seq, applied_at`
	return s.pool.QueryRow(ctx, query, event.Height, event.Sender, event.Op, event.Payload).Scan(&event.Seq, &event.AppliedAt)
}

func (s *PostgresEventStorage) Load(ctx context.Context) ([]Event, error) {
	query := `SELECT seq, height, sender, op, payload, applied_at FROM ledger_events ORDER BY seq ASC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Height, &e.Sender, &e.Op, &e.Payload, &e.AppliedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *PostgresEventStorage) LastSeq(ctx context.Context) (int64, error) {
	query := `SELECT seq FROM ledger_events ORDER BY seq DESC LIMIT 1`
	var seq int64
	err := s.pool.QueryRow(ctx, query).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return seq, nil
}
