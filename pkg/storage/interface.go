package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type EventStorage interface {
	Append(ctx context.Context, event *Event) error
	AppendTx(ctx context.Context, tx pgx.Tx, event *Event) error
	Load(ctx context.Context) ([]Event, error)
	LastSeq(ctx context.Context) (int64, error)
}
