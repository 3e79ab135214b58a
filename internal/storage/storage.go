package storage

import (
	"context"

	"taikodata/internal/model"
)

// Sink receives top-token snapshot rows.
type Sink interface {
	PutSnapshots(ctx context.Context, rows []model.TokenSnapshot) error
}
