package store

import (
	"context"
	"errors"

	"go-hazardwatch/types"
)

// ErrNotFound is returned when a report id is unknown to the store.
var ErrNotFound = errors.New("report not found")

// Store is the durable mapping of report id to report record.
//
// Update runs mutate against the current record and persists the result;
// implementations must apply the read-modify-write as a single serialized
// step so concurrent transitions cannot discard each other's writes.
type Store interface {
	Create(ctx context.Context, report types.Report) error
	Get(ctx context.Context, id string) (types.Report, error)
	List(ctx context.Context) ([]types.Report, error)
	Update(ctx context.Context, id string, mutate func(*types.Report) error) (types.Report, error)
}
