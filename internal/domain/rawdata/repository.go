package rawdata

import "context"

// Repository archives raw payloads, keeping the latest body per
// (source, entity type, entity key).
type Repository interface {
	UpsertMany(ctx context.Context, items []Payload) error
}
