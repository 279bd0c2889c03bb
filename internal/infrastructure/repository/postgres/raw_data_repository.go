package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fpl-collector/internal/domain/rawdata"
	qb "github.com/riskibarqy/fpl-collector/internal/platform/querybuilder"
)

const (
	rawPayloadTable = "fpl_raw_payloads"
	// bootstrap-static alone is ~2MB, keep statements small.
	rawPayloadBatchSize = 25
)

var rawPayloadConflict = qb.Conflict{
	Target:      []string{"source", "entity_type", "entity_key"},
	Excluded:    []string{"run_id", "payload", "payload_hash", "fetched_at"},
	Set:         []string{"ingested_at = NOW()"},
	ChangedOnly: []string{"payload_hash"},
}

// RawDataRepository keeps the latest body of every endpoint. A body whose hash did not
// change since the previous run is left untouched.
type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

func (r *RawDataRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	err := r.upsertTx(ctx, items)
	if isPreparedStatementConflict(err) {
		err = r.upsertTx(ctx, items)
	}
	return err
}

func (r *RawDataRepository) upsertTx(ctx context.Context, items []rawdata.Payload) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert raw payloads: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for start := 0; start < len(items); start += rawPayloadBatchSize {
		end := start + rawPayloadBatchSize
		if end > len(items) {
			end = len(items)
		}

		rows := make([]rawPayloadInsertModel, 0, end-start)
		for _, item := range items[start:end] {
			rows = append(rows, rawPayloadInsertModel{
				Source:      item.Source,
				EntityType:  item.EntityType,
				EntityKey:   item.EntityKey,
				RunID:       item.RunID,
				Payload:     item.PayloadJSON,
				PayloadHash: item.PayloadHash,
				FetchedAt:   item.FetchedAt,
			})
		}

		query, args, err := buildRawPayloadUpsert(rows)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert raw payloads batch=%d size=%d: %w", start/rawPayloadBatchSize, len(rows), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert raw payloads tx: %w", err)
	}
	return nil
}

func buildRawPayloadUpsert(rows []rawPayloadInsertModel) (string, []any, error) {
	builder, err := qb.InsertModels(rawPayloadTable, dedupeRawPayloads(rows))
	if err != nil {
		return "", nil, fmt.Errorf("build upsert raw payload query: %w", err)
	}
	query, args, err := builder.OnConflict(rawPayloadConflict).ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("render upsert raw payload query: %w", err)
	}
	return query, args, nil
}

// dedupeRawPayloads keeps the last row per conflict key; Postgres rejects a statement
// that touches the same row twice.
func dedupeRawPayloads(rows []rawPayloadInsertModel) []rawPayloadInsertModel {
	type key struct{ source, entityType, entityKey string }
	index := make(map[key]int, len(rows))
	out := make([]rawPayloadInsertModel, 0, len(rows))
	for _, row := range rows {
		k := key{row.Source, row.EntityType, row.EntityKey}
		if idx, ok := index[k]; ok {
			out[idx] = row
			continue
		}
		index[k] = len(out)
		out = append(out, row)
	}
	return out
}

type rawPayloadInsertModel struct {
	Source      string    `db:"source"`
	EntityType  string    `db:"entity_type"`
	EntityKey   string    `db:"entity_key"`
	RunID       string    `db:"run_id"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}
