package rawdata

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Payload is one raw upstream response body, kept verbatim for archiving.
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	RunID       string
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}

func NewPayload(source, entityType, entityKey string, raw []byte, fetchedAt time.Time) Payload {
	sum := sha256.Sum256(raw)
	return Payload{
		Source:      source,
		EntityType:  entityType,
		EntityKey:   entityKey,
		PayloadJSON: string(raw),
		PayloadHash: hex.EncodeToString(sum[:]),
		FetchedAt:   fetchedAt.UTC(),
	}
}

func (p Payload) Empty() bool {
	return p.PayloadJSON == ""
}
