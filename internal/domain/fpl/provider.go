package fpl

import (
	"context"

	"github.com/riskibarqy/fpl-collector/internal/domain/rawdata"
)

// Provider fetches FPL endpoints. Every method returns the raw body alongside the
// decoded value so it can be archived as-is.
type Provider interface {
	FetchBootstrap(ctx context.Context) (Bootstrap, rawdata.Payload, error)
	// FetchFixtures returns all fixtures when gameweek is 0.
	FetchFixtures(ctx context.Context, gameweek int) ([]Fixture, rawdata.Payload, error)
	FetchLiveGameweek(ctx context.Context, gameweek int) (Record, rawdata.Payload, error)
	FetchPlayerSummary(ctx context.Context, playerID int64) (PlayerHistory, rawdata.Payload, error)
}
