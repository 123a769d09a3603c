// Package store reads the immutable input snapshot the index engine
// computes over, from either Postgres or a local SQLite file.
package store

import (
	"context"

	"github.com/sberindex/ndi-cli/internal/model"
)

// Source exposes the read-only input tables of one snapshot. Ingestion
// owns writing them; the engine only reads.
type Source interface {
	// Registries
	Settlements(ctx context.Context) ([]model.Settlement, error)
	Regions(ctx context.Context) ([]model.Region, error)
	Municipalities(ctx context.Context) ([]model.Municipality, error)
	Attributes(ctx context.Context) (map[int64]model.Attributes, error)

	// Raw component observations
	MarketAccess(ctx context.Context) ([]model.Observation, error)
	Consumption(ctx context.Context) ([]model.Observation, error)
	Mobility(ctx context.Context) ([]model.Observation, error)
	ClimateMonthly(ctx context.Context) ([]model.ClimateObservation, error)

	// Pre-normalized components (settlement-keyed, already [0,1])
	POADScores(ctx context.Context) (map[int64]float64, error)
	AccessibilityScores(ctx context.Context) (map[int64]float64, error)

	// Upstream helper inputs (accessibility builder)
	Coordinates(ctx context.Context) ([]model.Coordinates, error)
	Population(ctx context.Context) (map[int64]int64, error)

	Close() error
}
