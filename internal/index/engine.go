package index

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sberindex/ndi-cli/internal/cohort"
	"github.com/sberindex/ndi-cli/internal/model"
	"github.com/sberindex/ndi-cli/internal/store"
)

// Engine runs the full NDI pipeline over one input snapshot. It is a pure
// transformation: two runs against identical snapshots produce identical
// records.
type Engine struct {
	src store.Source
}

// NewEngine creates an Engine over the given snapshot source.
func NewEngine(src store.Source) *Engine {
	return &Engine{src: src}
}

// Run resolves the cohort, builds all six component series, and composes
// the ranked output records. Component builders are independent and fan
// out concurrently; correctness does not depend on execution order since
// every aggregate is computed over the whole cohort.
func (e *Engine) Run(ctx context.Context) ([]model.Record, error) {
	log := zap.L().With(zap.String("component", "index.engine"))
	start := time.Now()

	if err := ValidateWeights(); err != nil {
		return nil, err
	}

	baselines, err := LoadBaselines()
	if err != nil {
		return nil, err
	}

	c, err := e.resolveCohort(ctx)
	if err != nil {
		return nil, err
	}

	// Each goroutine writes only its own variables; Inputs is assembled
	// after the group joins.
	var (
		market, consumption, mobility Series
		climate, poad, access         Series
		mobilityKM                    Series
		climateStats                  map[int64]ClimateStats
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		obs, err := e.src.MarketAccess(gctx)
		if err != nil {
			return eris.Wrap(err, "index: load market access")
		}
		market = BuildMarket(c, obs)
		return nil
	})
	g.Go(func() error {
		obs, err := e.src.Consumption(gctx)
		if err != nil {
			return eris.Wrap(err, "index: load consumption")
		}
		consumption = BuildConsumption(c, obs, baselines)
		return nil
	})
	g.Go(func() error {
		obs, err := e.src.Mobility(gctx)
		if err != nil {
			return eris.Wrap(err, "index: load mobility")
		}
		mobility, mobilityKM = BuildMobility(c, obs)
		return nil
	})
	g.Go(func() error {
		obs, err := e.src.ClimateMonthly(gctx)
		if err != nil {
			return eris.Wrap(err, "index: load climate")
		}
		climate, climateStats = BuildClimate(c, obs)
		return nil
	})
	g.Go(func() error {
		scores, err := e.src.POADScores(gctx)
		if err != nil {
			return eris.Wrap(err, "index: load poad scores")
		}
		poad = LoadPreScored(c, scores)
		return nil
	})
	g.Go(func() error {
		scores, err := e.src.AccessibilityScores(gctx)
		if err != nil {
			return eris.Wrap(err, "index: load accessibility scores")
		}
		access = LoadPreScored(c, scores)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	in := Inputs{
		Scores: map[Component]Series{
			ComponentPOAD:          poad,
			ComponentMarket:        market,
			ComponentConsumption:   consumption,
			ComponentAccessibility: access,
			ComponentClimate:       climate,
			ComponentMobility:      mobility,
		},
		Climate:    climateStats,
		MobilityKM: mobilityKM,
	}

	records := Compose(c, in)

	log.Info("index computed",
		zap.Int("settlements", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)
	for comp, s := range in.Scores {
		if len(s) == 0 {
			log.Warn("component has zero coverage, neutral default applies",
				zap.String("component_name", string(comp)))
		}
	}

	return records, nil
}

func (e *Engine) resolveCohort(ctx context.Context) (*cohort.Cohort, error) {
	settlements, err := e.src.Settlements(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "index: load settlements")
	}
	regions, err := e.src.Regions(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "index: load regions")
	}
	munis, err := e.src.Municipalities(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "index: load municipalities")
	}
	attrs, err := e.src.Attributes(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "index: load attributes")
	}
	return cohort.Resolve(settlements, regions, munis, attrs)
}
