package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sberindex/ndi-cli/internal/db"
	"github.com/sberindex/ndi-cli/internal/model"
)

// PostgresSource reads the snapshot tables from the sberindex schema.
type PostgresSource struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresSource with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresSource, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresSource{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (or a mock in tests).
func NewPostgresFromPool(pool db.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Pool exposes the underlying pool for the ingestion helpers.
func (s *PostgresSource) Pool() db.Pool { return s.pool }

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresSource) Settlements(ctx context.Context) ([]model.Settlement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT settlement_id, settlement_name, COALESCE(settlement_type, ''),
		       region_id, municipality_up_id, municipality_down_id
		FROM sberindex.dict_settlements
		ORDER BY settlement_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query settlements")
	}
	defer rows.Close()

	var out []model.Settlement
	for rows.Next() {
		var s model.Settlement
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &s.RegionID, &s.MunicipalityUpID, &s.MunicipalityDownID); err != nil {
			return nil, eris.Wrap(err, "postgres: scan settlement")
		}
		out = append(out, s)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate settlements")
}

func (s *PostgresSource) Regions(ctx context.Context) ([]model.Region, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT region_id, region_name
		FROM sberindex.dict_regions
		ORDER BY region_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query regions")
	}
	defer rows.Close()

	var out []model.Region
	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan region")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate regions")
}

func (s *PostgresSource) Municipalities(ctx context.Context) ([]model.Municipality, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT municipality_id, municipality_name, COALESCE(territory_id, '')
		FROM sberindex.dict_municipalities
		ORDER BY municipality_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query municipalities")
	}
	defer rows.Close()

	var out []model.Municipality
	for rows.Next() {
		var m model.Municipality
		if err := rows.Scan(&m.ID, &m.Name, &m.TerritoryID); err != nil {
			return nil, eris.Wrap(err, "postgres: scan municipality")
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate municipalities")
}

func (s *PostgresSource) Attributes(ctx context.Context) (map[int64]model.Attributes, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT settlement_id, COALESCE(is_arctic, FALSE), COALESCE(is_remote, FALSE),
		       COALESCE(is_special, FALSE), COALESCE(is_suburb, FALSE)
		FROM sberindex.meta_settlement_attributes`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query attributes")
	}
	defer rows.Close()

	out := make(map[int64]model.Attributes)
	for rows.Next() {
		var id int64
		var a model.Attributes
		if err := rows.Scan(&id, &a.IsArctic, &a.IsRemote, &a.IsSpecial, &a.IsSuburb); err != nil {
			return nil, eris.Wrap(err, "postgres: scan attributes")
		}
		out[id] = a
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate attributes")
}

func (s *PostgresSource) MarketAccess(ctx context.Context) ([]model.Observation, error) {
	return s.queryObservations(ctx, `
		SELECT COALESCE(territory_id, ''), '', 0, 0, value, COALESCE(source, '')
		FROM sberindex.fact_market_access`)
}

func (s *PostgresSource) Consumption(ctx context.Context) ([]model.Observation, error) {
	return s.queryObservations(ctx, `
		SELECT COALESCE(territory_id, ''), '', year, month, value, COALESCE(source, '')
		FROM sberindex.fact_consumption`)
}

func (s *PostgresSource) Mobility(ctx context.Context) ([]model.Observation, error) {
	return s.queryObservations(ctx, `
		SELECT '', COALESCE(municipality_name, ''), year, 0, value_km, COALESCE(source, '')
		FROM sberindex.fact_mobility`)
}

func (s *PostgresSource) queryObservations(ctx context.Context, sql string) ([]model.Observation, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query observations")
	}
	defer rows.Close()

	var out []model.Observation
	for rows.Next() {
		var o model.Observation
		if err := rows.Scan(&o.TerritoryID, &o.Municipality, &o.Year, &o.Month, &o.Value, &o.Source); err != nil {
			return nil, eris.Wrap(err, "postgres: scan observation")
		}
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate observations")
}

func (s *PostgresSource) ClimateMonthly(ctx context.Context) ([]model.ClimateObservation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(territory_id, ''), year, month, temp_avg_celsius
		FROM sberindex.fact_climate_monthly`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query climate")
	}
	defer rows.Close()

	var out []model.ClimateObservation
	for rows.Next() {
		var o model.ClimateObservation
		if err := rows.Scan(&o.TerritoryID, &o.Year, &o.Month, &o.TempAvg); err != nil {
			return nil, eris.Wrap(err, "postgres: scan climate observation")
		}
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate climate observations")
}

func (s *PostgresSource) POADScores(ctx context.Context) (map[int64]float64, error) {
	return s.queryScores(ctx, `SELECT settlement_id, score FROM sberindex.fact_poad_scores WHERE score IS NOT NULL`)
}

func (s *PostgresSource) AccessibilityScores(ctx context.Context) (map[int64]float64, error) {
	return s.queryScores(ctx, `SELECT settlement_id, score FROM sberindex.fact_accessibility WHERE score IS NOT NULL`)
}

func (s *PostgresSource) queryScores(ctx context.Context, sql string) (map[int64]float64, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query scores")
	}
	defer rows.Close()

	out := make(map[int64]float64)
	for rows.Next() {
		var id int64
		var score float64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, eris.Wrap(err, "postgres: scan score")
		}
		out[id] = score
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate scores")
}

func (s *PostgresSource) Coordinates(ctx context.Context) ([]model.Coordinates, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT settlement_id, latitude, longitude
		FROM sberindex.meta_settlement_coordinates
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY settlement_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query coordinates")
	}
	defer rows.Close()

	var out []model.Coordinates
	for rows.Next() {
		var c model.Coordinates
		if err := rows.Scan(&c.SettlementID, &c.Latitude, &c.Longitude); err != nil {
			return nil, eris.Wrap(err, "postgres: scan coordinates")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate coordinates")
}

func (s *PostgresSource) Population(ctx context.Context) (map[int64]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (settlement_id) settlement_id, population_total
		FROM sberindex.meta_settlement_population
		ORDER BY settlement_id, year DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query population")
	}
	defer rows.Close()

	out := make(map[int64]int64)
	for rows.Next() {
		var id, pop int64
		if err := rows.Scan(&id, &pop); err != nil {
			return nil, eris.Wrap(err, "postgres: scan population")
		}
		out[id] = pop
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate population")
}

// SaveAccessibility upserts the accessibility builder's output into the
// pre-scored table the engine later reads. This is the upstream ingestion
// surface, not the engine's.
func (s *PostgresSource) SaveAccessibility(ctx context.Context, scores map[int64]float64, distances map[int64]float64) (int64, error) {
	ids := make([]int64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sortInt64s(ids)

	rows := make([][]any, 0, len(ids))
	for _, id := range ids {
		var dist *float64
		if d, ok := distances[id]; ok {
			dist = &d
		}
		rows = append(rows, []any{id, scores[id], dist})
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "sberindex.fact_accessibility",
		Columns:      []string{"settlement_id", "score", "distance_to_hub_km"},
		ConflictKeys: []string{"settlement_id"},
	}, rows)
}

func sortInt64s(v []int64) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}

var _ Source = (*PostgresSource)(nil)
