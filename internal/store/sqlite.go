package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sberindex/ndi-cli/internal/model"
)

// SQLiteSource reads a local snapshot file using modernc.org/sqlite.
// Table names match the Postgres schema without the schema qualifier.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLite opens a SQLite snapshot at the given path.
func NewSQLite(dsn string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteSource{db: db}, nil
}

// Close closes the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) Settlements(ctx context.Context) ([]model.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT settlement_id, settlement_name, COALESCE(settlement_type, ''),
		       region_id, municipality_up_id, municipality_down_id
		FROM dict_settlements
		ORDER BY settlement_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query settlements")
	}
	defer rows.Close()

	var out []model.Settlement
	for rows.Next() {
		var st model.Settlement
		var upID, downID sql.NullInt64
		if err := rows.Scan(&st.ID, &st.Name, &st.Type, &st.RegionID, &upID, &downID); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan settlement")
		}
		if upID.Valid {
			st.MunicipalityUpID = &upID.Int64
		}
		if downID.Valid {
			st.MunicipalityDownID = &downID.Int64
		}
		out = append(out, st)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate settlements")
}

func (s *SQLiteSource) Regions(ctx context.Context) ([]model.Region, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT region_id, region_name FROM dict_regions ORDER BY region_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query regions")
	}
	defer rows.Close()

	var out []model.Region
	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan region")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate regions")
}

func (s *SQLiteSource) Municipalities(ctx context.Context) ([]model.Municipality, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT municipality_id, municipality_name, COALESCE(territory_id, '')
		FROM dict_municipalities
		ORDER BY municipality_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query municipalities")
	}
	defer rows.Close()

	var out []model.Municipality
	for rows.Next() {
		var m model.Municipality
		if err := rows.Scan(&m.ID, &m.Name, &m.TerritoryID); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan municipality")
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate municipalities")
}

func (s *SQLiteSource) Attributes(ctx context.Context) (map[int64]model.Attributes, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT settlement_id, COALESCE(is_arctic, 0), COALESCE(is_remote, 0),
		       COALESCE(is_special, 0), COALESCE(is_suburb, 0)
		FROM meta_settlement_attributes`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query attributes")
	}
	defer rows.Close()

	out := make(map[int64]model.Attributes)
	for rows.Next() {
		var id int64
		var a model.Attributes
		if err := rows.Scan(&id, &a.IsArctic, &a.IsRemote, &a.IsSpecial, &a.IsSuburb); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan attributes")
		}
		out[id] = a
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate attributes")
}

func (s *SQLiteSource) MarketAccess(ctx context.Context) ([]model.Observation, error) {
	return s.queryObservations(ctx, `
		SELECT COALESCE(territory_id, ''), '', 0, 0, value, COALESCE(source, '')
		FROM fact_market_access`)
}

func (s *SQLiteSource) Consumption(ctx context.Context) ([]model.Observation, error) {
	return s.queryObservations(ctx, `
		SELECT COALESCE(territory_id, ''), '', year, month, value, COALESCE(source, '')
		FROM fact_consumption`)
}

func (s *SQLiteSource) Mobility(ctx context.Context) ([]model.Observation, error) {
	return s.queryObservations(ctx, `
		SELECT '', COALESCE(municipality_name, ''), year, 0, value_km, COALESCE(source, '')
		FROM fact_mobility`)
}

func (s *SQLiteSource) queryObservations(ctx context.Context, query string) ([]model.Observation, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query observations")
	}
	defer rows.Close()

	var out []model.Observation
	for rows.Next() {
		var o model.Observation
		var value sql.NullFloat64
		if err := rows.Scan(&o.TerritoryID, &o.Municipality, &o.Year, &o.Month, &value, &o.Source); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan observation")
		}
		if value.Valid {
			o.Value = &value.Float64
		}
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate observations")
}

func (s *SQLiteSource) ClimateMonthly(ctx context.Context) ([]model.ClimateObservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(territory_id, ''), year, month, temp_avg_celsius
		FROM fact_climate_monthly`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query climate")
	}
	defer rows.Close()

	var out []model.ClimateObservation
	for rows.Next() {
		var o model.ClimateObservation
		var temp sql.NullFloat64
		if err := rows.Scan(&o.TerritoryID, &o.Year, &o.Month, &temp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan climate observation")
		}
		if temp.Valid {
			o.TempAvg = &temp.Float64
		}
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate climate observations")
}

func (s *SQLiteSource) POADScores(ctx context.Context) (map[int64]float64, error) {
	return s.queryScores(ctx, `SELECT settlement_id, score FROM fact_poad_scores WHERE score IS NOT NULL`)
}

func (s *SQLiteSource) AccessibilityScores(ctx context.Context) (map[int64]float64, error) {
	return s.queryScores(ctx, `SELECT settlement_id, score FROM fact_accessibility WHERE score IS NOT NULL`)
}

func (s *SQLiteSource) queryScores(ctx context.Context, query string) (map[int64]float64, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query scores")
	}
	defer rows.Close()

	out := make(map[int64]float64)
	for rows.Next() {
		var id int64
		var score float64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan score")
		}
		out[id] = score
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate scores")
}

func (s *SQLiteSource) Coordinates(ctx context.Context) ([]model.Coordinates, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT settlement_id, latitude, longitude
		FROM meta_settlement_coordinates
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY settlement_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query coordinates")
	}
	defer rows.Close()

	var out []model.Coordinates
	for rows.Next() {
		var c model.Coordinates
		if err := rows.Scan(&c.SettlementID, &c.Latitude, &c.Longitude); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan coordinates")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate coordinates")
}

func (s *SQLiteSource) Population(ctx context.Context) (map[int64]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.settlement_id, p.population_total
		FROM meta_settlement_population p
		JOIN (
			SELECT settlement_id, MAX(year) AS year
			FROM meta_settlement_population
			GROUP BY settlement_id
		) latest ON latest.settlement_id = p.settlement_id AND latest.year = p.year`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query population")
	}
	defer rows.Close()

	out := make(map[int64]int64)
	for rows.Next() {
		var id, pop int64
		if err := rows.Scan(&id, &pop); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan population")
		}
		out[id] = pop
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate population")
}

var _ Source = (*SQLiteSource)(nil)
