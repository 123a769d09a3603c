package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sberindex/ndi-cli/internal/config"
	"github.com/sberindex/ndi-cli/internal/db"
)

// Ingester loads one source file per dataset into its snapshot table.
type Ingester struct {
	pool db.Pool
	runs *RunLog
	cfg  config.IngestConfig
}

// New creates an Ingester over the given pool.
func New(pool db.Pool, cfg config.IngestConfig) *Ingester {
	return &Ingester{pool: pool, runs: NewRunLog(pool), cfg: cfg}
}

// dataset binds a source file to its table and row parser.
type dataset struct {
	file   string
	upsert db.UpsertConfig
	parse  func(row []string) ([]any, error)
}

// datasets is the full ingestion surface, keyed by dataset name.
var datasets = map[string]dataset{
	"settlements": {
		file: "settlements.xlsx",
		upsert: db.UpsertConfig{
			Table:        "sberindex.dict_settlements",
			Columns:      []string{"settlement_id", "settlement_name", "settlement_type", "region_id", "municipality_up_id", "municipality_down_id"},
			ConflictKeys: []string{"settlement_id"},
		},
		parse: parseSettlementRow,
	},
	"regions": {
		file: "regions.xlsx",
		upsert: db.UpsertConfig{
			Table:        "sberindex.dict_regions",
			Columns:      []string{"region_id", "region_name"},
			ConflictKeys: []string{"region_id"},
		},
		parse: parseRegionRow,
	},
	"municipalities": {
		file: "municipalities.xlsx",
		upsert: db.UpsertConfig{
			Table:        "sberindex.dict_municipalities",
			Columns:      []string{"municipality_id", "municipality_name", "territory_id"},
			ConflictKeys: []string{"municipality_id"},
		},
		parse: parseMunicipalityRow,
	},
	"attributes": {
		file: "attributes.xlsx",
		upsert: db.UpsertConfig{
			Table:        "sberindex.meta_settlement_attributes",
			Columns:      []string{"settlement_id", "is_arctic", "is_remote", "is_special", "is_suburb"},
			ConflictKeys: []string{"settlement_id"},
		},
		parse: parseAttributeRow,
	},
	"coordinates": {
		file: "coordinates.csv",
		upsert: db.UpsertConfig{
			Table:        "sberindex.meta_settlement_coordinates",
			Columns:      []string{"settlement_id", "latitude", "longitude"},
			ConflictKeys: []string{"settlement_id"},
		},
		parse: parseCoordinateRow,
	},
	"population": {
		file: "population.csv",
		upsert: db.UpsertConfig{
			Table:        "sberindex.meta_settlement_population",
			Columns:      []string{"settlement_id", "year", "population_total"},
			ConflictKeys: []string{"settlement_id", "year"},
		},
		parse: parsePopulationRow,
	},
	"market": {
		file: "market_access.csv",
		upsert: db.UpsertConfig{
			Table:        "sberindex.fact_market_access",
			Columns:      []string{"territory_id", "value", "source"},
			ConflictKeys: []string{"territory_id"},
		},
		parse: parseMarketRow,
	},
	"consumption": {
		file: "consumption.csv",
		upsert: db.UpsertConfig{
			Table:        "sberindex.fact_consumption",
			Columns:      []string{"territory_id", "year", "month", "value", "source"},
			ConflictKeys: []string{"territory_id", "year", "month"},
		},
		parse: parseConsumptionRow,
	},
	"mobility": {
		file: "mobility.csv",
		upsert: db.UpsertConfig{
			Table:        "sberindex.fact_mobility",
			Columns:      []string{"municipality_name", "year", "value_km", "source"},
			ConflictKeys: []string{"municipality_name", "year"},
		},
		parse: parseMobilityRow,
	},
	"climate": {
		file: "climate_monthly.csv",
		upsert: db.UpsertConfig{
			Table:        "sberindex.fact_climate_monthly",
			Columns:      []string{"territory_id", "year", "month", "temp_avg_celsius"},
			ConflictKeys: []string{"territory_id", "year", "month"},
		},
		parse: parseClimateRow,
	},
	"poad": {
		file: "poad_scores.csv",
		upsert: db.UpsertConfig{
			Table:        "sberindex.fact_poad_scores",
			Columns:      []string{"settlement_id", "score"},
			ConflictKeys: []string{"settlement_id"},
		},
		parse: parsePOADRow,
	},
}

// Datasets lists the supported dataset names in stable order.
func Datasets() []string {
	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run loads one dataset from its source file and upserts it, recording
// the run in the ingest log.
func (i *Ingester) Run(ctx context.Context, name string) (int64, error) {
	ds, ok := datasets[name]
	if !ok {
		return 0, eris.Errorf("ingest: unknown dataset %q", name)
	}

	log := zap.L().With(
		zap.String("component", "ingest"),
		zap.String("dataset", name),
	)
	start := time.Now()

	runID, err := i.runs.Start(ctx, name)
	if err != nil {
		return 0, err
	}

	n, err := i.load(ctx, ds)
	if err != nil {
		if failErr := i.runs.Fail(ctx, runID, err.Error()); failErr != nil {
			log.Warn("could not record failed run", zap.Error(failErr))
		}
		return 0, err
	}
	if err := i.runs.Complete(ctx, runID, n); err != nil {
		return n, err
	}

	log.Info("dataset loaded",
		zap.Int64("rows", n),
		zap.Duration("elapsed", time.Since(start)),
	)
	return n, nil
}

func (i *Ingester) load(ctx context.Context, ds dataset) (int64, error) {
	path := filepath.Join(i.cfg.SourceDir, ds.file)

	var raw [][]string
	var err error
	if filepath.Ext(ds.file) == ".xlsx" {
		raw, err = ReadXLSX(path, XLSXOptions{SkipRows: 1})
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return 0, eris.Wrapf(err, "ingest: open %s", path)
		}
		defer f.Close()
		raw, err = ReadCSV(f, CSVOptions{Encoding: i.cfg.CSVEncoding, SkipRows: 1})
	}
	if err != nil {
		return 0, err
	}

	rows := make([][]any, 0, len(raw))
	for n, cells := range raw {
		if isBlank(cells) {
			continue
		}
		row, err := ds.parse(cells)
		if err != nil {
			return 0, eris.Wrapf(err, "ingest: %s row %d", ds.file, n+2)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return 0, eris.Errorf("ingest: %s has no data rows", ds.file)
	}

	return db.BulkUpsert(ctx, i.pool, ds.upsert, rows)
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func parseSettlementRow(row []string) ([]any, error) {
	if len(row) < 4 {
		return nil, eris.New("expected at least 4 columns")
	}
	id, err := parseInt64(row[0])
	if err != nil {
		return nil, err
	}
	regionID, err := parseInt64(row[3])
	if err != nil {
		return nil, err
	}
	var upID, downID *int64
	if len(row) > 4 {
		if upID, err = parseOptInt64(row[4]); err != nil {
			return nil, err
		}
	}
	if len(row) > 5 {
		if downID, err = parseOptInt64(row[5]); err != nil {
			return nil, err
		}
	}
	return []any{id, row[1], row[2], regionID, upID, downID}, nil
}

func parseRegionRow(row []string) ([]any, error) {
	if len(row) < 2 {
		return nil, eris.New("expected 2 columns")
	}
	id, err := parseInt64(row[0])
	if err != nil {
		return nil, err
	}
	return []any{id, row[1]}, nil
}

func parseMunicipalityRow(row []string) ([]any, error) {
	if len(row) < 3 {
		return nil, eris.New("expected 3 columns")
	}
	id, err := parseInt64(row[0])
	if err != nil {
		return nil, err
	}
	return []any{id, row[1], row[2]}, nil
}

func parseAttributeRow(row []string) ([]any, error) {
	if len(row) < 5 {
		return nil, eris.New("expected 5 columns")
	}
	id, err := parseInt64(row[0])
	if err != nil {
		return nil, err
	}
	return []any{id, parseBool(row[1]), parseBool(row[2]), parseBool(row[3]), parseBool(row[4])}, nil
}

func parseCoordinateRow(row []string) ([]any, error) {
	if len(row) < 3 {
		return nil, eris.New("expected 3 columns")
	}
	id, err := parseInt64(row[0])
	if err != nil {
		return nil, err
	}
	lat, err := parseOptFloat(row[1])
	if err != nil {
		return nil, err
	}
	lon, err := parseOptFloat(row[2])
	if err != nil {
		return nil, err
	}
	if lat == nil || lon == nil {
		return nil, eris.New("latitude and longitude are required")
	}
	return []any{id, *lat, *lon}, nil
}

func parsePopulationRow(row []string) ([]any, error) {
	if len(row) < 3 {
		return nil, eris.New("expected 3 columns")
	}
	id, err := parseInt64(row[0])
	if err != nil {
		return nil, err
	}
	year, err := parseInt64(row[1])
	if err != nil {
		return nil, err
	}
	pop, err := parseInt64(row[2])
	if err != nil {
		return nil, err
	}
	return []any{id, year, pop}, nil
}

func parseMarketRow(row []string) ([]any, error) {
	if len(row) < 2 {
		return nil, eris.New("expected at least 2 columns")
	}
	value, err := parseOptFloat(row[1])
	if err != nil {
		return nil, err
	}
	return []any{row[0], value, sourceCell(row, 2)}, nil
}

func parseConsumptionRow(row []string) ([]any, error) {
	if len(row) < 4 {
		return nil, eris.New("expected at least 4 columns")
	}
	year, err := parseInt64(row[1])
	if err != nil {
		return nil, err
	}
	month, err := parseInt64(row[2])
	if err != nil {
		return nil, err
	}
	value, err := parseOptFloat(row[3])
	if err != nil {
		return nil, err
	}
	return []any{row[0], year, month, value, sourceCell(row, 4)}, nil
}

func parseMobilityRow(row []string) ([]any, error) {
	if len(row) < 3 {
		return nil, eris.New("expected at least 3 columns")
	}
	year, err := parseInt64(row[1])
	if err != nil {
		return nil, err
	}
	value, err := parseOptFloat(row[2])
	if err != nil {
		return nil, err
	}
	return []any{row[0], year, value, sourceCell(row, 3)}, nil
}

func parseClimateRow(row []string) ([]any, error) {
	if len(row) < 4 {
		return nil, eris.New("expected 4 columns")
	}
	year, err := parseInt64(row[1])
	if err != nil {
		return nil, err
	}
	month, err := parseInt64(row[2])
	if err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, eris.Errorf("month %d out of range", month)
	}
	temp, err := parseOptFloat(row[3])
	if err != nil {
		return nil, err
	}
	return []any{row[0], year, month, temp}, nil
}

func parsePOADRow(row []string) ([]any, error) {
	if len(row) < 2 {
		return nil, eris.New("expected 2 columns")
	}
	id, err := parseInt64(row[0])
	if err != nil {
		return nil, err
	}
	score, err := parseOptFloat(row[1])
	if err != nil {
		return nil, err
	}
	if score != nil && (*score < 0 || *score > 1) {
		return nil, eris.Errorf("score %v outside [0,1]", *score)
	}
	return []any{id, score}, nil
}

func sourceCell(row []string, idx int) string {
	if len(row) > idx {
		return row[idx]
	}
	return ""
}
