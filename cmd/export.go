package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sberindex/ndi-cli/internal/index"
	"github.com/sberindex/ndi-cli/internal/model"
)

var exportOutput string

// dashboardExport is the JSON document the dashboard frontend consumes.
type dashboardExport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Settlements int            `json:"settlements"`
	Records     []model.Record `json:"records"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Compute the index and write the dashboard JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("export"); err != nil {
			return err
		}

		src, err := initSource(ctx)
		if err != nil {
			return err
		}
		defer src.Close() //nolint:errcheck

		records, err := index.NewEngine(src).Run(ctx)
		if err != nil {
			return err
		}

		path := exportOutput
		if path == "" {
			path = cfg.Export.OutputPath
		}

		doc := dashboardExport{
			GeneratedAt: time.Now().UTC(),
			Settlements: len(records),
			Records:     records,
		}
		data, err := marshalExport(doc, cfg.Export.Pretty)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "export: write %s", path)
		}

		zap.L().Info("dashboard export written",
			zap.String("path", path),
			zap.Int("settlements", len(records)),
		)
		return nil
	},
}

func marshalExport(doc dashboardExport, pretty bool) ([]byte, error) {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, eris.Wrap(err, "export: marshal records")
	}
	return append(data, '\n'), nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (default from config)")
	rootCmd.AddCommand(exportCmd)
}
