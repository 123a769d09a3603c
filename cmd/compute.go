package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sberindex/ndi-cli/internal/index"
	"github.com/sberindex/ndi-cli/internal/model"
)

var computeJSON bool

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute the ranked index over the current snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("compute"); err != nil {
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

		if computeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		formatRecords(os.Stdout, records)
		return nil
	},
}

// formatRecords prints the ranked table the way analysts eyeball it:
// one row per settlement, highest index first.
func formatRecords(w io.Writer, records []model.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSETTLEMENT\tREGION\tNDI (0-10)\tCOLOR")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n",
			r.NDIRank, r.SettlementName, r.RegionName, r.NDI10, r.ColorNDI)
	}
	tw.Flush()
}

func init() {
	computeCmd.Flags().BoolVar(&computeJSON, "json", false, "print records as JSON instead of a table")
	rootCmd.AddCommand(computeCmd)
}
