package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sberindex/ndi-cli/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <dataset>|all",
	Short: "Load source files into the snapshot tables",
	Long: "Loads registry workbooks and statistics exports into the database.\n" +
		"Datasets: " + strings.Join(ingest.Datasets(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		src, err := initPostgres(ctx)
		if err != nil {
			return err
		}
		defer src.Close() //nolint:errcheck

		ing := ingest.New(src.Pool(), cfg.Ingest)

		names := []string{args[0]}
		if args[0] == "all" {
			names = ingest.Datasets()
		}

		var total int64
		for _, name := range names {
			n, err := ing.Run(ctx, name)
			if err != nil {
				return err
			}
			total += n
		}
		fmt.Fprintf(os.Stdout, "Loaded %d rows across %d dataset(s).\n", total, len(names))
		return nil
	},
}

var ingestRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List ingestion run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		src, err := initPostgres(ctx)
		if err != nil {
			return err
		}
		defer src.Close() //nolint:errcheck

		entries, err := ingest.NewRunLog(src.Pool()).List(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No ingestion runs found.")
			return nil
		}

		formatRuns(os.Stdout, entries)
		return nil
	},
}

func formatRuns(w io.Writer, entries []ingest.RunEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tDATASET\tSTATUS\tROWS\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			e.StartedAt.Format("2006-01-02 15:04:05"), e.Dataset, e.Status, e.RowsLoaded, e.Error)
	}
	tw.Flush()
}

func init() {
	ingestCmd.AddCommand(ingestRunsCmd)
	rootCmd.AddCommand(ingestCmd)
}
