package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sberindex/ndi-cli/internal/geo"
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Rebuild hub-accessibility scores from coordinates and population",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("access"); err != nil {
			return err
		}

		src, err := initPostgres(ctx)
		if err != nil {
			return err
		}
		defer src.Close() //nolint:errcheck

		coords, err := src.Coordinates(ctx)
		if err != nil {
			return err
		}
		population, err := src.Population(ctx)
		if err != nil {
			return err
		}

		res, err := geo.BuildAccessibility(coords, population, geo.Params{
			HubMinPopulation: cfg.Access.HubMinPopulation,
			DecayKM:          cfg.Access.DecayKM,
		})
		if err != nil {
			return err
		}

		n, err := src.SaveAccessibility(ctx, res.Scores, res.Distances)
		if err != nil {
			return err
		}

		zap.L().Info("accessibility scores saved",
			zap.Int64("rows", n),
			zap.Int("hubs", len(res.Hubs)),
		)
		fmt.Fprintf(os.Stdout, "Saved %d accessibility scores (%d hubs).\n", n, len(res.Hubs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accessCmd)
}
