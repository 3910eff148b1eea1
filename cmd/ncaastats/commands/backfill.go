package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/config"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/ingest"
)

var (
	backfillSeasons string
	backfillForce   bool
)

func init() {
	backfillCmd.Flags().StringVar(&backfillSeasons, "seasons", "", `Season or range, e.g. "2019" or "2015-2024". Defaults to BACKFILL_SEASONS.`)
	backfillCmd.Flags().BoolVar(&backfillForce, "force", true, "Refetch games even when cached.")
	rootCmd.AddCommand(backfillCmd)
}

var backfillCmd = &cobra.Command{
	Use:   "backfill [--seasons 2015-2024]",
	Short: "Re-ingests every queued game of a range of seasons.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if a.DB == nil {
			return fmt.Errorf("backfill requires the database")
		}

		seasons := backfillSeasons
		if seasons == "" {
			seasons = a.Config.BackfillSeasons
		}
		if seasons == "" {
			return fmt.Errorf("no seasons given: pass --seasons or set BACKFILL_SEASONS")
		}

		from, to, err := config.ParseSeasonRange(seasons)
		if err != nil {
			return err
		}

		games, err := a.DB.Games.ListBySeasons(cmd.Context(), from, to)
		if err != nil {
			return err
		}

		result := a.Ingest.SyncGames(cmd.Context(), "backfill", ingest.RefsFromGames(games), backfillForce)
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d succeeded, %d failed\n", result.RunID, result.Succeeded, result.Failed)
		if result.Failed > 0 {
			return fmt.Errorf("%d games failed", result.Failed)
		}
		return nil
	},
}
