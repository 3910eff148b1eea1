package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/cache"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/pbp"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/scraper"
)

var normalizeGameID int

func init() {
	normalizeCmd.Flags().IntVar(&normalizeGameID, "game-id", 0, "Contest ID to stamp on every row.")
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <sport> <page.html>",
	Short: "Normalizes a saved play-by-play page and writes CSV to stdout.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sport, err := models.ParseSport(args[0])
		if err != nil {
			return err
		}

		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		info, raw, err := scraper.ParsePlayByPlay(f)
		if err != nil {
			return err
		}
		info.GameID = normalizeGameID
		info.SportID = sport

		spec, err := pbp.LookupPeriodSpec(sport, info.Season)
		if err != nil {
			return err
		}

		result, err := pbp.NewNormalizer(spec).Normalize(raw)
		if err != nil {
			return err
		}
		if result.Skipped > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d rows with malformed clocks\n", result.Skipped)
		}

		return cache.WritePlaysCSV(cmd.OutOrStdout(), pbp.Emit(info, result.Plays))
	},
}
