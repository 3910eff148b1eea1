package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/cache"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

var (
	pbpCSV   bool
	pbpForce bool
)

func init() {
	pbpCmd.Flags().BoolVar(&pbpCSV, "csv", false, "Write CSV instead of JSON.")
	pbpCmd.Flags().BoolVar(&pbpForce, "force", false, "Ignore cached tables and refetch.")
	rootCmd.AddCommand(pbpCmd)
}

var pbpCmd = &cobra.Command{
	Use:   "pbp <sport> <game id>...",
	Short: "Fetches and normalizes the play-by-play of one or more games.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sport, err := models.ParseSport(args[0])
		if err != nil {
			return err
		}
		ids, err := parseGameIDs(args[1:])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var all []models.PlayRecord
		for _, id := range ids {
			records, err := a.Ingest.PlayByPlay(cmd.Context(), sport, id, pbpForce)
			if err != nil {
				return fmt.Errorf("game %d: %w", id, err)
			}
			log.Info().Int("game_id", id).Int("plays", len(records)).Msg("Play-by-play loaded")
			all = append(all, records...)
		}

		out := cmd.OutOrStdout()
		if pbpCSV {
			return cache.WritePlaysCSV(out, all)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	},
}

func parseGameIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid game id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
