package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

func init() {
	rootCmd.AddCommand(queueCmd)
}

var queueCmd = &cobra.Command{
	Use:   "queue <sport> <game id>...",
	Short: "Adds games to the worker's ingestion queue.",
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
		if a.DB == nil {
			return fmt.Errorf("queue requires the database")
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Sport", "Game ID", "Status"})
		for _, id := range ids {
			game, err := a.DB.Games.Enqueue(cmd.Context(), sport, id)
			if err != nil {
				return err
			}
			t.AppendRow(table.Row{game.SportID, game.GameID, game.Status})
		}
		t.Render()
		return nil
	},
}
