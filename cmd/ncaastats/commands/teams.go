package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

var teamsLimit int

func init() {
	teamsCmd.Flags().IntVar(&teamsLimit, "limit", 10, "Maximum number of matches.")
	rootCmd.AddCommand(teamsCmd)
}

var teamsCmd = &cobra.Command{
	Use:   "teams <sport> <name>",
	Short: "Searches the teams seen on ingested games.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sport, err := models.ParseSport(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if a.DB == nil {
			return fmt.Errorf("teams requires the database")
		}

		teams, err := a.DB.Teams.Search(cmd.Context(), sport, strings.Join(args[1:], " "), teamsLimit)
		if err != nil {
			return err
		}
		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Team ID", "Name", "Last season"})
		for _, team := range teams {
			last := ""
			if team.LastSeason.Valid {
				last = strconv.Itoa(int(team.LastSeason.Int32))
			}
			t.AppendRow(table.Row{team.TeamID, team.TeamName, last})
		}
		t.Render()
		return nil
	},
}
