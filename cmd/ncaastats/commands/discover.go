package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/ingest"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

var (
	discoverDivision int
	discoverQueue    bool
)

func init() {
	discoverCmd.Flags().IntVar(&discoverDivision, "division", 1, "NCAA division (1-3).")
	discoverCmd.Flags().BoolVar(&discoverQueue, "queue", false, "Queue the games for the worker.")
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover <sport> <YYYY-MM-DD>",
	Short: "Lists the games on a day's scoreboard.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sport, err := models.ParseSport(args[0])
		if err != nil {
			return err
		}
		date, err := time.Parse("2006-01-02", args[1])
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", args[1], err)
		}
		if discoverDivision < 1 || discoverDivision > 3 {
			return fmt.Errorf("invalid division %d", discoverDivision)
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		discoverer := ingest.NewDiscoverer(a.Client, nil)
		if discoverQueue {
			if a.DB == nil {
				return fmt.Errorf("--queue requires the database")
			}
			discoverer = a.Discovery
		}

		games, err := discoverer.DiscoverDay(cmd.Context(), sport, discoverDivision, date)
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Game ID", "Start", "Away", "", "Home", ""})
		for _, g := range games {
			t.AppendRow(table.Row{
				g.GameID, g.GameDatetime.Format("2006-01-02 15:04"),
				g.AwayTeamName, g.AwayScore, g.HomeTeamName, g.HomeScore,
			})
		}
		t.Render()
		return nil
	},
}
