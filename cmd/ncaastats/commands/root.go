package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/app"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/config"
)

var (
	logLevel string
	noDB     bool
	noRedis  bool
)

var rootCmd = &cobra.Command{
	Use:           "ncaastats",
	Short:         "ncaastats fetches and normalizes NCAA play-by-play data.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error).")
	rootCmd.PersistentFlags().BoolVar(&noDB, "no-db", false, "Do not connect to PostgreSQL.")
	rootCmd.PersistentFlags().BoolVar(&noRedis, "no-redis", false, "Do not connect to Redis.")
}

// ExecuteContext runs the root command
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openApp loads configuration and connects the backends allowed by the flags
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if noDB {
		cfg.DatabaseEnabled = false
	}
	if noRedis {
		cfg.RedisEnabled = false
	}
	return app.New(ctx, cfg)
}
