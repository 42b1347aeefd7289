package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
	"github.com/indicator-maps/internal/pkg/logger"
	"github.com/indicator-maps/internal/usecase"
)

var (
	cfg      *config.Config
	log      *zap.Logger
	encodeUC *usecase.EncodeUseCase
)

var rootCmd = &cobra.Command{
	Use:   "choropleth",
	Short: "Offline indicator map encoding",
	Long: `Encodes indicator rows into map representations without PostgreSQL or Redis:
a divergent choropleth over GeoJSON features with its MapLibre style and legend,
a proportional size scale, and trend categories between two periods.

Encoding parameters come from the same environment variables as the API
(COLOR_PALETTE, SIZE_BINS, TREND_NOISE_RATIO, ...), optionally loaded from --config.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")
		c, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = cfg.Log.Level
		}
		l, err := logger.NewWithOutput(level, "stderr")
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l

		encodeUC = usecase.NewEncodeUseCase(cfg.Encoding, cfg.Map, log)
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", ".env", "env file with encoding settings; missing file is ignored")
	f.String("log-level", "", "log level (overrides LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
