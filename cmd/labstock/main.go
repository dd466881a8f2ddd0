package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erazemk/labstock/internal/config"
	"github.com/erazemk/labstock/internal/logging"
	"github.com/erazemk/labstock/internal/rotation"
	"github.com/erazemk/labstock/internal/timeutil"
)

// App holds what every subcommand needs.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	rotation *rotation.Calculator
	clock    *timeutil.Clock
	closeLog func()
}

var (
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "labstock",
		Short:         "Lab stock check service",
		Long:          `Tracks periodic stock checks of shared lab supplies, the duty rotation between teams and reorder requests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				app.logger.Sync()
				if app.closeLog != nil {
					app.closeLog()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(dutyAlertCmd())
	rootCmd.AddCommand(scheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// initApp loads the config and sets up logging and the duty calendar.
func initApp() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	calc, err := rotation.New(cfg.Rotation)
	if err != nil {
		closeLog()
		return fmt.Errorf("building rotation: %w", err)
	}

	app = &App{
		cfg:      cfg,
		logger:   logger,
		rotation: calc,
		clock:    timeutil.NewClock(cfg.Timezone.Name, cfg.Timezone.OffsetMinutes),
		closeLog: closeLog,
	}
	logger.Debug("configuration loaded", zap.String("path", configPath))
	return nil
}
