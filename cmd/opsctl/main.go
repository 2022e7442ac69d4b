// Command opsctl runs one-off maintenance tasks against the back-office
// database: migrations, reminder runs, statistics exports and shift
// submissions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/brokerage-backoffice/internal/config"
	"github.com/garyjia/brokerage-backoffice/internal/container"
	"github.com/garyjia/brokerage-backoffice/pkg/utils"
)

// app carries the state shared by all subcommands
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "opsctl",
		Short:         "Back-office maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			logger, err := utils.NewLogger(utils.LoggerConfig{
				Level:      cfg.Logger.Level,
				OutputPath: "stderr",
				Format:     "console",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "configs/config.yaml", "Configuration file (empty for defaults and environment only)")

	rootCmd.AddCommand(
		newMigrateCmd(a),
		newRemindCmd(a),
		newDeadlineAlertsCmd(a),
		newExportStatsCmd(a),
		newSubmitShiftsCmd(a),
	)
	return rootCmd
}

// start builds and starts the container; the caller must Close it
func (a *app) start() (*container.Container, error) {
	c, err := container.NewContainer(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	if err := c.Start(); err != nil {
		return nil, err
	}
	return c, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
