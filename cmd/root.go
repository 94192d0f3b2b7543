package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridsched/config"
	coremon "github.com/kilianp07/gridsched/core/monitoring"
	"github.com/kilianp07/gridsched/infra/logger"
	"github.com/kilianp07/gridsched/infra/monitoring"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "gridsched",
	Short:        "Generation dispatch simulator",
	Long:         "gridsched commits and dispatches a fleet of generation units across the blocks of one day at least cost.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		c, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := logger.SetLevel(c.Logging.Level); err != nil {
			return err
		}
		mon, err := monitoring.NewSentryMonitor(c.Monitoring)
		if err != nil {
			return fmt.Errorf("monitoring: %w", err)
		}
		coremon.Init(mon)
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); defaults and GS_ variables apply when empty")
}

// Execute runs the CLI. Errors are reported to the configured monitor.
func Execute() error {
	defer coremon.Flush(2 * time.Second)
	err := rootCmd.Execute()
	coremon.CaptureException(err, map[string]string{"command": "gridsched"})
	return err
}
