package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/gridsched/core/dispatch"
	"github.com/kilianp07/gridsched/infra/logger"
	"github.com/kilianp07/gridsched/pkg/export"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "Print the fleet in merit order",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := dispatch.NewEngine(cfg.Fleet, cfg.Horizon, logger.NopLogger{})
		if err != nil {
			return err
		}
		return export.WriteUnitsTable(cmd.OutOrStdout(), e.Units())
	},
}

func init() {
	rootCmd.AddCommand(unitsCmd)
}
