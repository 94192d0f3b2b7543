package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridsched/app"
	"github.com/kilianp07/gridsched/infra/logger"
	"github.com/kilianp07/gridsched/pkg/export"
)

var (
	csvPath  string
	jsonPath string
	htmlPath string
	quiet    bool
	hold     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate one day and print the schedule",
	RunE:  runDay,
}

func init() {
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write the schedule as CSV to this file")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write the schedule and totals as JSON to this file")
	runCmd.Flags().StringVar(&htmlPath, "html", "", "write demand and rate charts as an HTML page to this file")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the day totals")
	runCmd.Flags().BoolVar(&hold, "hold", false, "keep serving metrics after the day until interrupted")
	rootCmd.AddCommand(runCmd)
}

func runDay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	intervals, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	rows := export.Rows(intervals)
	summary := svc.Engine.Summary()
	out := cmd.OutOrStdout()
	if !quiet {
		if err := export.WriteScheduleCSV(out, rows); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
		if err := export.WriteUnitsTable(out, svc.Engine.Units()); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
	}
	if err := export.WriteSummary(out, summary); err != nil {
		return err
	}
	if csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error { return export.WriteScheduleCSV(w, rows) }); err != nil {
			return err
		}
	}
	if jsonPath != "" {
		if err := writeFile(jsonPath, func(w io.Writer) error { return export.WriteScheduleJSON(w, rows, summary) }); err != nil {
			return err
		}
	}
	if htmlPath != "" {
		if err := writeFile(htmlPath, func(w io.Writer) error { return export.WriteScheduleChart(w, rows) }); err != nil {
			return err
		}
	}
	if hold && cfg.Metrics.ListenAddr != "" {
		logger.New("main").Infof("day complete, serving metrics on %s until interrupted", cfg.Metrics.ListenAddr)
		<-ctx.Done()
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}
