// Package export renders a simulated day for people and spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kilianp07/gridsched/core/dispatch"
	"github.com/kilianp07/gridsched/core/model"
	"github.com/kilianp07/gridsched/simulator"
)

// ScheduleRow is one line of the day schedule.
type ScheduleRow struct {
	Time          string  `json:"time"`
	ExpectedMW    float64 `json:"expected_demand_mw"`
	ActualMW      float64 `json:"actual_demand_mw"`
	YesterdayRate float64 `json:"yesterday_rate"`
	TodayRate     float64 `json:"today_rate"`
	ScheduledMW   float64 `json:"scheduled_gen_mw"`
	ShortfallMW   float64 `json:"shortfall_surplus_mw"` // negative for surplus
	BlockCost     float64 `json:"block_cost"`
	OptimalCost   float64 `json:"optimal_cost,omitempty"`
}

// Rows converts processed intervals into schedule rows.
func Rows(intervals []simulator.Interval) []ScheduleRow {
	out := make([]ScheduleRow, len(intervals))
	for i, iv := range intervals {
		out[i] = ScheduleRow{
			Time:          iv.Label,
			ExpectedMW:    iv.ExpectedMW,
			ActualMW:      iv.ActualMW,
			YesterdayRate: iv.YesterdayRate,
			TodayRate:     iv.TodayRate,
			ScheduledMW:   iv.Result.DispatchedMW,
			ShortfallMW:   iv.Result.ShortfallMW,
			BlockCost:     iv.Result.Cost,
			OptimalCost:   iv.OptimalCost,
		}
	}
	return out
}

var scheduleHeader = []string{
	"time", "expected_demand_mw", "actual_demand_mw", "yesterday_rate", "today_rate",
	"scheduled_gen_mw", "shortfall_surplus_mw", "block_cost",
}

// WriteScheduleCSV writes the schedule with a header row. Numbers keep two
// decimals.
func WriteScheduleCSV(w io.Writer, rows []ScheduleRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Time,
			fixed(r.ExpectedMW),
			fixed(r.ActualMW),
			fixed(r.YesterdayRate),
			fixed(r.TodayRate),
			fixed(r.ScheduledMW),
			fixed(r.ShortfallMW),
			fixed(r.BlockCost),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteScheduleJSON writes the schedule and the day totals as one document.
func WriteScheduleJSON(w io.Writer, rows []ScheduleRow, summary dispatch.DailySummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Schedule []ScheduleRow         `json:"schedule"`
		Summary  dispatch.DailySummary `json:"summary"`
	}{rows, summary})
}

func fixed(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

var printer = message.NewPrinter(language.English)

// WriteUnitsTable prints the fleet as an aligned table in the given order.
func WriteUnitsTable(w io.Writer, units []model.UnitSnapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "NAME\tCATEGORY\tCAPACITY\tAVAILABLE\tRATE\tMIN GEN\tSTATUS\tDISPATCH"); err != nil {
		return err
	}
	for _, u := range units {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%.2f MW\t%.2f MW\t%s\t%.2f MW\t%s\t%.2f MW\n",
			u.Name, u.Category, u.CapacityMW, u.EffectiveMW, printer.Sprintf("%.2f", u.CostRate),
			u.MinGenMW, u.Status, u.DispatchMW); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteSummary prints the day totals with grouped thousands.
func WriteSummary(w io.Writer, s dispatch.DailySummary) error {
	_, err := printer.Fprintf(w, "Blocks: %d\nTotal Cost: %.2f\nTotal Energy: %.2f MWh\nShortfall Blocks: %d\nTotal Shortfall: %.2f MWh\n",
		s.Intervals, s.TotalCost, s.TotalEnergyMWh, s.ShortfallEvents, s.TotalShortfallMWh)
	return err
}
