package export

import (
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteScheduleChart renders the day as a standalone HTML page with a
// demand chart and a rate chart.
func WriteScheduleChart(w io.Writer, rows []ScheduleRow) error {
	times := make([]string, len(rows))
	series := map[string][]opts.LineData{}
	add := func(name string, v float64) {
		series[name] = append(series[name], opts.LineData{Value: round2(v)})
	}
	for i, r := range rows {
		times[i] = r.Time
		add("expected", r.ExpectedMW)
		add("actual", r.ActualMW)
		add("scheduled", r.ScheduledMW)
		add("yesterday", r.YesterdayRate)
		add("today", r.TodayRate)
	}

	demand := charts.NewLine()
	demand.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Demand and generation"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Block"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "MW"}),
	)
	demand.SetXAxis(times).
		AddSeries("Expected demand", series["expected"]).
		AddSeries("Actual demand", series["actual"]).
		AddSeries("Scheduled generation", series["scheduled"])

	rates := charts.NewLine()
	rates.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Rates"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Block"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rate"}),
	)
	rates.SetXAxis(times).
		AddSeries("Yesterday", series["yesterday"]).
		AddSeries("Today", series["today"])

	page := components.NewPage()
	page.AddCharts(demand, rates)
	return page.Render(w)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
