package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/pitwall/internal/analysis/degradation"
	"github.com/banshee-data/pitwall/internal/analysis/race"
	"github.com/banshee-data/pitwall/internal/analysis/strategy"
)

// StrategyChart renders an HTML page with two charts: the per-lap
// degradation delta of each driver's chosen plan, and the plan's stints as
// stacked bars.
func StrategyChart(w io.Writer, r *race.Report) error {
	laps := r.TotalLaps()
	xLaps := make([]int, laps)
	for i := range xLaps {
		xLaps[i] = i + 1
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Strategy", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Degradation Delta", Subtitle: fmt.Sprintf("%s, %d laps", r.Session.TrackName, laps)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Lap", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Delta (s)", NameLocation: "middle", NameGap: 40}),
	)
	line.SetXAxis(xLaps)

	var (
		names  []string
		stints [][]opts.BarData
	)
	for _, d := range r.Drivers {
		plan, models := driverPlan(r, d.CarIndex)
		deltas := strategy.LapDeltas(plan, laps, models)
		data := make([]opts.LineData, len(deltas))
		for i, v := range deltas {
			data[i] = opts.LineData{Value: math.Round(v*1000) / 1000}
		}
		line.AddSeries(d.Initials, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

		names = append(names, d.Initials)
		for i, e := range plan {
			end := laps
			if i+1 < len(plan) {
				end = plan[i+1].StartLap
			}
			for len(stints) <= i {
				stints = append(stints, nil)
			}
			for len(stints[i]) < len(names)-1 {
				stints[i] = append(stints[i], opts.BarData{Value: 0})
			}
			stints[i] = append(stints[i], opts.BarData{Name: e.Compound, Value: end - e.StartLap})
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Chosen Strategy", Subtitle: "stint length in laps"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names)
	for i, data := range stints {
		for len(data) < len(names) {
			data = append(data, opts.BarData{Value: 0})
		}
		bar.AddSeries(fmt.Sprintf("Stint %d", i+1), data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "plan"}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
		)
	}

	page := components.NewPage()
	page.PageTitle = "Strategy"
	page.AddCharts(line, bar)
	return page.Render(w)
}

// driverPlan is the optimised plan for a car, or the default plan when the
// car was never analysed.
func driverPlan(r *race.Report, car int) (strategy.Plan, map[string]degradation.Model) {
	c, ok := r.Cars[car]
	if !ok || c.Optimal.Plan == nil {
		return strategy.DefaultPlan(r.TotalLaps()), nil
	}
	return c.Optimal.Plan, c.Models
}
