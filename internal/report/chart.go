package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/lanematch/internal/fsutil"
	"github.com/banshee-data/lanematch/internal/selector"
)

// skippedValue is how echarts marks a missing bar.
const skippedValue = "-"

// RenderScoreChart writes an HTML page with one bar per lane: the combined
// score and the raw Fréchet distance. Lanes without a finite score render as
// gaps.
func RenderScoreChart(w io.Writer, out selector.Outcome) error {
	labels := make([]string, 0, len(out.Results))
	scores := make([]opts.BarData, 0, len(out.Results))
	frechet := make([]opts.BarData, 0, len(out.Results))
	for _, r := range out.Results {
		label := r.LaneKey
		if label == "" {
			label = r.LaneID
		}
		labels = append(labels, label)

		if r.Finite() {
			scores = append(scores, opts.BarData{Value: r.Score})
			frechet = append(frechet, opts.BarData{Value: r.RawFrechet})
		} else {
			scores = append(scores, opts.BarData{Value: skippedValue})
			frechet = append(frechet, opts.BarData{Value: skippedValue})
		}
	}

	subtitle := fmt.Sprintf("strategy=%s status=%s", out.Strategy, out.Status)
	if out.BestLaneID != "" {
		subtitle += fmt.Sprintf(" best=%s accuracy=%.1f%%", out.BestLaneID, out.Accuracy)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Lane Scores", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Lane Scores", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "error (lower is better)"}),
	)
	bar.SetXAxis(labels).
		AddSeries("score", scores,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		).
		AddSeries("frechet", frechet)

	page := components.NewPage()
	page.AddCharts(bar)
	return page.Render(w)
}

// WriteScoreChart renders the score chart to path on fsys.
func WriteScoreChart(fsys fsutil.FileSystem, path string, out selector.Outcome) error {
	var buf bytes.Buffer
	if err := RenderScoreChart(&buf, out); err != nil {
		return fmt.Errorf("render score chart: %w", err)
	}
	if err := fsys.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write score chart: %w", err)
	}
	return nil
}
