// Package report renders matching outcomes for offline inspection: a PNG
// overlay of the gesture against the lanes and an HTML chart of per-lane
// scores.
package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/lanematch/internal/lane"
	"github.com/banshee-data/lanematch/internal/selector"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

// Overlay plot size.
const (
	OverlayWidth  = 8 * vg.Inch
	OverlayHeight = 8 * vg.Inch
)

var gestureColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}

// PlotOverlay draws every lane and the gesture in one coordinate frame and
// saves the figure to path. The format follows the file extension (.png,
// .svg, .pdf). The selected lane is drawn wider.
func PlotOverlay(path string, gesture trajectory.TimedPath, lanes []lane.Lane, out selector.Outcome) error {
	p := plot.New()
	p.Title.Text = overlayTitle(out)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(plotter.NewGrid())

	colors := generateColors(len(lanes))
	for i, l := range lanes {
		if l.Path.Len() == 0 {
			continue
		}
		line, err := plotter.NewLine(toXYs(l.Path.Points))
		if err != nil {
			return fmt.Errorf("lane %s line: %w", l.ID, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		if l.ID == out.BestLaneID && out.Selected() {
			line.Width = vg.Points(3)
		}
		p.Add(line)
		p.Legend.Add(l.Label(), line)
	}

	if gesture.Len() > 0 {
		pts := toXYs(gesture.Points)
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("gesture line: %w", err)
		}
		line.Color = gestureColor
		line.Width = vg.Points(1.5)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

		samples, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("gesture samples: %w", err)
		}
		samples.Color = gestureColor
		samples.Radius = vg.Points(1.5)

		p.Add(line, samples)
		p.Legend.Add("gesture", line, samples)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(OverlayWidth, OverlayHeight, path); err != nil {
		return fmt.Errorf("save overlay plot: %w", err)
	}
	return nil
}

func overlayTitle(out selector.Outcome) string {
	switch out.Status {
	case selector.StatusSelected, selector.StatusRejected:
		return fmt.Sprintf("%s: %s (accuracy %.1f%%)", out.Status, out.BestLaneID, out.Accuracy)
	case "":
		return "Gesture vs. lanes"
	default:
		return string(out.Status)
	}
}

func toXYs(points []trajectory.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return xys
}

// generateColors spreads n hues evenly around the color wheel.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		r, g, b := hslToRGB(float64(i)/float64(n), 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
