package stats

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/baldhumanity/evo-go/evo"
)

// PlotHistory draws the champion, mean best and mean score per generation
// and saves the figure to path. The image format follows the extension
// (.png, .svg, .pdf, ...).
func PlotHistory(history []evo.GenerationSummary, title, path string) error {
	if len(history) == 0 {
		return errors.New("stats: no generations to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Score"

	best := make(plotter.XYs, len(history))
	meanBest := make(plotter.XYs, len(history))
	mean := make(plotter.XYs, len(history))
	for i, s := range history {
		x := float64(s.Generation)
		best[i] = plotter.XY{X: x, Y: s.Best}
		meanBest[i] = plotter.XY{X: x, Y: s.MeanBest}
		mean[i] = plotter.XY{X: x, Y: s.Mean}
	}

	for i, series := range []struct {
		name string
		pts  plotter.XYs
	}{
		{"best", best},
		{"mean best", meanBest},
		{"mean", mean},
	} {
		line, err := plotter.NewLine(series.pts)
		if err != nil {
			return fmt.Errorf("stats: %s line: %w", series.name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(series.name, line)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("stats: save plot %s: %w", path, err)
	}
	return nil
}
