// Package chart renders the recent battery level history as a PNG.
package chart

import (
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"codeberg.org/waldrek/battwatch/internal/errors"
	"codeberg.org/waldrek/battwatch/internal/logger"
	"codeberg.org/waldrek/battwatch/internal/monitor"
)

// Renderer is a presenter that rewrites a level-over-time PNG every N ticks.
// Rendering is cheap relative to the sampling period, so it runs inline.
type Renderer struct {
	path  string
	every int
	ticks int
}

// NewRenderer writes the history chart to path once per every ticks.
func NewRenderer(path string, every int) *Renderer {
	if every <= 0 {
		every = 1
	}
	return &Renderer{path: path, every: every}
}

func (r *Renderer) Present(snap monitor.Snapshot) {
	r.ticks++
	if r.ticks%r.every != 0 {
		return
	}

	if err := r.Render(snap); err != nil {
		logger.Warn().Err(err).Str("path", r.path).Msg("Failed to render history chart")
	}
}

// Render writes the snapshot's history to the PNG. It needs at least two
// samples; go-chart cannot lay out an axis from a single point.
func (r *Renderer) Render(snap monitor.Snapshot) error {
	errFactory := errors.New()

	if len(snap.History) < 2 {
		logger.Debug().Int("samples", len(snap.History)).Msg("Not enough history to chart yet")
		return nil
	}

	if err := ensureDir(r.path); err != nil {
		return errFactory.Wrap(errors.ErrRenderChart, err)
	}

	graph := buildGraph(snap)

	file, err := os.Create(r.path)
	if err != nil {
		return errFactory.Wrap(errors.ErrRenderChart, err)
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return errFactory.Wrap(errors.ErrRenderChart, err)
	}

	logger.Debug().Str("path", r.path).Int("samples", len(snap.History)).Msg("History chart rendered")
	return nil
}

func buildGraph(snap monitor.Snapshot) chart.Chart {
	x := make([]time.Time, len(snap.History))
	level := make([]float64, len(snap.History))
	for i, sample := range snap.History {
		x[i] = sample.Timestamp
		level[i] = sample.Level
	}

	levelFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f%%")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Battery level",
			ValueFormatter: levelFormatter,
			Range:          &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Level",
				XValues: x,
				YValues: level,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
