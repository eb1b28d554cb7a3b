// Package plot renders run diagnostics: the per-trial score trace of a
// search and a comparison chart over the results table. Everything here
// consumes trial logs and result rows read-only.
package plot

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jaswinder9051998/ATOM/automl"
	"github.com/jaswinder9051998/ATOM/optimize"
	"github.com/jaswinder9051998/ATOM/pkg/errors"
)

// BOProgress writes a PNG tracing each trial's primary score together
// with the running best. Failed trials leave gaps instead of sentinel
// spikes.
func BOProgress(trials []optimize.Trial, title, path string) error {
	if len(trials) == 0 {
		return errors.NewValueError("plot", "no trials to plot")
	}

	var scores, best plotter.XYs
	runningBest := 0.0
	haveBest := false
	for _, trial := range trials {
		if trial.Failed() {
			continue
		}
		score := trial.Primary()
		scores = append(scores, plotter.XY{X: float64(trial.Index), Y: score})
		if !haveBest || score > runningBest {
			runningBest = score
			haveBest = true
		}
		best = append(best, plotter.XY{X: float64(trial.Index), Y: runningBest})
	}
	if len(scores) == 0 {
		return errors.NewValueError("plot", "every trial failed, nothing to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "trial"
	p.Y.Label.Text = "score"

	scoreLine, scorePoints, err := plotter.NewLinePoints(scores)
	if err != nil {
		return errors.Wrap(err, "score trace")
	}
	bestLine, err := plotter.NewLine(best)
	if err != nil {
		return errors.Wrap(err, "best trace")
	}
	bestLine.LineStyle.Width = vg.Points(2)

	p.Add(scoreLine, scorePoints, bestLine)
	p.Legend.Add("trial score", scoreLine)
	p.Legend.Add("running best", bestLine)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "save plot")
	}
	return nil
}

// Results writes a PNG bar chart of the primary test score per model, in
// run order.
func Results(table *automl.ResultsTable, title, path string) error {
	rows := table.Rows()
	if len(rows) == 0 {
		return errors.NewValueError("plot", "results table is empty")
	}

	values := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, row := range rows {
		if len(row.MetricTest) > 0 {
			values[i] = row.MetricTest[0]
		}
		names[i] = row.Acronym
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "test score"

	bars, err := plotter.NewBarChart(values, vg.Points(25))
	if err != nil {
		return errors.Wrap(err, "bar chart")
	}
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "save plot")
	}
	return nil
}
