// cycle-plot renders a recorded controller run as a PNG time series:
// steering, cross-track error and speed per cycle. Useful for eyeballing
// oscillation or drift after a tuning change.
package main

import (
	"flag"
	"image/color"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pathtrack/internal/cyclelog"
)

var (
	dbPath  = flag.String("db", "cycles.db", "Cycle database recorded by mpcd -record")
	session = flag.String("session", "", "Session to plot (default: most recent)")
	out     = flag.String("out", "cycles.png", "Output PNG path")
)

func main() {
	flag.Parse()

	cl, err := cyclelog.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open cycle database: %v", err)
	}
	defer cl.Close()

	rows, err := cl.Cycles(*session)
	if err != nil {
		log.Fatalf("failed to read cycles: %v", err)
	}
	if len(rows) == 0 {
		log.Fatalf("no cycles recorded for session %q", *session)
	}

	steering := make(plotter.XYs, len(rows))
	crossTrack := make(plotter.XYs, len(rows))
	speed := make(plotter.XYs, len(rows))
	failures := 0
	for i, r := range rows {
		x := float64(r.Cycle)
		steering[i] = plotter.XY{X: x, Y: r.Steering}
		crossTrack[i] = plotter.XY{X: x, Y: r.CrossTrack}
		speed[i] = plotter.XY{X: x, Y: r.SpeedMPS}
		if r.Status != "ok" {
			failures++
		}
	}

	p := plot.New()
	p.Title.Text = "controller run " + rows[0].Session
	p.X.Label.Text = "cycle"
	p.Legend.Top = true

	for _, series := range []struct {
		name  string
		xys   plotter.XYs
		color color.RGBA
	}{
		{"steering (normalized)", steering, color.RGBA{R: 200, A: 255}},
		{"cross-track error (m)", crossTrack, color.RGBA{B: 200, A: 255}},
		{"speed (m/s)", speed, color.RGBA{G: 150, A: 255}},
	} {
		line, err := plotter.NewLine(series.xys)
		if err != nil {
			log.Fatalf("failed to build %s series: %v", series.name, err)
		}
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Color = series.color
		p.Add(line)
		p.Legend.Add(series.name, line)
	}

	if err := p.Save(10*vg.Inch, 5*vg.Inch, *out); err != nil {
		log.Fatalf("failed to save plot: %v", err)
	}
	log.Printf("plotted %d cycles (%d recovered failures) to %s", len(rows), failures, *out)
}
