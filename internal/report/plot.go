package report

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ayusman/tremor/internal/session"
)

// SavePlot renders the displacement of each measured landmark over the
// analyzed frame range and saves it to path (format chosen by extension,
// e.g. .png or .svg). Each track is centered on its own mean so the
// oscillation around zero is visible; missing frames leave gaps in the line.
func SavePlot(path string, r *session.Report, legend bool) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s tremor displacement, recorded at a depth of %.0fcm",
		r.TremorType, r.DepthCm)
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Displacement (mm)"

	ids := make([]int, 0, len(r.Tracks))
	for id := range r.Tracks {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for i, id := range ids {
		tr := r.Tracks[id]

		valid := tr.ValidSamples()
		if len(valid) == 0 {
			continue
		}

		xs := make([]float64, len(valid))
		for j, s := range valid {
			xs[j] = s.Point.XMm
		}
		center := stat.Mean(xs, nil)

		pts := make(plotter.XYs, len(valid))
		for j, s := range valid {
			pts[j].X = float64(s.Frame)
			pts[j].Y = s.Point.XMm - center
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plot landmark %d: %w", id, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)

		if legend {
			p.Legend.Add(fmt.Sprintf("landmark %d", id), line)
		}
	}

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
