package report

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pitwall/internal/analysis/degradation"
	"github.com/banshee-data/pitwall/internal/analysis/race"
	"github.com/banshee-data/pitwall/internal/fsutil"
	"github.com/banshee-data/pitwall/internal/security"
)

// curveSteps is the number of segments drawn per model curve.
const curveSteps = 50

// PlotDegradation writes one PNG per car with degradation samples into dir:
// lap time against tyre age per compound, with the linear fit solid and the
// quadratic fit dashed. It returns the written paths in car order.
func PlotDegradation(fsys fsutil.FileSystem, dir string, r *race.Report) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	var paths []string
	for _, idx := range r.CarIndices() {
		c := r.Cars[idx]
		if len(c.Points) == 0 {
			continue
		}
		initials := r.Initials(idx)
		p, err := degradationPlot(initials, c)
		if err != nil {
			return paths, fmt.Errorf("plot %s: %w", initials, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("degradation_%s.png", security.SanitizeFilename(initials)))
		if err := savePNG(fsys, p, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func degradationPlot(initials string, c *race.CarResult) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Tyre Degradation", initials)
	p.X.Label.Text = "Tyre age (laps)"
	p.Y.Label.Text = "Lap time (s)"

	compounds := lo.Keys(c.Points)
	sort.Strings(compounds)
	for i, comp := range compounds {
		pts := c.Points[comp]
		xys := make(plotter.XYs, len(pts))
		for j, pt := range pts {
			xys[j] = plotter.XY{X: pt.Age, Y: pt.LapTime}
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Color = plotutil.Color(i)
		scatter.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(scatter)
		p.Legend.Add(comp, scatter)

		m, ok := c.Models[comp]
		if !ok {
			continue
		}
		maxAge := slices.MaxFunc(pts, func(a, b degradation.Point) int { return cmp.Compare(a.Age, b.Age) }).Age
		lin, err := plotter.NewLine(curve(maxAge, func(age float64) float64 { return m.Baseline + m.Delta(age) }))
		if err != nil {
			return nil, err
		}
		lin.Color = plotutil.Color(i)
		lin.Width = vg.Points(1.5)
		p.Add(lin)
		p.Legend.Add(fmt.Sprintf("%s linear (R²=%.2f)", comp, m.RSquared), lin)

		quad, err := plotter.NewLine(curve(maxAge, func(age float64) float64 { return m.Baseline + m.QuadDelta(age) }))
		if err != nil {
			return nil, err
		}
		quad.Color = plotutil.Color(i)
		quad.Width = vg.Points(1)
		quad.Dashes = plotutil.Dashes(1)
		p.Add(quad)
		p.Legend.Add(comp+" quadratic", quad)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func curve(maxAge float64, f func(float64) float64) plotter.XYs {
	xys := make(plotter.XYs, curveSteps+1)
	for i := range xys {
		age := maxAge * float64(i) / curveSteps
		xys[i] = plotter.XY{X: age, Y: f(age)}
	}
	return xys
}

func savePNG(fsys fsutil.FileSystem, p *plot.Plot, path string) error {
	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
