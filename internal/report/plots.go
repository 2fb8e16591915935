package report

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/endurance/internal/docking"
	"github.com/banshee-data/endurance/internal/fsutil"
	"github.com/banshee-data/endurance/internal/relativity"
	"github.com/banshee-data/endurance/internal/spring"
)

// Plot dimensions shared by every chart.
const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 5 * vg.Inch
)

var (
	curveColor  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}
	markerColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}
	windowColor = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255}
)

// DilationPlot draws the dilation factor against gravity on a log axis, with
// the breakpoints marked.
func DilationPlot(samples int) (*plot.Plot, error) {
	pts := SampleDilation(samples)
	xys := make(plotter.XYs, len(pts))
	for i, s := range pts {
		xys[i] = plotter.XY{X: s.Gravity, Y: s.Factor}
	}

	p := plot.New()
	p.Title.Text = "Time dilation vs gravity"
	p.X.Label.Text = "Gravity (%)"
	p.Y.Label.Text = "Dilation factor"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("dilation line: %w", err)
	}
	line.Color = curveColor
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("factor", line)

	breaks := []float64{100, 120, 150, 180, 200}
	marks := make(plotter.XYs, len(breaks))
	for i, g := range breaks {
		marks[i] = plotter.XY{X: g, Y: relativity.Dilation(g)}
	}
	scatter, err := plotter.NewScatter(marks)
	if err != nil {
		return nil, fmt.Errorf("dilation breakpoints: %w", err)
	}
	scatter.GlyphStyle.Color = markerColor
	scatter.GlyphStyle.Radius = vg.Points(3)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	p.Legend.Add("breakpoints", scatter)

	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// SpringPlot draws the rotation step response of a spring filter toward the
// window midpoint, with the alignment window bounds as dashed lines.
func SpringPlot(params spring.Params, fps int, seconds float64, cfg docking.Config) (*plot.Plot, error) {
	f := spring.NewFilter(params, fps)
	frames := int(seconds * float64(f.FPS()))
	target := cfg.Window.Midpoint() / cfg.RotationMax
	samples := SampleStepResponse(f, target, frames)

	xys := make(plotter.XYs, len(samples))
	for i, s := range samples {
		xys[i] = plotter.XY{X: s.Seconds, Y: s.Position * cfg.RotationMax}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Spring response k=%g c=%g m=%g (zeta=%.2f)",
		params.Stiffness, params.Damping, params.Mass, f.DampingRatio())
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Rotation (deg)"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("spring line: %w", err)
	}
	line.Color = curveColor
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("rotation", line)

	for _, bound := range []float64{cfg.Window.Lower(), cfg.Window.Upper()} {
		b := bound
		fn := plotter.NewFunction(func(float64) float64 { return b })
		fn.Color = windowColor
		fn.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(fn)
	}

	p.X.Min = 0
	p.X.Max = seconds
	p.Y.Min = 0
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WritePNG renders p as a PNG into w.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SavePlots renders dilation.png and spring.png into dir on fsys and returns
// their paths. dir is created when missing.
func SavePlots(fsys fsutil.FileSystem, dir string, cfg docking.Config) ([]string, error) {
	dilation, err := DilationPlot(201)
	if err != nil {
		return nil, err
	}
	springPlot, err := SpringPlot(cfg.Spring, cfg.FrameRate, 2, cfg)
	if err != nil {
		return nil, err
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	plots := []struct {
		name string
		p    *plot.Plot
	}{
		{"dilation.png", dilation},
		{"spring.png", springPlot},
	}
	paths := make([]string, 0, len(plots))
	for _, pl := range plots {
		path := filepath.Join(dir, pl.name)
		if err := savePNG(fsys, path, pl.p); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func savePNG(fsys fsutil.FileSystem, path string, p *plot.Plot) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePNG(f, p); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	return f.Close()
}
