package report

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/endurance/internal/httputil"
	"github.com/banshee-data/endurance/internal/relativity"
)

// echartsAssetsPrefix serves the echarts JS from the public CDN.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// ClockChart builds a line chart of ship and earth seconds per tick, with the
// dilation factor on a secondary log axis.
func ClockChart(readouts []relativity.Readout) *charts.Line {
	ticks := make([]string, len(readouts))
	ship := make([]opts.LineData, len(readouts))
	earth := make([]opts.LineData, len(readouts))
	factor := make([]opts.LineData, len(readouts))
	for i, r := range readouts {
		ticks[i] = strconv.FormatUint(r.Tick, 10)
		ship[i] = opts.LineData{Value: r.ShipSeconds}
		earth[i] = opts.LineData{Value: r.EarthSeconds}
		factor[i] = opts.LineData{Value: r.Factor}
	}

	subtitle := "no readouts yet"
	if n := len(readouts); n > 0 {
		last := readouts[n-1]
		subtitle = fmt.Sprintf("ship %s  earth %s %s  factor %s  gravity %s",
			last.Ship, last.Earth.Value, last.Earth.Unit, last.FactorText, last.GravityText)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Endurance clocks", Theme: "dark", Width: "100%", Height: "640px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Ship vs Earth time", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Tick", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Seconds", Type: "value"}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "Factor", Type: "log"})

	line.SetXAxis(ticks).
		AddSeries("ship", ship).
		AddSeries("earth", earth).
		AddSeries("factor", factor, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	return line
}

// ClockChartHandler renders ClockChart over whatever source returns at
// request time.
func ClockChartHandler(source func() []relativity.Readout) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w)
			return
		}

		var buf bytes.Buffer
		if err := ClockChart(source()).Render(&buf); err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}

// DilationPNGHandler serves the dilation curve as a PNG.
func DilationPNGHandler(samples int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w)
			return
		}
		p, err := DilationPlot(samples)
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		var buf bytes.Buffer
		if err := WritePNG(&buf, p); err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}
}
