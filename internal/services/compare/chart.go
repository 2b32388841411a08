package compare

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// PriceSeries is one ticker's closes, oldest first.
type PriceSeries struct {
	Ticker string
	Dates  []time.Time
	Closes []float64
}

var seriesColors = []drawing.Color{
	drawing.ColorFromHex("2563eb"), // blue-600
	drawing.ColorFromHex("dc2626"), // red-600
}

// Rebased returns the closes scaled so the first close is 100.
func (p PriceSeries) Rebased() []float64 {
	out := make([]float64, len(p.Closes))
	if len(p.Closes) == 0 || p.Closes[0] <= 0 {
		return out
	}
	base := p.Closes[0]
	for i, c := range p.Closes {
		out[i] = c / base * 100
	}
	return out
}

// RenderPriceChart renders a PNG line chart with one rebased line per series.
// Returns raw PNG bytes.
func RenderPriceChart(series []PriceSeries) ([]byte, error) {
	var lines []chart.Series
	for i, s := range series {
		if len(s.Closes) < 2 {
			return nil, fmt.Errorf("need at least 2 closes for %s, got %d", s.Ticker, len(s.Closes))
		}
		lines = append(lines, chart.TimeSeries{
			Name: s.Ticker,
			Style: chart.Style{
				StrokeColor: seriesColors[i%len(seriesColors)],
				StrokeWidth: 2,
			},
			XValues: s.Dates,
			YValues: s.Rebased(),
		})
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no price series to chart")
	}

	graph := chart.Chart{
		Title:  "Relative Performance (rebased to 100)",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: lines,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
