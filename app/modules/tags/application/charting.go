package tagservice

import (
	"bytes"
	"fmt"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	tagdomain "github.com/Black-And-White-Club/frolf-club/app/modules/tags/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette colors a position chart.
type ChartPalette struct {
	Background  drawing.Color
	PrimaryLine drawing.Color
	AccentLine  drawing.Color
	TextColor   drawing.Color
}

// DefaultPalette is the light theme used by the web client.
var DefaultPalette = ChartPalette{
	Background:  drawing.ColorWhite,
	PrimaryLine: drawing.ColorFromHex("2f6b3a"),
	AccentLine:  drawing.ColorFromHex("d4a017"),
	TextColor:   drawing.ColorFromHex("222222"),
}

// GeneratePositionChart produces a PNG line chart of a player's position history.
// Position 1 is drawn at the top.
func GeneratePositionChart(name string, history []tagdomain.PositionPoint, palette ChartPalette) ([]byte, error) {
	if len(history) < 2 {
		return nil, leaguedomain.Invalid("not enough rounds to chart")
	}

	// X is the round index so rounds recorded with the same timestamp stay distinct.
	xValues := make([]float64, len(history))
	yValues := make([]float64, len(history))
	lo, hi := history[0].Position, history[0].Position
	for i, p := range history {
		xValues[i] = float64(i)
		yValues[i] = float64(p.Position)
		lo = min(lo, p.Position)
		hi = max(hi, p.Position)
	}

	series := chart.ContinuousSeries{
		Name:    name,
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: palette.PrimaryLine,
			StrokeWidth: 2,
			DotWidth:    4,
			DotColor:    palette.AccentLine,
		},
	}

	graph := chart.Chart{
		Title:  name,
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Round",
			ValueFormatter: roundFormatter,
			Style:          chart.Style{FontColor: palette.TextColor},
		},
		YAxis: chart.YAxis{
			Name:  "Tag",
			Style: chart.Style{FontColor: palette.TextColor},
			Range: &chart.ContinuousRange{
				Min:        float64(lo) - 0.5,
				Max:        float64(hi) + 0.5,
				Descending: true,
			},
		},
		Series: []chart.Series{series},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func roundFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}
