package dogworld

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/iafilius/DoggiesWorld/src/analysis"
	"github.com/iafilius/DoggiesWorld/src/applog"
	"github.com/iafilius/DoggiesWorld/src/types"
)

// ErrChartMissing is returned when the chart file cannot be found after rendering.
var ErrChartMissing = errors.New("chart file not found")

const (
	chartWidth  = 760
	chartHeight = 520
	xAxisTitle  = "Breed Name"
)

var barColor = drawing.ColorFromHex("a8a8a8")

// Chart is a rendered comparison of a few random breeds.
type Chart struct {
	Metric types.Metric
	Points []types.ChartPoint
	Path   string
	Image  image.Image
}

// ChartTitle is the heading drawn above the bars.
func ChartTitle(m types.Metric) string {
	return fmt.Sprintf("Average %s of %d Random Dogs", m.DisplayName(), analysis.ChartSampleSize)
}

// YAxisTitle labels the value axis, e.g. "Average Height in cm".
func YAxisTitle(m types.Metric) string {
	return fmt.Sprintf("Average %s in %s", m.DisplayName(), m.Unit())
}

// Chart samples fresh breeds, writes the bar chart to the configured path and loads
// it back from disk.
func (s *Service) Chart(ctx context.Context, m types.Metric) (Chart, error) {
	s.Metrics.IncAction("chart")
	pts, err := analysis.SampleForChart(ctx, s.Store, m)
	if err != nil {
		return Chart{}, err
	}
	img, err := RenderChart(m, pts)
	if err != nil {
		return Chart{}, err
	}
	path := s.Config.ChartPath
	if err := WritePNG(path, img); err != nil {
		return Chart{}, err
	}
	loaded, err := LoadChart(path)
	if err != nil {
		return Chart{}, err
	}
	applog.Debugf("chart %s written to %s (%d bars)", m, path, len(pts))
	return Chart{Metric: m, Points: pts, Path: path, Image: loaded}, nil
}

// RenderChart draws one grey bar per point.
func RenderChart(m types.Metric, pts []types.ChartPoint) (image.Image, error) {
	if len(pts) == 0 {
		return nil, analysis.ErrNoData
	}
	bars := make([]chart.Value, 0, len(pts))
	maxV := 0.0
	for _, p := range pts {
		bars = append(bars, chart.Value{
			Label: p.Breed,
			Value: p.Value,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor, StrokeWidth: 1},
		})
		maxV = math.Max(maxV, p.Value)
	}
	if maxV <= 0 {
		maxV = 1
	}
	bc := chart.BarChart{
		Title:      ChartTitle(m),
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 36}},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   80,
		BarSpacing: 60,
		YAxis: chart.YAxis{
			Name:  YAxisTitle(m),
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(maxV * 1.1)},
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	return drawCaption(img, xAxisTitle), nil
}

// drawCaption centres text along the bottom edge of img.
func drawCaption(img image.Image, text string) image.Image {
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  rgba,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(b.Min.X+(b.Dx()-width)/2, b.Max.Y-10),
	}
	d.DrawString(text)
	return rgba
}

// WritePNG stores img as PNG at path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

// LoadChart reads the chart artifact back; a missing file is ErrChartMissing.
func LoadChart(path string) (image.Image, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrChartMissing, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnidentifiedImage, path, err)
	}
	return img, nil
}
