package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iafilius/DoggiesWorld/src/types"
)

// ChartSampleSize is the number of breeds compared in one chart.
const ChartSampleSize = 4

// ErrNoData is returned when the store holds no rows.
var ErrNoData = errors.New("data not available")

// Querier is the read side of the breed store.
type Querier interface {
	Count(ctx context.Context) (int, error)
	Average(ctx context.Context, m types.Metric) (float64, bool, error)
	RandomPoints(ctx context.Context, m types.Metric, n int) ([]types.ChartPoint, error)
	RandomBreed(ctx context.Context) (types.BreedRecord, bool, error)
}

// Average is the mean of one metric over all stored breeds.
type Average struct {
	Metric types.Metric
	Name   string
	Value  float64 // rounded to 2 decimals
	Unit   string
}

// String renders e.g. "Height 25.0 cm".
func (a Average) String() string {
	return strings.Join([]string{a.Name, FormatValue(a.Value), a.Unit}, " ")
}

// Picture is one breed name with its photo URL.
type Picture struct {
	Breed    string
	ImageURL string
}

// Empty reports whether no picture is available.
func (p Picture) Empty() bool { return p.ImageURL == "" }

// AverageOf returns the overall mean of metric m, or ErrNoData for an empty store.
func AverageOf(ctx context.Context, q Querier, m types.Metric) (Average, error) {
	if !m.Valid() {
		return Average{}, fmt.Errorf("average: invalid metric %d", int(m))
	}
	n, err := q.Count(ctx)
	if err != nil {
		return Average{}, err
	}
	if n == 0 {
		return Average{}, ErrNoData
	}
	v, ok, err := q.Average(ctx, m)
	if err != nil {
		return Average{}, err
	}
	if !ok {
		return Average{}, ErrNoData
	}
	return Average{
		Metric: m,
		Name:   m.DisplayName(),
		Value:  Round2(v),
		Unit:   m.Unit(),
	}, nil
}

// SampleForChart picks ChartSampleSize random breeds with their value for m.
// Each call queries the store afresh, so results differ between calls.
func SampleForChart(ctx context.Context, q Querier, m types.Metric) ([]types.ChartPoint, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("sample: invalid metric %d", int(m))
	}
	pts, err := q.RandomPoints(ctx, m, ChartSampleSize)
	if err != nil {
		return nil, err
	}
	if len(pts) == 0 {
		return nil, ErrNoData
	}
	return pts, nil
}

// SampleOnePicture returns one random breed's name and image URL. ok is false when
// the store is empty.
func SampleOnePicture(ctx context.Context, q Querier) (Picture, bool, error) {
	b, ok, err := q.RandomBreed(ctx)
	if err != nil || !ok {
		return Picture{}, false, err
	}
	return Picture{Breed: b.Name, ImageURL: b.ImageURL}, true, nil
}

// Round2 rounds half away from zero to 2 decimals.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// FormatValue prints the shortest decimal form, keeping one decimal for whole
// numbers ("25.0", "11.75").
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
