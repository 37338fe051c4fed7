package types

import (
	"fmt"
	"strings"
)

// BreedRecord is one row of the dogs table.
type BreedRecord struct {
	ID          int     `json:"id" yaml:"id"`
	Name        string  `json:"breed_name" yaml:"breed_name"`
	AvgHeight   float64 `json:"avg_height_cm" yaml:"avg_height_cm"`
	AvgWeight   float64 `json:"avg_weight_kg" yaml:"avg_weight_kg"`
	AvgLifeSpan float64 `json:"avg_life_span_years" yaml:"avg_life_span_years"`
	ImageURL    string  `json:"image_url" yaml:"image_url"`
}

// Value returns the averaged value stored for metric m.
func (b BreedRecord) Value(m Metric) float64 {
	switch m {
	case Height:
		return b.AvgHeight
	case Weight:
		return b.AvgWeight
	case LifeSpan:
		return b.AvgLifeSpan
	}
	return 0
}

// Metric selects one of the averaged numeric columns.
type Metric int

const (
	Height Metric = iota + 1
	Weight
	LifeSpan
)

// Metrics lists every metric in menu order.
var Metrics = []Metric{Height, Weight, LifeSpan}

// Column is the SQL column holding the metric.
func (m Metric) Column() string {
	switch m {
	case Height:
		return "avg_height"
	case Weight:
		return "avg_weight"
	case LifeSpan:
		return "avg_life_span"
	}
	return ""
}

// Unit is the display unit label.
func (m Metric) Unit() string {
	switch m {
	case Height:
		return "cm"
	case Weight:
		return "kg"
	case LifeSpan:
		return "years"
	}
	return ""
}

// DisplayName is the human label used in menus, charts and result text.
func (m Metric) DisplayName() string {
	switch m {
	case Height:
		return "Height"
	case Weight:
		return "Weight"
	case LifeSpan:
		return "Life Span"
	}
	return ""
}

func (m Metric) Valid() bool { return m >= Height && m <= LifeSpan }

func (m Metric) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return m.DisplayName()
}

// ParseMetric accepts "height", "weight", "life_span", "lifespan", "life span" or
// the short "life" (any case; "_", "-" and spaces are ignored).
func ParseMetric(s string) (Metric, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("_", "", "-", "", " ", "").Replace(k)
	switch k {
	case "height":
		return Height, nil
	case "weight":
		return Weight, nil
	case "lifespan", "life":
		return LifeSpan, nil
	}
	return 0, fmt.Errorf("unknown metric %q (want height, weight or life_span)", s)
}

// ChartPoint is one bar of the breed comparison chart.
type ChartPoint struct {
	Breed string
	Value float64
}
