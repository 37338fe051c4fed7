package types

import "testing"

func TestMetricAttributes(t *testing.T) {
	cases := []struct {
		m                   Metric
		column, unit, label string
	}{
		{Height, "avg_height", "cm", "Height"},
		{Weight, "avg_weight", "kg", "Weight"},
		{LifeSpan, "avg_life_span", "years", "Life Span"},
	}
	for _, c := range cases {
		if c.m.Column() != c.column || c.m.Unit() != c.unit || c.m.DisplayName() != c.label {
			t.Fatalf("metric %d => (%q,%q,%q) want (%q,%q,%q)", int(c.m), c.m.Column(), c.m.Unit(), c.m.DisplayName(), c.column, c.unit, c.label)
		}
	}
	if Metric(0).Valid() || Metric(4).Valid() {
		t.Fatalf("out of range metrics must be invalid")
	}
	if Metric(9).Column() != "" {
		t.Fatalf("invalid metric must not map to a column")
	}
}

func TestParseMetric(t *testing.T) {
	cases := map[string]Metric{
		"height":    Height,
		" Weight ":  Weight,
		"life_span": LifeSpan,
		"Life Span": LifeSpan,
		"lifespan":  LifeSpan,
		"life":      LifeSpan,
		"Life-Span": LifeSpan,
	}
	for in, want := range cases {
		got, err := ParseMetric(in)
		if err != nil || got != want {
			t.Fatalf("ParseMetric(%q) = %v, %v want %v", in, got, err, want)
		}
	}
	if _, err := ParseMetric("tail"); err == nil {
		t.Fatalf("expected error for unknown metric")
	}
}

func TestBreedRecordValue(t *testing.T) {
	b := BreedRecord{AvgHeight: 1, AvgWeight: 2, AvgLifeSpan: 3}
	if b.Value(Height) != 1 || b.Value(Weight) != 2 || b.Value(LifeSpan) != 3 {
		t.Fatalf("unexpected values: %+v", b)
	}
}
