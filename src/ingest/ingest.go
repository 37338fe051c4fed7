// Package ingest turns the remote breed list into BreedRecord rows and loads them
// into the store as one batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iafilius/DoggiesWorld/src/applog"
	"github.com/iafilius/DoggiesWorld/src/dogapi"
	"github.com/iafilius/DoggiesWorld/src/types"
)

// rangeSeparator splits "low - high" range strings.
const rangeSeparator = " - "

// BreedFetcher returns the decoded breed list.
type BreedFetcher interface {
	FetchBreeds(ctx context.Context) ([]dogapi.Breed, error)
}

// Writer receives the finished batch.
type Writer interface {
	InsertAll(ctx context.Context, recs []types.BreedRecord) error
	Replace(ctx context.Context, recs []types.BreedRecord) error
}

// Options tune one ingestion.
type Options struct {
	// ImageTemplate is a fmt template with one %s for the reference image id.
	ImageTemplate string
	// Replace swaps the table contents instead of appending to it.
	Replace bool
}

// Result summarises a completed ingestion.
type Result struct {
	RunID    string
	Breeds   int
	Duration time.Duration
}

// EntryError reports the first breed entry that does not fit the schema.
type EntryError struct {
	Index int
	ID    int
	Field string
	Err   error
}

func (e *EntryError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("breed #%d (id=%d): %s: %v", e.Index, e.ID, e.Field, e.Err)
	}
	return fmt.Sprintf("breed #%d: %s: %v", e.Index, e.Field, e.Err)
}

func (e *EntryError) Unwrap() []error { return []error{dogapi.ErrMalformedPayload, e.Err} }

var errMissing = errors.New("missing field")

// Ingest fetches the breed list once, converts every entry and writes the batch with a
// single commit. Any failure leaves the store untouched.
func Ingest(ctx context.Context, f BreedFetcher, w Writer, opts Options) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.NewString()}
	log := applog.Logger().With(zap.String("run_id", res.RunID))

	breeds, err := f.FetchBreeds(ctx)
	if err != nil {
		log.Warn("breed list fetch failed", zap.Error(err))
		return res, err
	}
	recs, err := Build(breeds, opts.ImageTemplate)
	if err != nil {
		log.Warn("breed list rejected", zap.Error(err))
		return res, err
	}

	if opts.Replace {
		err = w.Replace(ctx, recs)
	} else {
		err = w.InsertAll(ctx, recs)
	}
	if err != nil {
		log.Error("breed insert failed", zap.Error(err))
		return res, fmt.Errorf("store breeds: %w", err)
	}
	res.Breeds = len(recs)
	res.Duration = time.Since(start)
	log.Info("breeds ingested",
		zap.Int("breeds", res.Breeds),
		zap.Bool("replace", opts.Replace),
		zap.Duration("took", res.Duration))
	return res, nil
}

// Build converts decoded entries into rows. It stops at the first entry that is
// missing a required field or carries no usable number.
func Build(breeds []dogapi.Breed, imageTemplate string) ([]types.BreedRecord, error) {
	out := make([]types.BreedRecord, 0, len(breeds))
	for i, b := range breeds {
		rec, err := buildOne(b, imageTemplate)
		if err != nil {
			err.Index = i
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func buildOne(b dogapi.Breed, imageTemplate string) (types.BreedRecord, *EntryError) {
	fail := func(field string, err error) *EntryError {
		ee := &EntryError{Field: field, Err: err}
		if b.ID != nil {
			ee.ID = *b.ID
		}
		return ee
	}
	if b.ID == nil {
		return types.BreedRecord{}, fail("id", errMissing)
	}
	if b.Name == nil {
		return types.BreedRecord{}, fail("name", errMissing)
	}
	if b.Height == nil || b.Height.Metric == nil {
		return types.BreedRecord{}, fail("height.metric", errMissing)
	}
	if b.Weight == nil || b.Weight.Metric == nil {
		return types.BreedRecord{}, fail("weight.metric", errMissing)
	}
	if b.LifeSpan == nil {
		return types.BreedRecord{}, fail("life_span", errMissing)
	}

	height, err := ParseRange(*b.Height.Metric)
	if err != nil {
		return types.BreedRecord{}, fail("height.metric", err)
	}
	weight, err := ParseRange(*b.Weight.Metric)
	if err != nil {
		return types.BreedRecord{}, fail("weight.metric", err)
	}
	life, err := ParseLifeSpan(*b.LifeSpan)
	if err != nil {
		return types.BreedRecord{}, fail("life_span", err)
	}

	var imageID string
	if b.ReferenceImageID != nil {
		imageID = *b.ReferenceImageID
	}
	return types.BreedRecord{
		ID:          *b.ID,
		Name:        *b.Name,
		AvgHeight:   height,
		AvgWeight:   weight,
		AvgLifeSpan: life,
		ImageURL:    dogapi.ImageURL(imageTemplate, imageID),
	}, nil
}

// ParseRange averages the endpoints of a "low - high" string. A single value is its
// own average. NaN endpoints, which the API sends for a few breeds, are skipped.
func ParseRange(s string) (float64, error) {
	var vals []float64
	for _, part := range strings.Split(s, rangeSeparator) {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, fmt.Errorf("range %q: %w", s, err)
		}
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || math.IsInf(v, 0) {
			return 0, fmt.Errorf("range %q: value %v out of bounds", s, v)
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("range %q: no numeric value", s)
	}
	return mean(vals), nil
}

// ParseLifeSpan averages every whitespace-delimited token made only of ASCII digits,
// e.g. "10 - 12 years" => 11. Other numbers in the text are included as-is.
func ParseLifeSpan(s string) (float64, error) {
	var vals []float64
	for _, tok := range strings.Fields(s) {
		if !isDigits(tok) {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, fmt.Errorf("life span %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("life span %q: no numeric token", s)
	}
	return mean(vals), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
