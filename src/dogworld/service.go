// Package dogworld ties the store, the breed API and the charting together into the
// actions offered by the viewer and the reader.
package dogworld

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iafilius/DoggiesWorld/src/analysis"
	"github.com/iafilius/DoggiesWorld/src/applog"
	"github.com/iafilius/DoggiesWorld/src/config"
	"github.com/iafilius/DoggiesWorld/src/dogapi"
	"github.com/iafilius/DoggiesWorld/src/ingest"
	"github.com/iafilius/DoggiesWorld/src/metrics"
	"github.com/iafilius/DoggiesWorld/src/store"
	"github.com/iafilius/DoggiesWorld/src/types"
)

// FillOutcome tells the caller what Fill did to the table.
type FillOutcome int

const (
	FillSkipped  FillOutcome = iota // table had rows and overwrite was declined
	FillFilled                      // table was empty and has been loaded
	FillReplaced                    // old rows swapped for a fresh download
)

func (o FillOutcome) String() string {
	switch o {
	case FillFilled:
		return "filled"
	case FillReplaced:
		return "replaced"
	}
	return "skipped"
}

// Service runs the user-facing actions. Every method blocks until done.
type Service struct {
	Store   *store.Store
	Client  *dogapi.Client
	Config  *config.Config
	Metrics *metrics.Metrics // may be nil
}

// Open creates the empty store and the API client described by cfg.
func Open(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Service, error) {
	st, err := store.Open(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	cl := dogapi.New(cfg.APIURL, cfg.HTTPTimeout)
	cl.APIKey = cfg.APIKey
	return &Service{Store: st, Client: cl, Config: cfg, Metrics: m}, nil
}

func (s *Service) Close() error { return s.Store.Close() }

// HasData reports whether the table holds at least one row.
func (s *Service) HasData(ctx context.Context) (bool, error) {
	n, err := s.Store.Count(ctx)
	return n > 0, err
}

// Fill loads the breed list. When the table already holds rows, overwrite is asked
// whether to replace them; a nil func or a false answer leaves the table as is.
// On any error the previous contents stay in place.
func (s *Service) Fill(ctx context.Context, overwrite func() bool) (FillOutcome, ingest.Result, error) {
	s.Metrics.IncAction("fill")
	has, err := s.HasData(ctx)
	if err != nil {
		return FillSkipped, ingest.Result{}, err
	}
	outcome := FillFilled
	if has {
		if overwrite == nil || !overwrite() {
			applog.Infof("fill: table not empty, overwrite declined")
			return FillSkipped, ingest.Result{}, nil
		}
		outcome = FillReplaced
	}

	res, err := ingest.Ingest(ctx, s.Client, s.Store, ingest.Options{
		ImageTemplate: s.Config.ImageURLTemplate,
		Replace:       outcome == FillReplaced,
	})
	if err != nil {
		s.Metrics.IncError(metrics.ErrorKind(err))
		return FillSkipped, res, fmt.Errorf("fill database: %w", err)
	}
	s.Metrics.IncRefresh(outcome.String())
	s.Metrics.SetBreeds(res.Breeds)
	s.Metrics.ObserveFetch(res.Duration.Seconds())
	return outcome, res, nil
}

// Clear empties the table.
func (s *Service) Clear(ctx context.Context) error {
	s.Metrics.IncAction("clear")
	if err := s.Store.Clear(ctx); err != nil {
		return err
	}
	s.Metrics.SetBreeds(0)
	applog.Infof("database cleared")
	return nil
}

// Average computes the overall mean of m.
func (s *Service) Average(ctx context.Context, m types.Metric) (analysis.Average, error) {
	s.Metrics.IncAction("average")
	a, err := analysis.AverageOf(ctx, s.Store, m)
	if err != nil {
		s.Metrics.IncError(metrics.ErrorKind(err))
		return a, err
	}
	applog.Debugf("average %s", a)
	return a, nil
}

// Breeds exports every stored row.
type Breeds struct {
	Exported time.Time           `yaml:"exported"`
	Count    int                 `yaml:"count"`
	Breeds   []types.BreedRecord `yaml:"breeds"`
}

// ExportYAML writes all rows as YAML. An empty table is reported as analysis.ErrNoData.
func (s *Service) ExportYAML(ctx context.Context, w io.Writer) error {
	s.Metrics.IncAction("export")
	recs, err := s.Store.All(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return analysis.ErrNoData
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Breeds{Exported: time.Now().UTC(), Count: len(recs), Breeds: recs}); err != nil {
		return fmt.Errorf("encode breeds: %w", err)
	}
	return enc.Close()
}

// IsEmpty reports whether err means there was nothing in the table to work with.
func IsEmpty(err error) bool { return errors.Is(err, analysis.ErrNoData) }

// IsConnection reports whether err came from reaching the remote endpoint.
func IsConnection(err error) bool {
	return errors.Is(err, dogapi.ErrConnection) || errors.Is(err, dogapi.ErrRetrieval)
}
