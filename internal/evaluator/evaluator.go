// Package evaluator maps a corpus onto a layout and aggregates the metric
// costs into a single comparable total.
package evaluator

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/layscore/internal/corpus"
	"github.com/verte-zerg/layscore/internal/keyboard"
	"github.com/verte-zerg/layscore/internal/mapper"
	"github.com/verte-zerg/layscore/internal/metrics"
)

// MetricResult is one metric's contribution to a layout's total cost.
type MetricResult struct {
	Name       string
	Class      metrics.Class
	Raw        float64
	Found      float64
	Normalized float64
	Weighted   float64
	Info       string
}

// Result is the full evaluation of one layout against one corpus.
type Result struct {
	Layout   string
	Metrics  []MetricResult
	Total    float64
	Duration time.Duration

	// NotFoundUnigrams is the relative weight of corpus unigrams whose
	// symbols the layout cannot produce; likewise for the other classes.
	NotFoundUnigrams float64
	NotFoundBigrams  float64
	NotFoundTrigrams float64
}

// Evaluator scores layouts against a fixed corpus and metric set.
type Evaluator struct {
	registry *metrics.Registry
	mapper   *mapper.Mapper
	corpus   *corpus.Corpus
}

// New builds an evaluator.
func New(reg *metrics.Registry, m *mapper.Mapper, c *corpus.Corpus) *Evaluator {
	return &Evaluator{registry: reg, mapper: m, corpus: c}
}

// Evaluate maps the corpus onto the layout once, then runs every enabled
// metric concurrently. The per-metric results come back in the registry's
// order (class, then name) regardless of completion order.
func (e *Evaluator) Evaluate(ctx context.Context, layout *keyboard.Layout) (*Result, error) {
	start := time.Now()
	tables := e.mapper.Map(e.corpus, layout)
	in := &metrics.Input{Layout: layout, Tables: tables}

	results := make([]MetricResult, len(e.registry.Entries))
	g, _ := errgroup.WithContext(ctx)
	for i, entry := range e.registry.Entries {
		g.Go(func() error {
			out := entry.Metric.Evaluate(in)
			all := classTotal(tables, entry.Metric.Class())
			normalized := entry.Norm.Apply(out.Raw, out.Found, all)
			results[i] = MetricResult{
				Name:       entry.Metric.Name(),
				Class:      entry.Metric.Class(),
				Raw:        out.Raw,
				Found:      out.Found,
				Normalized: normalized,
				Weighted:   normalized * entry.Weight,
				Info:       out.Info,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Layout:           layout.Name(),
		Metrics:          results,
		Duration:         time.Since(start),
		NotFoundUnigrams: tables.NotFoundUnigrams,
		NotFoundBigrams:  tables.NotFoundBigrams,
		NotFoundTrigrams: tables.NotFoundTrigrams,
	}
	for _, mr := range results {
		res.Total += mr.Weighted
	}

	log.Debug().
		Str("layout", layout.Name()).
		Float64("total", res.Total).
		Dur("duration", res.Duration).
		Msg("evaluated layout")
	return res, nil
}

func classTotal(t *mapper.Tables, c metrics.Class) float64 {
	switch c {
	case metrics.ClassUnigram:
		return t.UnigramTotal
	case metrics.ClassBigram:
		return t.BigramTotal
	default:
		return t.TrigramTotal
	}
}
