// Package metrics implements the layout cost metrics, their configuration,
// and the normalization policy that makes their raw costs comparable.
package metrics

import (
	"github.com/verte-zerg/layscore/internal/keyboard"
	"github.com/verte-zerg/layscore/internal/mapper"
)

// Class is the ngram class a metric consumes.
type Class int

// Metric classes.
const (
	ClassUnigram Class = iota
	ClassBigram
	ClassTrigram
)

// String implements fmt.Stringer.
func (c Class) String() string {
	switch c {
	case ClassUnigram:
		return "unigram"
	case ClassBigram:
		return "bigram"
	default:
		return "trigram"
	}
}

// Input carries the read-only data one evaluation works on.
type Input struct {
	Layout *keyboard.Layout
	Tables *mapper.Tables
}

// Outcome is a metric's raw result before normalization.
type Outcome struct {
	// Raw is the unnormalized cost.
	Raw float64
	// Found is the relative weight of the ngrams the metric charged;
	// the weight_found normalization denominator.
	Found float64
	// Info optionally carries informational detail for reporting.
	Info string
}

// Metric computes one cost over a mapped ngram table. Implementations are
// pure: they never mutate the input or themselves during Evaluate.
type Metric interface {
	Name() string
	Class() Class
	Evaluate(in *Input) Outcome
}

// PairCoster is a bigram metric whose per-key-pair cost can be reused by
// trigram metrics (irregularity, secondary bigrams).
type PairCoster interface {
	Metric
	PairCost(layout *keyboard.Layout, k1, k2 keyboard.LayerKey) float64
}

// evaluatePairs runs a pair-cost function over the bigram table, reducing in
// parallel shards.
func evaluatePairs(in *Input, cost func(layout *keyboard.Layout, k1, k2 keyboard.LayerKey) float64) Outcome {
	grams := in.Tables.Bigrams
	raw, found := shardSum(len(grams), func(lo, hi int) (raw, found float64) {
		for _, g := range grams[lo:hi] {
			c := cost(in.Layout, g.K1, g.K2)
			if c == 0 {
				continue
			}
			raw += c * g.Rel
			found += g.Rel
		}
		return raw, found
	})
	return Outcome{Raw: raw, Found: found}
}

// evaluateTriples runs a triple-cost function over the trigram table,
// reducing in parallel shards.
func evaluateTriples(in *Input, cost func(layout *keyboard.Layout, g mapper.Trigram) float64) Outcome {
	grams := in.Tables.Trigrams
	raw, found := shardSum(len(grams), func(lo, hi int) (raw, found float64) {
		for _, g := range grams[lo:hi] {
			c := cost(in.Layout, g)
			if c == 0 {
				continue
			}
			raw += c * g.Rel
			found += g.Rel
		}
		return raw, found
	})
	return Outcome{Raw: raw, Found: found}
}
