package mapper

import (
	"math"
	"testing"

	"github.com/verte-zerg/layscore/internal/corpus"
	"github.com/verte-zerg/layscore/internal/keyboard"
)

const epsilon = 1e-9

const testLayoutYAML = `
name: test
layers:
  - - "qwertzuiop"
    - "asdfghjkl;"
    - "yxcvbnm,.-"
  - - "QWERTZUIOP"
    - "ASDFGHJKL+"
    - "YXCVBNM!?#"
enter: [3, 9]
`

func parseTestLayout(t *testing.T) *keyboard.Layout {
	t.Helper()
	layout, err := keyboard.Parse([]byte(testLayoutYAML))
	if err != nil {
		t.Fatalf("failed to parse layout: %v", err)
	}
	return layout
}

func TestMapExcludesLineBreakPauses(t *testing.T) {
	layout := parseTestLayout(t)
	c := &corpus.Corpus{
		Bigrams: []corpus.Bigram{
			{A: '\n', B: 'a', Weight: 1, Rel: 0.5},
			{A: 'a', B: '\n', Weight: 1, Rel: 0.5},
		},
		Trigrams: []corpus.Trigram{
			{A: 'a', B: '\n', C: 'b', Weight: 1, Rel: 0.5},
			{A: 'a', B: 'b', C: '\n', Weight: 1, Rel: 0.5},
		},
	}

	tables := New(DefaultConfig()).Map(c, layout)
	if len(tables.Bigrams) != 1 {
		t.Fatalf("expected 1 bigram, got %d", len(tables.Bigrams))
	}
	if tables.Bigrams[0].K1.Symbol != 'a' || tables.Bigrams[0].K2.Symbol != '\n' {
		t.Fatalf("unexpected surviving bigram: %q %q", tables.Bigrams[0].K1.Symbol, tables.Bigrams[0].K2.Symbol)
	}
	if math.Abs(tables.BigramTotal-0.5) > epsilon {
		t.Fatalf("expected bigram total 0.5, got %v", tables.BigramTotal)
	}
	if len(tables.Trigrams) != 1 {
		t.Fatalf("expected 1 trigram, got %d", len(tables.Trigrams))
	}
	if tables.Trigrams[0].K3.Symbol != '\n' {
		t.Fatalf("expected trigram ending in line break, got %q", tables.Trigrams[0].K3.Symbol)
	}

	cfg := DefaultConfig()
	cfg.ExcludeLineBreaks = false
	tables = New(cfg).Map(c, layout)
	if len(tables.Bigrams) != 2 {
		t.Fatalf("expected 2 bigrams without exclusion, got %d", len(tables.Bigrams))
	}
	if len(tables.Trigrams) != 2 {
		t.Fatalf("expected 2 trigrams without exclusion, got %d", len(tables.Trigrams))
	}
}

func TestMapSplitsModifiers(t *testing.T) {
	layout := parseTestLayout(t)
	c := &corpus.Corpus{
		Unigrams: []corpus.Unigram{{Sym: 'Q', Weight: 1, Rel: 1.0}},
		Bigrams:  []corpus.Bigram{{A: 'Q', B: 'a', Weight: 1, Rel: 0.4}},
	}

	tables := New(DefaultConfig()).Map(c, layout)
	if len(tables.Unigrams) != 2 {
		t.Fatalf("expected 2 unigram entries, got %d", len(tables.Unigrams))
	}
	if !tables.Unigrams[0].Key.IsModifier || tables.Unigrams[0].Key.Symbol != keyboard.RightShiftSymbol {
		t.Fatalf("expected right shift first, got %+v", tables.Unigrams[0].Key)
	}
	if tables.Unigrams[1].Key.Symbol != 'Q' {
		t.Fatalf("expected base key second, got %q", tables.Unigrams[1].Key.Symbol)
	}
	if math.Abs(tables.UnigramTotal-1.0) > epsilon {
		t.Fatalf("expected unigram total 1.0, got %v", tables.UnigramTotal)
	}

	// (Q, a) expands to shift-Q-a: two sliding windows, full source weight each.
	if len(tables.Bigrams) != 2 {
		t.Fatalf("expected 2 bigram windows, got %d", len(tables.Bigrams))
	}
	for _, g := range tables.Bigrams {
		if math.Abs(g.Rel-0.4) > epsilon {
			t.Fatalf("expected window rel 0.4, got %v", g.Rel)
		}
	}
	if math.Abs(tables.BigramTotal-0.4) > epsilon {
		t.Fatalf("expected bigram total 0.4, got %v", tables.BigramTotal)
	}

	cfg := DefaultConfig()
	cfg.SplitModifiers.Enabled = false
	tables = New(cfg).Map(c, layout)
	if len(tables.Unigrams) != 1 {
		t.Fatalf("expected 1 unigram entry without splitting, got %d", len(tables.Unigrams))
	}
	if len(tables.Bigrams) != 1 {
		t.Fatalf("expected 1 bigram without splitting, got %d", len(tables.Bigrams))
	}
}

func TestSameKeyModScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SplitModifiers.SameKeyModFactor = 0.25
	m := New(cfg)

	modA := keyboard.LayerKey{
		Key:        keyboard.Key{Position: keyboard.Position{Row: 3, Column: 0}},
		IsModifier: true,
	}
	modB := keyboard.LayerKey{
		Key:        keyboard.Key{Position: keyboard.Position{Row: 3, Column: 0}},
		IsModifier: true,
	}
	if got := m.sameKeyModScale(modA, modB); math.Abs(got-0.25) > epsilon {
		t.Fatalf("expected colliding modifiers scaled by 0.25, got %v", got)
	}

	modB.Column = 9
	if got := m.sameKeyModScale(modA, modB); got != 1.0 {
		t.Fatalf("expected distinct modifier keys unscaled, got %v", got)
	}
	base := keyboard.LayerKey{Key: modA.Key}
	if got := m.sameKeyModScale(modA, base); got != 1.0 {
		t.Fatalf("expected modifier-base window unscaled, got %v", got)
	}
}

func TestMapBoostsCommonBigrams(t *testing.T) {
	layout := parseTestLayout(t)
	c := &corpus.Corpus{
		Bigrams: []corpus.Bigram{
			{A: 'a', B: 's', Weight: 10, Rel: 0.5},
			{A: 's', B: 'd', Weight: 0.5, Rel: 0.01},
		},
	}

	cfg := DefaultConfig()
	cfg.IncreaseCommonNgrams = IncreaseCommonNgramsConfig{
		Enabled:              true,
		CriticalFraction:     0.1,
		Factor:               2.0,
		TotalWeightThreshold: 1.0,
	}
	tables := New(cfg).Map(c, layout)

	if math.Abs(tables.Bigrams[0].Rel-1.0) > epsilon {
		t.Fatalf("expected boosted rel 1.0, got %v", tables.Bigrams[0].Rel)
	}
	if math.Abs(tables.Bigrams[1].Rel-0.01) > epsilon {
		t.Fatalf("expected rare bigram unboosted, got %v", tables.Bigrams[1].Rel)
	}
	if math.Abs(tables.BigramTotal-1.01) > epsilon {
		t.Fatalf("expected bigram total 1.01, got %v", tables.BigramTotal)
	}
}

func TestMapTracksNotFoundWeight(t *testing.T) {
	layout := parseTestLayout(t)
	c := &corpus.Corpus{
		Unigrams: []corpus.Unigram{
			{Sym: 'a', Weight: 1, Rel: 0.5},
			{Sym: 'ß', Weight: 1, Rel: 0.5},
		},
	}
	tables := New(DefaultConfig()).Map(c, layout)
	if math.Abs(tables.NotFoundUnigrams-0.5) > epsilon {
		t.Fatalf("expected 0.5 not-found weight, got %v", tables.NotFoundUnigrams)
	}
	if math.Abs(tables.UnigramTotal-0.5) > epsilon {
		t.Fatalf("expected 0.5 mapped weight, got %v", tables.UnigramTotal)
	}
	if got := tables.UnigramRel('ß'); math.Abs(got-0.5) > epsilon {
		t.Fatalf("expected unigram rel tracked for unmapped symbol, got %v", got)
	}
}
