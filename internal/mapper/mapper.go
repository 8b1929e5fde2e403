// Package mapper turns symbol ngram tables into key-resolved ngram tables
// for one layout: it filters mental-pause ngrams, splits higher-layer symbols
// into modifier+base sequences, and optionally boosts very common bigrams.
package mapper

import (
	"github.com/verte-zerg/layscore/internal/corpus"
	"github.com/verte-zerg/layscore/internal/keyboard"
)

// SplitModifiersConfig controls modifier splitting.
type SplitModifiersConfig struct {
	Enabled bool `yaml:"enabled"`
	// SameKeyModFactor scales windows in which two modifiers collide on one
	// physical key.
	SameKeyModFactor float64 `yaml:"same_key_mod_factor"`
}

// IncreaseCommonNgramsConfig boosts bigrams that dominate the corpus.
type IncreaseCommonNgramsConfig struct {
	Enabled              bool    `yaml:"enabled"`
	CriticalFraction     float64 `yaml:"critical_fraction"`
	Factor               float64 `yaml:"factor"`
	TotalWeightThreshold float64 `yaml:"total_weight_threshold"`
}

// Config is the ngram mapper configuration.
type Config struct {
	ExcludeLineBreaks    bool                       `yaml:"exclude_line_breaks"`
	SplitModifiers       SplitModifiersConfig       `yaml:"split_modifiers"`
	IncreaseCommonNgrams IncreaseCommonNgramsConfig `yaml:"increase_common_ngrams"`
}

// DefaultConfig returns the mapper defaults used when the params file has no
// ngram_mapper section.
func DefaultConfig() Config {
	return Config{
		ExcludeLineBreaks: true,
		SplitModifiers:    SplitModifiersConfig{Enabled: true, SameKeyModFactor: 0.5},
	}
}

// Unigram is a key-resolved unigram.
type Unigram struct {
	Key keyboard.LayerKey
	Rel float64
}

// Bigram is a key-resolved bigram.
type Bigram struct {
	K1, K2 keyboard.LayerKey
	Rel    float64
}

// Trigram is a key-resolved trigram.
type Trigram struct {
	K1, K2, K3 keyboard.LayerKey
	Rel        float64
}

// Tables holds all key-resolved ngram tables for one layout.
type Tables struct {
	Layout *keyboard.Layout

	Unigrams []Unigram
	Bigrams  []Bigram
	Trigrams []Trigram

	// Total relative weight of mapped ngrams per n; the weight_all
	// normalization denominator.
	UnigramTotal float64
	BigramTotal  float64
	TrigramTotal float64

	// Relative weight lost to symbols absent from the layout.
	NotFoundUnigrams float64
	NotFoundBigrams  float64
	NotFoundTrigrams float64

	unigramRel map[rune]float64
}

// UnigramRel returns the relative unigram weight of a symbol, 0 if unknown.
func (t *Tables) UnigramRel(sym rune) float64 {
	return t.unigramRel[sym]
}

// Mapper maps corpora onto layouts. Safe for concurrent use.
type Mapper struct {
	cfg Config
}

// New returns a Mapper with the given configuration.
func New(cfg Config) *Mapper {
	return &Mapper{cfg: cfg}
}

// Map resolves a corpus against a layout.
func (m *Mapper) Map(c *corpus.Corpus, layout *keyboard.Layout) *Tables {
	t := &Tables{
		Layout:     layout,
		unigramRel: make(map[rune]float64, len(c.Unigrams)),
	}
	m.mapUnigrams(c, layout, t)
	m.mapBigrams(c, layout, t)
	m.mapTrigrams(c, layout, t)
	return t
}

func (m *Mapper) mapUnigrams(c *corpus.Corpus, layout *keyboard.Layout, t *Tables) {
	for _, g := range c.Unigrams {
		t.unigramRel[g.Sym] = g.Rel
		key, ok := layout.Key(g.Sym)
		if !ok {
			t.NotFoundUnigrams += g.Rel
			continue
		}
		t.UnigramTotal += g.Rel
		for _, lk := range m.expand(layout, key) {
			t.Unigrams = append(t.Unigrams, Unigram{Key: lk, Rel: g.Rel})
		}
	}
}

func (m *Mapper) mapBigrams(c *corpus.Corpus, layout *keyboard.Layout, t *Tables) {
	for _, g := range c.Bigrams {
		// A line break followed by anything else models a mental pause.
		if m.cfg.ExcludeLineBreaks && g.A == '\n' && g.B != '\n' {
			continue
		}
		k1, ok1 := layout.Key(g.A)
		k2, ok2 := layout.Key(g.B)
		if !ok1 || !ok2 {
			t.NotFoundBigrams += g.Rel
			continue
		}
		rel := g.Rel
		if m.boostBigram(g) {
			rel *= m.cfg.IncreaseCommonNgrams.Factor
		}
		t.BigramTotal += rel

		seq := append(m.expand(layout, k1), m.expand(layout, k2)...)
		for i := 0; i+1 < len(seq); i++ {
			t.Bigrams = append(t.Bigrams, Bigram{
				K1:  seq[i],
				K2:  seq[i+1],
				Rel: rel * m.sameKeyModScale(seq[i], seq[i+1]),
			})
		}
	}
}

func (m *Mapper) mapTrigrams(c *corpus.Corpus, layout *keyboard.Layout, t *Tables) {
	for _, g := range c.Trigrams {
		if m.cfg.ExcludeLineBreaks &&
			((g.A == '\n' && g.B != '\n') || (g.B == '\n' && g.C != '\n')) {
			continue
		}
		k1, ok1 := layout.Key(g.A)
		k2, ok2 := layout.Key(g.B)
		k3, ok3 := layout.Key(g.C)
		if !ok1 || !ok2 || !ok3 {
			t.NotFoundTrigrams += g.Rel
			continue
		}
		t.TrigramTotal += g.Rel

		seq := append(m.expand(layout, k1), m.expand(layout, k2)...)
		seq = append(seq, m.expand(layout, k3)...)
		for i := 0; i+2 < len(seq); i++ {
			scale := m.sameKeyModScale(seq[i], seq[i+1]) * m.sameKeyModScale(seq[i+1], seq[i+2])
			t.Trigrams = append(t.Trigrams, Trigram{
				K1:  seq[i],
				K2:  seq[i+1],
				K3:  seq[i+2],
				Rel: g.Rel * scale,
			})
		}
	}
}

func (m *Mapper) boostBigram(g corpus.Bigram) bool {
	cfg := m.cfg.IncreaseCommonNgrams
	return cfg.Enabled && g.Rel > cfg.CriticalFraction && g.Weight > cfg.TotalWeightThreshold
}

// expand resolves a symbol's key into the modifier+base key sequence it is
// typed with. Without modifier splitting the base key stands alone.
func (m *Mapper) expand(layout *keyboard.Layout, lk keyboard.LayerKey) []keyboard.LayerKey {
	if !m.cfg.SplitModifiers.Enabled || len(lk.Modifiers) == 0 {
		return []keyboard.LayerKey{lk}
	}
	seq := make([]keyboard.LayerKey, 0, len(lk.Modifiers)+1)
	for _, sym := range lk.Modifiers {
		if mod, ok := layout.Key(sym); ok {
			seq = append(seq, mod)
		}
	}
	return append(seq, lk)
}

func (m *Mapper) sameKeyModScale(a, b keyboard.LayerKey) float64 {
	if a.IsModifier && b.IsModifier && keyboard.SamePosition(a.Key, b.Key) {
		return m.cfg.SplitModifiers.SameKeyModFactor
	}
	return 1.0
}
