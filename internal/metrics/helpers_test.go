package metrics

import (
	"testing"

	"github.com/verte-zerg/layscore/internal/corpus"
	"github.com/verte-zerg/layscore/internal/keyboard"
	"github.com/verte-zerg/layscore/internal/mapper"
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

func testLayout(t *testing.T) *keyboard.Layout {
	t.Helper()
	layout, err := keyboard.Parse([]byte(testLayoutYAML))
	if err != nil {
		t.Fatalf("failed to parse layout: %v", err)
	}
	return layout
}

// testInput maps the ngram tables of text onto the test layout.
func testInput(t *testing.T, text string) *Input {
	t.Helper()
	layout := testLayout(t)
	tables := mapper.New(mapper.DefaultConfig()).Map(corpus.FromText(text), layout)
	return &Input{Layout: layout, Tables: tables}
}

func mustKey(t *testing.T, layout *keyboard.Layout, sym rune) keyboard.LayerKey {
	t.Helper()
	k, ok := layout.Key(sym)
	if !ok {
		t.Fatalf("symbol %q not mapped", sym)
	}
	return k
}

// trigramInput builds an Input over literal trigram windows.
func trigramInput(layout *keyboard.Layout, grams []mapper.Trigram) *Input {
	var total float64
	for _, g := range grams {
		total += g.Rel
	}
	return &Input{
		Layout: layout,
		Tables: &mapper.Tables{Layout: layout, Trigrams: grams, TrigramTotal: total},
	}
}
