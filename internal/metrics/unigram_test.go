package metrics

import (
	"math"
	"strings"
	"testing"
)

func TestHandDisbalanceEvenSplit(t *testing.T) {
	m, err := NewHandDisbalance(HandDisbalanceParams{})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	out := m.Evaluate(testInput(t, "asjk"))
	if math.Abs(out.Raw) > epsilon {
		t.Fatalf("expected zero cost for even split, got %v", out.Raw)
	}
}

func TestHandDisbalanceSkewedSplit(t *testing.T) {
	m, err := NewHandDisbalance(HandDisbalanceParams{})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	// 6 of 10 keystrokes on the left hand.
	out := m.Evaluate(testInput(t, "aaasssjjkk"))
	if math.Abs(out.Raw-0.01) > epsilon {
		t.Fatalf("expected squared deviation 0.01, got %v", out.Raw)
	}

	abs, err := NewHandDisbalance(HandDisbalanceParams{Absolute: true})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	out = abs.Evaluate(testInput(t, "aaasssjjkk"))
	if math.Abs(out.Raw-0.1) > epsilon {
		t.Fatalf("expected absolute deviation 0.1, got %v", out.Raw)
	}
}

func TestKeyCosts(t *testing.T) {
	m := NewKeyCosts()
	// a sits on the home row (cost 1.0), q above it (cost 2.0).
	out := m.Evaluate(testInput(t, "aq"))
	if math.Abs(out.Raw-1.5) > epsilon {
		t.Fatalf("expected raw 1.5, got %v", out.Raw)
	}
	if math.Abs(out.Found-1.0) > epsilon {
		t.Fatalf("expected found 1.0, got %v", out.Found)
	}
}

func TestRowLoadsIsInformational(t *testing.T) {
	m := NewRowLoads()
	out := m.Evaluate(testInput(t, "aq"))
	if out.Raw != 0 {
		t.Fatalf("expected zero cost, got %v", out.Raw)
	}
	if !strings.Contains(out.Info, "row 0 50.0%") || !strings.Contains(out.Info, "row 1 50.0%") {
		t.Fatalf("unexpected info: %q", out.Info)
	}
}

func TestShortcutKeys(t *testing.T) {
	m, err := NewShortcutKeys(ShortcutKeysParams{Symbols: "cn", Cost: 1.0, WithinNLeftmostCols: 5})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	// c sits in column 2 (fine), n in column 5 (charged).
	out := m.Evaluate(testInput(t, "cn"))
	if math.Abs(out.Raw-0.5) > epsilon {
		t.Fatalf("expected raw 0.5, got %v", out.Raw)
	}
	if math.Abs(out.Found-1.0) > epsilon {
		t.Fatalf("expected found 1.0, got %v", out.Found)
	}
}

func TestShortcutKeysRejectsBadParams(t *testing.T) {
	if _, err := NewShortcutKeys(ShortcutKeysParams{Symbols: "", Cost: 1, WithinNLeftmostCols: 5}); err == nil {
		t.Fatalf("expected error for empty symbols")
	}
	if _, err := NewShortcutKeys(ShortcutKeysParams{Symbols: "c", Cost: 1, WithinNLeftmostCols: 0}); err == nil {
		t.Fatalf("expected error for zero column bound")
	}
}

func TestSimilarLetters(t *testing.T) {
	m, err := NewSimilarLetters(SimilarLettersParams{Pairs: []LetterPairRating{
		{Pair: "a;", SymmetricCost: 0.3}, // mirrored, free
		{Pair: "aj", SymmetricCost: 0.3}, // different hands, not mirrored
	}})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	in := testInput(t, "aj;")
	out := m.Evaluate(in)
	want := 0.3 * (1.0 / 3.0)
	if math.Abs(out.Raw-want) > epsilon {
		t.Fatalf("expected raw %v, got %v", want, out.Raw)
	}
}

func TestSimilarLettersSameColumn(t *testing.T) {
	m, err := NewSimilarLetters(SimilarLettersParams{Pairs: []LetterPairRating{
		// q and y share column 0 but do not touch.
		{Pair: "qy", SameColumnCost: 0.2},
	}})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	out := m.Evaluate(testInput(t, "qy"))
	if math.Abs(out.Raw-0.2*0.5) > epsilon {
		t.Fatalf("expected raw 0.1, got %v", out.Raw)
	}
}

func TestSimilarLetterGroupsMirroredPlacementIsFree(t *testing.T) {
	m, err := NewSimilarLetterGroups(SimilarLetterGroupsParams{Pairs: [][]string{{"asd", ";lk"}}})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	// Each member pair mirrors to the same displacement.
	out := m.Evaluate(testInput(t, "asd;lk"))
	if math.Abs(out.Raw) > epsilon {
		t.Fatalf("expected zero cost for uniform mirrored placement, got %v", out.Raw)
	}
}

func TestSimilarLetterGroupsDeviation(t *testing.T) {
	m, err := NewSimilarLetterGroups(SimilarLetterGroupsParams{Pairs: [][]string{{"as", "km"}}})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	// a->k mirrors to displacement (0,2); s->m mirrors to (1,2): deviation 1.
	out := m.Evaluate(testInput(t, "askm"))
	if math.Abs(out.Raw-0.5) > epsilon {
		t.Fatalf("expected raw 0.5, got %v", out.Raw)
	}
}

func TestFingerBalanceUniformLoads(t *testing.T) {
	loads := map[string]map[string]float64{
		"left":  {"pinky": 0.125, "ring": 0.125, "middle": 0.125, "index": 0.125},
		"right": {"pinky": 0.125, "ring": 0.125, "middle": 0.125, "index": 0.125},
	}
	m, err := NewFingerBalance(FingerBalanceParams{IntendedLoads: loads})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	out := m.Evaluate(testInput(t, "asdfjkl;"))
	if math.Abs(out.Raw) > epsilon {
		t.Fatalf("expected zero deviation, got %v", out.Raw)
	}
	if out.Info == "" {
		t.Fatalf("expected per-finger info")
	}
}

func TestFingerBalanceRejectsBadParams(t *testing.T) {
	if _, err := NewFingerBalance(FingerBalanceParams{}); err == nil {
		t.Fatalf("expected error for empty intended loads")
	}
	if _, err := NewFingerBalance(FingerBalanceParams{IntendedLoads: map[string]map[string]float64{
		"left": {"palm": 0.1},
	}}); err == nil {
		t.Fatalf("expected error for unknown finger")
	}
}
