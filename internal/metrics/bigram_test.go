package metrics

import (
	"math"
	"testing"

	"github.com/verte-zerg/layscore/internal/keyboard"
)

func TestSymmetricHandswitchesPairCost(t *testing.T) {
	layout := testLayout(t)
	m := NewSymmetricHandswitches()

	a := mustKey(t, layout, 'a')
	s := mustKey(t, layout, 's')
	semi := mustKey(t, layout, ';')
	j := mustKey(t, layout, 'j')

	if got := m.PairCost(layout, a, s); got != 0 {
		t.Fatalf("same-hand pair must cost 0, got %v", got)
	}
	if got := m.PairCost(layout, a, semi); got != 0 {
		t.Fatalf("mirrored handswitch must cost 0, got %v", got)
	}
	if got := m.PairCost(layout, a, j); got != 1.0 {
		t.Fatalf("asymmetric handswitch must cost 1.0, got %v", got)
	}
}

func TestFingerRepeatsSameKeyOffset(t *testing.T) {
	m, err := NewFingerRepeats(FingerRepeatsParams{
		FingerFactors: map[string]float64{"index": 1.0},
		SameKeyOffset: -0.6,
		StretchFactor: 1.2,
		CurlFactor:    1.1,
		LateralFactor: 1.4,
	})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	layout := testLayout(t)
	f := mustKey(t, layout, 'f')
	r := mustKey(t, layout, 'r')
	v := mustKey(t, layout, 'v')
	g := mustKey(t, layout, 'g')
	j := mustKey(t, layout, 'j')

	if got := m.PairCost(layout, f, f); math.Abs(got-0.4) > epsilon {
		t.Fatalf("same key repeat must cost base+offset 0.4, got %v", got)
	}
	if got := m.PairCost(layout, f, r); math.Abs(got-1.2) > epsilon {
		t.Fatalf("upward in-column repeat must stretch, got %v", got)
	}
	if got := m.PairCost(layout, f, v); math.Abs(got-1.1) > epsilon {
		t.Fatalf("downward in-column repeat must curl, got %v", got)
	}
	if got := m.PairCost(layout, f, g); math.Abs(got-1.4) > epsilon {
		t.Fatalf("lateral repeat must cost 1.4, got %v", got)
	}
	if got := m.PairCost(layout, f, j); got != 0 {
		t.Fatalf("cross-hand pair must cost 0, got %v", got)
	}
}

func TestMovementPatternSameRowIsFree(t *testing.T) {
	m, err := NewMovementPattern(MovementPatternParams{
		FingerSwitchFactors: []FingerSwitchFactor{{From: "pinky", To: "ring", Cost: 1.5}},
		SameRowOffset:       0,
	})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	layout := testLayout(t)
	a := mustKey(t, layout, 'a')
	s := mustKey(t, layout, 's')
	if got := m.PairCost(layout, a, s); got != 0 {
		t.Fatalf("same-row switch with zero offset must cost 0, got %v", got)
	}
}

func TestMovementPatternRowCrossing(t *testing.T) {
	m, err := NewMovementPattern(MovementPatternParams{
		FingerSwitchFactors: []FingerSwitchFactor{
			{From: "pinky", To: "ring", Cost: 1.5},
			{From: "middle", To: "pinky", Cost: 1.0},
		},
		SameRowOffset:                        0,
		ShortDownToLongOrLongUpToShortFactor: 2.0,
		LateralStretchFactor:                 1.0,
	})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	layout := testLayout(t)
	a := mustKey(t, layout, 'a')
	w := mustKey(t, layout, 'w')
	if got := m.PairCost(layout, a, w); math.Abs(got-1.5) > epsilon {
		t.Fatalf("expected one-row crossing to cost 1.5, got %v", got)
	}

	// Middle moving down to pinky is a long-to-short descent; no penalty.
	// The reverse relation triggers on a long finger moving up from a short one.
	d := mustKey(t, layout, 'd')
	y := mustKey(t, layout, 'y')
	// d (middle, row 1) -> y (pinky, row 2): long finger moving down to short.
	got := m.PairCost(layout, d, y)
	// base 1.0 * rows 1, span 2, rank diff |2-4| = 2: no lateral extra.
	if math.Abs(got-1.0) > epsilon {
		t.Fatalf("expected 1.0, got %v", got)
	}
}

func TestMovementPatternLateralStretch(t *testing.T) {
	m, err := NewMovementPattern(MovementPatternParams{
		FingerSwitchFactors:  []FingerSwitchFactor{{From: "pinky", To: "index", Cost: 1.0}},
		SameRowOffset:        0,
		LateralStretchFactor: 0.5,
	})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	layout := testLayout(t)
	a := mustKey(t, layout, 'a')
	t2 := mustKey(t, layout, 't')
	// a (pinky, col 0, row 1) -> t (index, col 4, row 0): span 4, rank diff 3.
	got := m.PairCost(layout, a, t2)
	want := 1.0 + 0.5*1.0
	if math.Abs(got-want) > epsilon {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestManualBigramPenaltyMirrors(t *testing.T) {
	m, err := NewManualBigramPenalty(ManualBigramPenaltyParams{
		Entries:     []ManualBigramEntry{{From: []int{1, 0}, To: []int{0, 1}, Cost: 0.5}},
		AddMirrored: true,
	}, 10)
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}
	layout := testLayout(t)
	a := mustKey(t, layout, 'a')
	w := mustKey(t, layout, 'w')
	semi := mustKey(t, layout, ';')
	o := mustKey(t, layout, 'o')

	if got := m.PairCost(layout, a, w); math.Abs(got-0.5) > epsilon {
		t.Fatalf("expected listed pair to cost 0.5, got %v", got)
	}
	if got := m.PairCost(layout, semi, o); math.Abs(got-0.5) > epsilon {
		t.Fatalf("expected mirrored pair to cost 0.5, got %v", got)
	}
	if got := m.PairCost(layout, w, a); got != 0 {
		t.Fatalf("reverse direction must not be charged, got %v", got)
	}
}

func TestNoHandswitchAfterUnbalancingKey(t *testing.T) {
	m, err := NewNoHandswitchAfterUnbalancingKey(NoHandswitchAfterUnbalancingKeyParams{
		UnbalancingAfterUnbalancing: 4.0,
	})
	if err != nil {
		t.Fatalf("failed to build metric: %v", err)
	}

	unb := keyboard.LayerKey{Key: keyboard.Key{
		Position: keyboard.Position{Row: 0, Column: 0}, Hand: keyboard.HandLeft, Unbalancing: true,
	}}
	plain := keyboard.LayerKey{Key: keyboard.Key{
		Position: keyboard.Position{Row: 0, Column: 1}, Hand: keyboard.HandLeft,
	}}
	otherHand := keyboard.LayerKey{Key: keyboard.Key{
		Position: keyboard.Position{Row: 0, Column: 9}, Hand: keyboard.HandRight,
	}}
	unbNext := keyboard.LayerKey{Key: keyboard.Key{
		Position: keyboard.Position{Row: 0, Column: 1}, Hand: keyboard.HandLeft, Unbalancing: true,
	}}

	if got := m.PairCost(nil, unb, plain); got != 1.0 {
		t.Fatalf("staying on the hand must cost 1.0, got %v", got)
	}
	if got := m.PairCost(nil, unb, otherHand); got != 0 {
		t.Fatalf("handswitch must cost 0, got %v", got)
	}
	if got := m.PairCost(nil, plain, plain); got != 0 {
		t.Fatalf("non-unbalancing start must cost 0, got %v", got)
	}
	if got := m.PairCost(nil, unb, unbNext); math.Abs(got-5.0) > epsilon {
		t.Fatalf("expected 1 + 4*distance = 5.0, got %v", got)
	}
}
