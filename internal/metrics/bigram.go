package metrics

import (
	"fmt"
	"math"

	"github.com/verte-zerg/layscore/internal/keyboard"
)

// fingerLength ranks fingers by length; used for the short-down-to-long
// movement rule. Ring and index are treated as equally long.
func fingerLength(f keyboard.Finger) float64 {
	switch f {
	case keyboard.FingerThumb:
		return 1
	case keyboard.FingerPinky:
		return 2
	case keyboard.FingerMiddle:
		return 4
	default: // ring, index
		return 3
	}
}

// fingerRank is a finger's home-column distance from the keyboard center;
// the expected column span between two fingers on one hand.
func fingerRank(f keyboard.Finger) int {
	switch f {
	case keyboard.FingerIndex:
		return 1
	case keyboard.FingerMiddle:
		return 2
	case keyboard.FingerRing:
		return 3
	case keyboard.FingerPinky:
		return 4
	default: // thumb
		return 0
	}
}

// SymmetricHandswitches charges hand switches that land on a position that
// is not the mirror of where the previous key sat.
type SymmetricHandswitches struct{}

// NewSymmetricHandswitches builds the metric; it takes no params.
func NewSymmetricHandswitches() *SymmetricHandswitches { return &SymmetricHandswitches{} }

// Name implements Metric.
func (m *SymmetricHandswitches) Name() string { return "symmetric_handswitches" }

// Class implements Metric.
func (m *SymmetricHandswitches) Class() Class { return ClassBigram }

// PairCost implements PairCoster.
func (m *SymmetricHandswitches) PairCost(layout *keyboard.Layout, k1, k2 keyboard.LayerKey) float64 {
	if k1.Hand == k2.Hand {
		return 0
	}
	if layout.Mirrored(k1.Key, k2.Key) {
		return 0
	}
	return 1.0
}

// Evaluate implements Metric.
func (m *SymmetricHandswitches) Evaluate(in *Input) Outcome {
	return evaluatePairs(in, m.PairCost)
}

// FingerRepeatsParams configures the finger_repeats metric.
type FingerRepeatsParams struct {
	FingerFactors map[string]float64 `yaml:"finger_factors"`
	SameKeyOffset float64            `yaml:"same_key_offset"`
	StretchFactor float64            `yaml:"stretch_factor"`
	CurlFactor    float64            `yaml:"curl_factor"`
	LateralFactor float64            `yaml:"lateral_factor"`
}

// FingerRepeats charges consecutive keys struck by the same finger, with the
// motion kind (stretch, curl, lateral) scaling the finger's base factor.
type FingerRepeats struct {
	factors map[keyboard.Finger]float64
	params  FingerRepeatsParams
}

// NewFingerRepeats validates params and builds the metric.
func NewFingerRepeats(p FingerRepeatsParams) (*FingerRepeats, error) {
	if len(p.FingerFactors) == 0 {
		return nil, fmt.Errorf("finger_repeats: finger_factors must not be empty")
	}
	factors, err := parseFingerMap(p.FingerFactors)
	if err != nil {
		return nil, fmt.Errorf("finger_repeats: %w", err)
	}
	return &FingerRepeats{factors: factors, params: p}, nil
}

func parseFingerMap(m map[string]float64) (map[keyboard.Finger]float64, error) {
	out := make(map[keyboard.Finger]float64, len(m))
	for name, v := range m {
		finger, err := keyboard.ParseFinger(name)
		if err != nil {
			return nil, err
		}
		out[finger] = v
	}
	return out, nil
}

// Name implements Metric.
func (m *FingerRepeats) Name() string { return "finger_repeats" }

// Class implements Metric.
func (m *FingerRepeats) Class() Class { return ClassBigram }

// PairCost implements PairCoster.
func (m *FingerRepeats) PairCost(_ *keyboard.Layout, k1, k2 keyboard.LayerKey) float64 {
	if k1.Hand != k2.Hand || k1.Finger != k2.Finger {
		return 0
	}
	base, ok := m.factors[k1.Finger]
	if !ok {
		base = 1.0
	}
	if keyboard.SamePosition(k1.Key, k2.Key) {
		return base + m.params.SameKeyOffset
	}
	if k1.Column == k2.Column {
		// In-line motion: rows decrease toward the top of the board, which
		// extends the finger.
		if k2.Row < k1.Row {
			return base * m.params.StretchFactor
		}
		return base * m.params.CurlFactor
	}
	return base * m.params.LateralFactor
}

// Evaluate implements Metric.
func (m *FingerRepeats) Evaluate(in *Input) Outcome {
	return evaluatePairs(in, m.PairCost)
}

// ManualBigramEntry is one literal position-pair penalty.
type ManualBigramEntry struct {
	From []int   `yaml:"from"`
	To   []int   `yaml:"to"`
	Cost float64 `yaml:"cost"`
}

// ManualBigramPenaltyParams configures the manual_bigram_penalty metric.
type ManualBigramPenaltyParams struct {
	Entries     []ManualBigramEntry `yaml:"entries"`
	AddMirrored bool                `yaml:"add_mirrored"`
}

// ManualBigramPenalty charges hand-picked position transitions.
type ManualBigramPenalty struct {
	costs map[[2]keyboard.Position]float64
}

// NewManualBigramPenalty validates params and builds the metric. columns is
// the keyboard column count, needed to auto-populate mirrored pairs.
func NewManualBigramPenalty(p ManualBigramPenaltyParams, columns int) (*ManualBigramPenalty, error) {
	if len(p.Entries) == 0 {
		return nil, fmt.Errorf("manual_bigram_penalty: entries must not be empty")
	}
	costs := make(map[[2]keyboard.Position]float64, len(p.Entries)*2)
	for i, e := range p.Entries {
		if len(e.From) != 2 || len(e.To) != 2 {
			return nil, fmt.Errorf("manual_bigram_penalty: entry %d positions must be [row, column]", i)
		}
		from := keyboard.Position{Row: e.From[0], Column: e.From[1]}
		to := keyboard.Position{Row: e.To[0], Column: e.To[1]}
		costs[[2]keyboard.Position{from, to}] = e.Cost
		if p.AddMirrored {
			mf := keyboard.Position{Row: from.Row, Column: columns - 1 - from.Column}
			mt := keyboard.Position{Row: to.Row, Column: columns - 1 - to.Column}
			costs[[2]keyboard.Position{mf, mt}] = e.Cost
		}
	}
	return &ManualBigramPenalty{costs: costs}, nil
}

// Name implements Metric.
func (m *ManualBigramPenalty) Name() string { return "manual_bigram_penalty" }

// Class implements Metric.
func (m *ManualBigramPenalty) Class() Class { return ClassBigram }

// PairCost implements PairCoster.
func (m *ManualBigramPenalty) PairCost(_ *keyboard.Layout, k1, k2 keyboard.LayerKey) float64 {
	return m.costs[[2]keyboard.Position{k1.Position, k2.Position}]
}

// Evaluate implements Metric.
func (m *ManualBigramPenalty) Evaluate(in *Input) Outcome {
	return evaluatePairs(in, m.PairCost)
}

// FingerSwitchFactor is the base cost for one finger-to-finger transition.
type FingerSwitchFactor struct {
	From string  `yaml:"from"`
	To   string  `yaml:"to"`
	Cost float64 `yaml:"cost"`
}

// MovementPatternParams configures the movement_pattern metric.
type MovementPatternParams struct {
	FingerSwitchFactors []FingerSwitchFactor `yaml:"finger_switch_factors"`
	SameRowOffset       float64              `yaml:"same_row_offset"`
	ShortDownToLongOrLongUpToShortFactor float64 `yaml:"short_down_to_long_or_long_up_to_short_factor"`
	UnbalancingFactor    float64 `yaml:"unbalancing_factor"`
	LateralStretchFactor float64 `yaml:"lateral_stretch_factor"`
}

// MovementPattern charges same-hand transitions between different fingers,
// scaled by rows crossed, awkward length relations, unbalancing keys, and
// lateral overreach.
type MovementPattern struct {
	factors map[[2]keyboard.Finger]float64
	params  MovementPatternParams
}

// NewMovementPattern validates params and builds the metric.
func NewMovementPattern(p MovementPatternParams) (*MovementPattern, error) {
	if len(p.FingerSwitchFactors) == 0 {
		return nil, fmt.Errorf("movement_pattern: finger_switch_factors must not be empty")
	}
	factors := make(map[[2]keyboard.Finger]float64, len(p.FingerSwitchFactors))
	for i, f := range p.FingerSwitchFactors {
		from, err := keyboard.ParseFinger(f.From)
		if err != nil {
			return nil, fmt.Errorf("movement_pattern: factor %d: %w", i, err)
		}
		to, err := keyboard.ParseFinger(f.To)
		if err != nil {
			return nil, fmt.Errorf("movement_pattern: factor %d: %w", i, err)
		}
		factors[[2]keyboard.Finger{from, to}] = f.Cost
	}
	return &MovementPattern{factors: factors, params: p}, nil
}

// Name implements Metric.
func (m *MovementPattern) Name() string { return "movement_pattern" }

// Class implements Metric.
func (m *MovementPattern) Class() Class { return ClassBigram }

// PairCost implements PairCoster.
func (m *MovementPattern) PairCost(_ *keyboard.Layout, k1, k2 keyboard.LayerKey) float64 {
	if k1.Hand != k2.Hand || k1.Finger == k2.Finger {
		return 0
	}
	base := m.factors[[2]keyboard.Finger{k1.Finger, k2.Finger}]
	rows := abs(k2.Row - k1.Row)
	cost := base * (m.params.SameRowOffset + float64(rows))
	if cost == 0 {
		return 0
	}

	lenFrom := fingerLength(k1.Finger)
	lenTo := fingerLength(k2.Finger)
	movingDown := k2.Row > k1.Row
	movingUp := k2.Row < k1.Row
	if (lenFrom < lenTo && movingDown) || (lenFrom > lenTo && movingUp) {
		cost *= m.params.ShortDownToLongOrLongUpToShortFactor
	}
	if k1.Unbalancing {
		cost *= m.params.UnbalancingFactor
	}
	if k2.Unbalancing {
		cost *= m.params.UnbalancingFactor
	}

	span := abs(k2.Column - k1.Column)
	reach := abs(fingerRank(k1.Finger) - fingerRank(k2.Finger))
	if extra := span - reach; extra > 0 {
		cost += m.params.LateralStretchFactor * float64(extra)
	}
	return cost
}

// Evaluate implements Metric.
func (m *MovementPattern) Evaluate(in *Input) Outcome {
	return evaluatePairs(in, m.PairCost)
}

// NoHandswitchAfterUnbalancingKeyParams configures the
// no_handswitch_after_unbalancing_key metric.
type NoHandswitchAfterUnbalancingKeyParams struct {
	UnbalancingAfterUnbalancing float64 `yaml:"unbalancing_after_unbalancing"`
}

// NoHandswitchAfterUnbalancingKey charges staying on a hand right after an
// unbalancing key, extra when the next key unbalances as well.
type NoHandswitchAfterUnbalancingKey struct {
	params NoHandswitchAfterUnbalancingKeyParams
}

// NewNoHandswitchAfterUnbalancingKey builds the metric; params are optional.
func NewNoHandswitchAfterUnbalancingKey(p NoHandswitchAfterUnbalancingKeyParams) (*NoHandswitchAfterUnbalancingKey, error) {
	return &NoHandswitchAfterUnbalancingKey{params: p}, nil
}

// Name implements Metric.
func (m *NoHandswitchAfterUnbalancingKey) Name() string {
	return "no_handswitch_after_unbalancing_key"
}

// Class implements Metric.
func (m *NoHandswitchAfterUnbalancingKey) Class() Class { return ClassBigram }

// PairCost implements PairCoster.
func (m *NoHandswitchAfterUnbalancingKey) PairCost(_ *keyboard.Layout, k1, k2 keyboard.LayerKey) float64 {
	if !k1.Unbalancing || k1.Hand != k2.Hand {
		return 0
	}
	cost := 1.0
	if k2.Unbalancing {
		dr := float64(k2.Row - k1.Row)
		dc := float64(k2.Column - k1.Column)
		cost += m.params.UnbalancingAfterUnbalancing * math.Sqrt(dr*dr+dc*dc)
	}
	return cost
}

// Evaluate implements Metric.
func (m *NoHandswitchAfterUnbalancingKey) Evaluate(in *Input) Outcome {
	return evaluatePairs(in, m.PairCost)
}
