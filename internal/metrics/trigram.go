package metrics

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/verte-zerg/layscore/internal/keyboard"
	"github.com/verte-zerg/layscore/internal/mapper"
)

// Irregularity charges trigrams whose two halves are both awkward: the cost
// is the geometric mean of the front and back bigram costs, so one clean
// half zeroes the whole trigram.
type Irregularity struct {
	bigrams []PairCoster
}

// NewIrregularity builds the metric over the enabled bigram metrics.
func NewIrregularity(bigrams []PairCoster) *Irregularity {
	return &Irregularity{bigrams: bigrams}
}

// Name implements Metric.
func (m *Irregularity) Name() string { return "irregularity" }

// Class implements Metric.
func (m *Irregularity) Class() Class { return ClassTrigram }

// Evaluate implements Metric.
func (m *Irregularity) Evaluate(in *Input) Outcome {
	return evaluateTriples(in, func(layout *keyboard.Layout, g mapper.Trigram) float64 {
		var front, back float64
		for _, bm := range m.bigrams {
			front += bm.PairCost(layout, g.K1, g.K2)
			back += bm.PairCost(layout, g.K2, g.K3)
		}
		return math.Sqrt(front * back)
	})
}

// NoHandswitchInTrigramParams configures the no_handswitch_in_trigram metric.
type NoHandswitchInTrigramParams struct {
	FactorSameKey              float64 `yaml:"factor_same_key"`
	FactorContainsFingerRepeat float64 `yaml:"factor_contains_finger_repeat"`
	FactorSameKeyStartEnd      float64 `yaml:"factor_same_key_start_end"`
	FactorWithDirectionChange  float64 `yaml:"factor_with_direction_change"`
	FactorWithoutDirectionChange float64 `yaml:"factor_without_direction_change"`
	FactorContainsIndex        float64 `yaml:"factor_contains_index"`
}

// NoHandswitchInTrigram charges trigrams typed entirely on one hand,
// classified by how the hand has to work through them.
type NoHandswitchInTrigram struct {
	params NoHandswitchInTrigramParams
}

// NewNoHandswitchInTrigram builds the metric.
func NewNoHandswitchInTrigram(p NoHandswitchInTrigramParams) (*NoHandswitchInTrigram, error) {
	return &NoHandswitchInTrigram{params: p}, nil
}

// Name implements Metric.
func (m *NoHandswitchInTrigram) Name() string { return "no_handswitch_in_trigram" }

// Class implements Metric.
func (m *NoHandswitchInTrigram) Class() Class { return ClassTrigram }

// Evaluate implements Metric.
func (m *NoHandswitchInTrigram) Evaluate(in *Input) Outcome {
	return evaluateTriples(in, func(_ *keyboard.Layout, g mapper.Trigram) float64 {
		if g.K1.Hand != g.K2.Hand || g.K2.Hand != g.K3.Hand {
			return 0
		}
		p := m.params
		var cost float64
		switch {
		case keyboard.SamePosition(g.K1.Key, g.K2.Key) && keyboard.SamePosition(g.K2.Key, g.K3.Key):
			cost = p.FactorSameKey
		case g.K1.Finger == g.K2.Finger || g.K2.Finger == g.K3.Finger:
			cost = p.FactorContainsFingerRepeat
		case keyboard.SamePosition(g.K1.Key, g.K3.Key):
			cost = p.FactorSameKeyStartEnd
		default:
			d1 := sign(g.K2.Column - g.K1.Column)
			d2 := sign(g.K3.Column - g.K2.Column)
			if d1 != 0 && d2 != 0 && d1 != d2 {
				cost = p.FactorWithDirectionChange
			} else {
				cost = p.FactorWithoutDirectionChange
			}
		}
		if g.K1.Finger == keyboard.FingerIndex ||
			g.K2.Finger == keyboard.FingerIndex ||
			g.K3.Finger == keyboard.FingerIndex {
			cost += p.FactorContainsIndex
		}
		return cost
	})
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// SecondaryBigramsParams configures the secondary_bigrams metric.
type SecondaryBigramsParams struct {
	FactorHandswitch   float64 `yaml:"factor_handswitch"`
	FactorNoHandswitch float64 `yaml:"factor_no_handswitch"`
	// InitialPauseIndicators lists symbols that, followed by whitespace,
	// mark a mental pause; such trigrams are excluded.
	InitialPauseIndicators []string `yaml:"initial_pause_indicators"`
}

// SecondaryBigrams evaluates the bigram formed by a trigram's outer keys
// with the bigram metrics, discounted by whether the first transition
// already switched hands.
type SecondaryBigrams struct {
	params          SecondaryBigramsParams
	pauseIndicators map[rune]bool
	bigrams         []PairCoster
}

// NewSecondaryBigrams validates params and builds the metric over the
// enabled bigram metrics.
func NewSecondaryBigrams(p SecondaryBigramsParams, bigrams []PairCoster) (*SecondaryBigrams, error) {
	indicators := make(map[rune]bool, len(p.InitialPauseIndicators))
	for i, s := range p.InitialPauseIndicators {
		runes := []rune(s)
		if len(runes) != 1 {
			return nil, fmt.Errorf("secondary_bigrams: initial_pause_indicators[%d] must be a single symbol, got %q", i, s)
		}
		indicators[runes[0]] = true
	}
	return &SecondaryBigrams{params: p, pauseIndicators: indicators, bigrams: bigrams}, nil
}

// Name implements Metric.
func (m *SecondaryBigrams) Name() string { return "secondary_bigrams" }

// Class implements Metric.
func (m *SecondaryBigrams) Class() Class { return ClassTrigram }

// Evaluate implements Metric.
func (m *SecondaryBigrams) Evaluate(in *Input) Outcome {
	return evaluateTriples(in, func(layout *keyboard.Layout, g mapper.Trigram) float64 {
		if m.pauseIndicators[g.K1.Symbol] && unicode.IsSpace(g.K2.Symbol) {
			return 0
		}
		var cost float64
		for _, bm := range m.bigrams {
			cost += bm.PairCost(layout, g.K1, g.K3)
		}
		if cost == 0 {
			return 0
		}
		if g.K1.Hand != g.K2.Hand {
			return cost * m.params.FactorHandswitch
		}
		return cost * m.params.FactorNoHandswitch
	})
}

// TrigramFingerRepeatsParams configures the trigram_finger_repeats metric.
type TrigramFingerRepeatsParams struct {
	FactorLateralMovement float64 `yaml:"factor_lateral_movement"`
}

// TrigramFingerRepeats charges three distinct symbols in a row on one
// finger, worse when the finger also travels sideways.
type TrigramFingerRepeats struct {
	params TrigramFingerRepeatsParams
}

// NewTrigramFingerRepeats builds the metric.
func NewTrigramFingerRepeats(p TrigramFingerRepeatsParams) (*TrigramFingerRepeats, error) {
	return &TrigramFingerRepeats{params: p}, nil
}

// Name implements Metric.
func (m *TrigramFingerRepeats) Name() string { return "trigram_finger_repeats" }

// Class implements Metric.
func (m *TrigramFingerRepeats) Class() Class { return ClassTrigram }

// Evaluate implements Metric.
func (m *TrigramFingerRepeats) Evaluate(in *Input) Outcome {
	return evaluateTriples(in, func(_ *keyboard.Layout, g mapper.Trigram) float64 {
		if g.K1.Hand != g.K2.Hand || g.K2.Hand != g.K3.Hand {
			return 0
		}
		if g.K1.Finger != g.K2.Finger || g.K2.Finger != g.K3.Finger {
			return 0
		}
		if g.K1.Symbol == g.K2.Symbol || g.K2.Symbol == g.K3.Symbol || g.K1.Symbol == g.K3.Symbol {
			return 0
		}
		cost := 1.0
		if g.K1.Column != g.K2.Column {
			cost *= m.params.FactorLateralMovement
		}
		if g.K2.Column != g.K3.Column {
			cost *= m.params.FactorLateralMovement
		}
		return cost
	})
}

// RollParams configures the roll metrics' exclusions.
type RollParams struct {
	ExcludeThumbs    bool   `yaml:"exclude_thumbs"`
	ExcludeModifiers bool   `yaml:"exclude_modifiers"`
	ExcludeChars     string `yaml:"exclude_chars"`
	ExcludeRows      []int  `yaml:"exclude_rows"`
}

func (p RollParams) excludes(k keyboard.LayerKey) bool {
	if p.ExcludeThumbs && k.Finger == keyboard.FingerThumb {
		return true
	}
	if p.ExcludeModifiers && k.IsModifier {
		return true
	}
	if p.ExcludeChars != "" && strings.ContainsRune(p.ExcludeChars, k.Symbol) {
		return true
	}
	for _, row := range p.ExcludeRows {
		if k.Row == row {
			return true
		}
	}
	return false
}

func (p RollParams) excludesAny(g mapper.Trigram) bool {
	return p.excludes(g.K1) || p.excludes(g.K2) || p.excludes(g.K3)
}

// TrigramRolls rewards (via negative weight) trigrams rolling across one
// hand in a single direction with three distinct fingers.
type TrigramRolls struct {
	params RollParams
}

// NewTrigramRolls builds the metric; params are optional.
func NewTrigramRolls(p RollParams) (*TrigramRolls, error) {
	return &TrigramRolls{params: p}, nil
}

// Name implements Metric.
func (m *TrigramRolls) Name() string { return "trigram_rolls" }

// Class implements Metric.
func (m *TrigramRolls) Class() Class { return ClassTrigram }

// Evaluate implements Metric.
func (m *TrigramRolls) Evaluate(in *Input) Outcome {
	return evaluateTriples(in, func(_ *keyboard.Layout, g mapper.Trigram) float64 {
		if m.params.excludesAny(g) {
			return 0
		}
		if g.K1.Hand != g.K2.Hand || g.K2.Hand != g.K3.Hand {
			return 0
		}
		if g.K1.Finger == g.K2.Finger || g.K2.Finger == g.K3.Finger || g.K1.Finger == g.K3.Finger {
			return 0
		}
		d1 := sign(g.K2.Column - g.K1.Column)
		d2 := sign(g.K3.Column - g.K2.Column)
		if d1 != 0 && d1 == d2 {
			return 1.0
		}
		return 0
	})
}

// oxeyRollDirection classifies a trigram with exactly one hand switch by the
// direction of its same-hand pair: +1 inward (toward the index), -1 outward,
// 0 when it is not a roll.
func oxeyRollDirection(g mapper.Trigram) int {
	var a, b keyboard.LayerKey
	switch {
	case g.K1.Hand == g.K2.Hand && g.K2.Hand != g.K3.Hand:
		a, b = g.K1, g.K2
	case g.K1.Hand != g.K2.Hand && g.K2.Hand == g.K3.Hand:
		a, b = g.K2, g.K3
	default:
		return 0
	}
	if a.Finger == b.Finger {
		return 0
	}
	if fingerRank(b.Finger) < fingerRank(a.Finger) {
		return 1
	}
	return -1
}

// OxeyInwardRolls rewards trigrams whose same-hand pair rolls toward the
// index finger.
type OxeyInwardRolls struct {
	params RollParams
}

// NewOxeyInwardRolls builds the metric; params are optional.
func NewOxeyInwardRolls(p RollParams) (*OxeyInwardRolls, error) {
	return &OxeyInwardRolls{params: p}, nil
}

// Name implements Metric.
func (m *OxeyInwardRolls) Name() string { return "oxey_inward_rolls" }

// Class implements Metric.
func (m *OxeyInwardRolls) Class() Class { return ClassTrigram }

// Evaluate implements Metric.
func (m *OxeyInwardRolls) Evaluate(in *Input) Outcome {
	return evaluateTriples(in, func(_ *keyboard.Layout, g mapper.Trigram) float64 {
		if m.params.excludesAny(g) {
			return 0
		}
		if oxeyRollDirection(g) == 1 {
			return 1.0
		}
		return 0
	})
}

// OxeyOutwardRolls rewards trigrams whose same-hand pair rolls away from the
// index finger.
type OxeyOutwardRolls struct {
	params RollParams
}

// NewOxeyOutwardRolls builds the metric; params are optional.
func NewOxeyOutwardRolls(p RollParams) (*OxeyOutwardRolls, error) {
	return &OxeyOutwardRolls{params: p}, nil
}

// Name implements Metric.
func (m *OxeyOutwardRolls) Name() string { return "oxey_outward_rolls" }

// Class implements Metric.
func (m *OxeyOutwardRolls) Class() Class { return ClassTrigram }

// Evaluate implements Metric.
func (m *OxeyOutwardRolls) Evaluate(in *Input) Outcome {
	return evaluateTriples(in, func(_ *keyboard.Layout, g mapper.Trigram) float64 {
		if m.params.excludesAny(g) {
			return 0
		}
		if oxeyRollDirection(g) == -1 {
			return 1.0
		}
		return 0
	})
}
