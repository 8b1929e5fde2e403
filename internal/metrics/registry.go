package metrics

import (
	"fmt"
	"sort"
)

// Entry is a constructed metric with its aggregation weight and
// normalization policy.
type Entry struct {
	Metric Metric
	Weight float64
	Norm   Normalization
}

// Registry holds every enabled metric, ordered by class then name.
type Registry struct {
	Entries []Entry
}

// metricNames is the set of known metric names, used to reject typos even on
// disabled sections.
var metricNames = map[string]bool{
	"shortcut_keys":                       true,
	"similar_letters":                     true,
	"similar_letter_groups":               true,
	"finger_balance":                      true,
	"hand_disbalance":                     true,
	"key_costs":                           true,
	"row_loads":                           true,
	"symmetric_handswitches":              true,
	"finger_repeats":                      true,
	"manual_bigram_penalty":               true,
	"movement_pattern":                    true,
	"no_handswitch_after_unbalancing_key": true,
	"irregularity":                        true,
	"no_handswitch_in_trigram":            true,
	"secondary_bigrams":                   true,
	"trigram_finger_repeats":              true,
	"trigram_rolls":                       true,
	"oxey_inward_rolls":                   true,
	"oxey_outward_rolls":                  true,
}

// Build constructs the enabled metrics from cfg. columns is the layout's
// column count, needed to mirror manual bigram penalties. Bigram metrics are
// built first because irregularity and secondary_bigrams evaluate trigram
// halves with them.
func Build(cfg *FileConfig, columns int) (*Registry, error) {
	for name := range cfg.Metrics {
		if !metricNames[name] {
			return nil, fmt.Errorf("unknown metric %q", name)
		}
	}

	reg := &Registry{}
	var pairCosters []PairCoster

	add := func(name string, m Metric, err error) error {
		if err != nil {
			return fmt.Errorf("failed to build metric %q: %w", name, err)
		}
		mc := cfg.Metrics[name]
		norm := DefaultNormalization()
		if mc.Normalization != nil {
			norm = *mc.Normalization
		}
		if err := norm.Validate(); err != nil {
			return fmt.Errorf("metric %q: %w", name, err)
		}
		reg.Entries = append(reg.Entries, Entry{Metric: m, Weight: mc.Weight, Norm: norm})
		if pc, ok := m.(PairCoster); ok {
			pairCosters = append(pairCosters, pc)
		}
		return nil
	}

	enabled := func(name string) bool {
		mc, ok := cfg.Metrics[name]
		return ok && mc.Enabled
	}
	requireParams := func(name string) (*MetricConfig, error) {
		mc := cfg.Metrics[name]
		if !mc.HasParams() {
			return nil, fmt.Errorf("metric %q is enabled but has no params", name)
		}
		return &mc, nil
	}

	// Bigram metrics.
	if enabled("symmetric_handswitches") {
		if err := add("symmetric_handswitches", NewSymmetricHandswitches(), nil); err != nil {
			return nil, err
		}
	}
	if enabled("finger_repeats") {
		mc, err := requireParams("finger_repeats")
		if err != nil {
			return nil, err
		}
		var p FingerRepeatsParams
		if err := mc.DecodeParams(&p); err != nil {
			return nil, fmt.Errorf("metric %q: %w", "finger_repeats", err)
		}
		m, err := NewFingerRepeats(p)
		if err := add("finger_repeats", m, err); err != nil {
			return nil, err
		}
	}
	if enabled("manual_bigram_penalty") {
		mc, err := requireParams("manual_bigram_penalty")
		if err != nil {
			return nil, err
		}
		var p ManualBigramPenaltyParams
		if err := mc.DecodeParams(&p); err != nil {
			return nil, fmt.Errorf("metric %q: %w", "manual_bigram_penalty", err)
		}
		m, err := NewManualBigramPenalty(p, columns)
		if err := add("manual_bigram_penalty", m, err); err != nil {
			return nil, err
		}
	}
	if enabled("movement_pattern") {
		mc, err := requireParams("movement_pattern")
		if err != nil {
			return nil, err
		}
		var p MovementPatternParams
		if err := mc.DecodeParams(&p); err != nil {
			return nil, fmt.Errorf("metric %q: %w", "movement_pattern", err)
		}
		m, err := NewMovementPattern(p)
		if err := add("movement_pattern", m, err); err != nil {
			return nil, err
		}
	}
	if enabled("no_handswitch_after_unbalancing_key") {
		var p NoHandswitchAfterUnbalancingKeyParams
		mc := cfg.Metrics["no_handswitch_after_unbalancing_key"]
		if mc.HasParams() {
			if err := mc.DecodeParams(&p); err != nil {
				return nil, fmt.Errorf("metric %q: %w", "no_handswitch_after_unbalancing_key", err)
			}
		}
		m, err := NewNoHandswitchAfterUnbalancingKey(p)
		if err := add("no_handswitch_after_unbalancing_key", m, err); err != nil {
			return nil, err
		}
	}

	// Unigram metrics.
	if enabled("shortcut_keys") {
		mc, err := requireParams("shortcut_keys")
		if err != nil {
			return nil, err
		}
		var p ShortcutKeysParams
		if err := mc.DecodeParams(&p); err != nil {
			return nil, fmt.Errorf("metric %q: %w", "shortcut_keys", err)
		}
		m, err := NewShortcutKeys(p)
		if err := add("shortcut_keys", m, err); err != nil {
			return nil, err
		}
	}
	if enabled("similar_letters") {
		mc, err := requireParams("similar_letters")
		if err != nil {
			return nil, err
		}
		var p SimilarLettersParams
		if err := mc.DecodeParams(&p); err != nil {
			return nil, fmt.Errorf("metric %q: %w", "similar_letters", err)
		}
		m, err := NewSimilarLetters(p)
		if err := add("similar_letters", m, err); err != nil {
			return nil, err
		}
	}
	if enabled("similar_letter_groups") {
		mc, err := requireParams("similar_letter_groups")
		if err != nil {
			return nil, err
		}
		var p SimilarLetterGroupsParams
		if err := mc.DecodeParams(&p); err != nil {
			return nil, fmt.Errorf("metric %q: %w", "similar_letter_groups", err)
		}
		m, err := NewSimilarLetterGroups(p)
		if err := add("similar_letter_groups", m, err); err != nil {
			return nil, err
		}
	}
	if enabled("finger_balance") {
		mc, err := requireParams("finger_balance")
		if err != nil {
			return nil, err
		}
		var p FingerBalanceParams
		if err := mc.DecodeParams(&p); err != nil {
			return nil, fmt.Errorf("metric %q: %w", "finger_balance", err)
		}
		m, err := NewFingerBalance(p)
		if err := add("finger_balance", m, err); err != nil {
			return nil, err
		}
	}
	if enabled("hand_disbalance") {
		var p HandDisbalanceParams
		mc := cfg.Metrics["hand_disbalance"]
		if mc.HasParams() {
			if err := mc.DecodeParams(&p); err != nil {
				return nil, fmt.Errorf("metric %q: %w", "hand_disbalance", err)
			}
		}
		m, err := NewHandDisbalance(p)
		if err := add("hand_disbalance", m, err); err != nil {
			return nil, err
		}
	}
	if enabled("key_costs") {
		if err := add("key_costs", NewKeyCosts(), nil); err != nil {
			return nil, err
		}
	}
	if enabled("row_loads") {
		if err := add("row_loads", NewRowLoads(), nil); err != nil {
			return nil, err
		}
	}

	// Trigram metrics; the half-bigram ones get the enabled pair costers.
	if enabled("irregularity") {
		if err := add("irregularity", NewIrregularity(pairCosters), nil); err != nil {
			return nil, err
		}
	}
	if enabled("no_handswitch_in_trigram") {
		mc, err := requireParams("no_handswitch_in_trigram")
		if err != nil {
			return nil, err
		}
		var p NoHandswitchInTrigramParams
		if err := mc.DecodeParams(&p); err != nil {
			return nil, fmt.Errorf("metric %q: %w", "no_handswitch_in_trigram", err)
		}
		m, err := NewNoHandswitchInTrigram(p)
		if err := add("no_handswitch_in_trigram", m, err); err != nil {
			return nil, err
		}
	}
	if enabled("secondary_bigrams") {
		mc, err := requireParams("secondary_bigrams")
		if err != nil {
			return nil, err
		}
		var p SecondaryBigramsParams
		if err := mc.DecodeParams(&p); err != nil {
			return nil, fmt.Errorf("metric %q: %w", "secondary_bigrams", err)
		}
		m, err := NewSecondaryBigrams(p, pairCosters)
		if err := add("secondary_bigrams", m, err); err != nil {
			return nil, err
		}
	}
	if enabled("trigram_finger_repeats") {
		mc, err := requireParams("trigram_finger_repeats")
		if err != nil {
			return nil, err
		}
		var p TrigramFingerRepeatsParams
		if err := mc.DecodeParams(&p); err != nil {
			return nil, fmt.Errorf("metric %q: %w", "trigram_finger_repeats", err)
		}
		m, err := NewTrigramFingerRepeats(p)
		if err := add("trigram_finger_repeats", m, err); err != nil {
			return nil, err
		}
	}
	for _, name := range []string{"trigram_rolls", "oxey_inward_rolls", "oxey_outward_rolls"} {
		if !enabled(name) {
			continue
		}
		var p RollParams
		mc := cfg.Metrics[name]
		if mc.HasParams() {
			if err := mc.DecodeParams(&p); err != nil {
				return nil, fmt.Errorf("metric %q: %w", name, err)
			}
		}
		var m Metric
		var err error
		switch name {
		case "trigram_rolls":
			m, err = NewTrigramRolls(p)
		case "oxey_inward_rolls":
			m, err = NewOxeyInwardRolls(p)
		case "oxey_outward_rolls":
			m, err = NewOxeyOutwardRolls(p)
		}
		if err := add(name, m, err); err != nil {
			return nil, err
		}
	}

	sort.Slice(reg.Entries, func(i, j int) bool {
		a, b := reg.Entries[i].Metric, reg.Entries[j].Metric
		if a.Class() != b.Class() {
			return a.Class() < b.Class()
		}
		return a.Name() < b.Name()
	})
	return reg, nil
}
