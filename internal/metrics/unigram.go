package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/layscore/internal/keyboard"
)

// ShortcutKeysParams configures the shortcut_keys metric.
type ShortcutKeysParams struct {
	Symbols             string  `yaml:"symbols"`
	Cost                float64 `yaml:"cost"`
	WithinNLeftmostCols int     `yaml:"within_n_leftmost_cols"`
}

// ShortcutKeys charges shortcut symbols that drift away from the leftmost
// columns, where they stay reachable next to a modifier.
type ShortcutKeys struct {
	params ShortcutKeysParams
}

// NewShortcutKeys validates params and builds the metric.
func NewShortcutKeys(p ShortcutKeysParams) (*ShortcutKeys, error) {
	if p.Symbols == "" {
		return nil, fmt.Errorf("shortcut_keys: symbols must not be empty")
	}
	if p.WithinNLeftmostCols <= 0 {
		return nil, fmt.Errorf("shortcut_keys: within_n_leftmost_cols must be positive")
	}
	return &ShortcutKeys{params: p}, nil
}

// Name implements Metric.
func (m *ShortcutKeys) Name() string { return "shortcut_keys" }

// Class implements Metric.
func (m *ShortcutKeys) Class() Class { return ClassUnigram }

// Evaluate implements Metric.
func (m *ShortcutKeys) Evaluate(in *Input) Outcome {
	var out Outcome
	for _, sym := range m.params.Symbols {
		key, ok := in.Layout.Key(sym)
		if !ok {
			continue
		}
		rel := in.Tables.UnigramRel(sym)
		out.Found += rel
		if key.Column >= m.params.WithinNLeftmostCols {
			out.Raw += m.params.Cost * rel
		}
	}
	return out
}

// LetterPairRating configures one similar_letters pair.
type LetterPairRating struct {
	Pair            string  `yaml:"pair"`
	SameKeyCost     float64 `yaml:"same_key_cost"`
	NeighboringCost float64 `yaml:"neighboring_cost"`
	SameColumnCost  float64 `yaml:"same_column_cost"`
	SymmetricCost   float64 `yaml:"symmetric_cost"`
}

// SimilarLettersParams configures the similar_letters metric.
type SimilarLettersParams struct {
	Pairs []LetterPairRating `yaml:"pairs"`
}

// SimilarLetters scores how memorably related letters (such as a/ä) are
// placed relative to each other: same key, neighbors, same column, or
// mirrored hand positions are cheap; anything else costs the full 1.0.
type SimilarLetters struct {
	params SimilarLettersParams
}

// NewSimilarLetters validates params and builds the metric.
func NewSimilarLetters(p SimilarLettersParams) (*SimilarLetters, error) {
	if len(p.Pairs) == 0 {
		return nil, fmt.Errorf("similar_letters: pairs must not be empty")
	}
	for i, pair := range p.Pairs {
		if len([]rune(pair.Pair)) != 2 {
			return nil, fmt.Errorf("similar_letters: pair %d must hold exactly two symbols, got %q", i, pair.Pair)
		}
	}
	return &SimilarLetters{params: p}, nil
}

// Name implements Metric.
func (m *SimilarLetters) Name() string { return "similar_letters" }

// Class implements Metric.
func (m *SimilarLetters) Class() Class { return ClassUnigram }

// Evaluate implements Metric.
func (m *SimilarLetters) Evaluate(in *Input) Outcome {
	var out Outcome
	for _, rating := range m.params.Pairs {
		runes := []rune(rating.Pair)
		ka, okA := in.Layout.Key(runes[0])
		kb, okB := in.Layout.Key(runes[1])
		if !okA || !okB {
			continue
		}
		// Weight with the rarer symbol's frequency.
		w := math.Min(in.Tables.UnigramRel(runes[0]), in.Tables.UnigramRel(runes[1]))
		out.Found += w
		out.Raw += pairPlacementCost(in.Layout, ka.Key, kb.Key, rating) * w
	}
	return out
}

func pairPlacementCost(layout *keyboard.Layout, a, b keyboard.Key, rating LetterPairRating) float64 {
	switch {
	case keyboard.SamePosition(a, b):
		return rating.SameKeyCost
	case keyboard.Adjacent(a, b):
		return rating.NeighboringCost
	case a.Hand == b.Hand && a.Column == b.Column:
		return rating.SameColumnCost
	case a.Hand != b.Hand:
		if layout.Mirrored(a, b) {
			return 0
		}
		return rating.SymmetricCost
	default:
		return 1.0
	}
}

// SimilarLetterGroupsParams configures the similar_letter_groups metric.
type SimilarLetterGroupsParams struct {
	// Pairs holds equal-length group pairs, e.g. ["auo", "äüö"].
	Pairs [][]string `yaml:"pairs"`
}

// SimilarLetterGroups charges group pairs whose members are not all placed
// with one common relative displacement (mirrored across hands counts as
// the same displacement).
type SimilarLetterGroups struct {
	params SimilarLetterGroupsParams
}

// NewSimilarLetterGroups validates params and builds the metric.
func NewSimilarLetterGroups(p SimilarLetterGroupsParams) (*SimilarLetterGroups, error) {
	if len(p.Pairs) == 0 {
		return nil, fmt.Errorf("similar_letter_groups: pairs must not be empty")
	}
	for i, pair := range p.Pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("similar_letter_groups: pair %d must hold two groups", i)
		}
		if len([]rune(pair[0])) != len([]rune(pair[1])) {
			return nil, fmt.Errorf("similar_letter_groups: pair %d groups %q and %q differ in length", i, pair[0], pair[1])
		}
	}
	return &SimilarLetterGroups{params: p}, nil
}

// Name implements Metric.
func (m *SimilarLetterGroups) Name() string { return "similar_letter_groups" }

// Class implements Metric.
func (m *SimilarLetterGroups) Class() Class { return ClassUnigram }

// Evaluate implements Metric.
func (m *SimilarLetterGroups) Evaluate(in *Input) Outcome {
	var out Outcome
	for _, pair := range m.params.Pairs {
		groupA := []rune(pair[0])
		groupB := []rune(pair[1])
		haveRef := false
		var refRow, refCol int
		for i := range groupA {
			ka, okA := in.Layout.Key(groupA[i])
			kb, okB := in.Layout.Key(groupB[i])
			if !okA || !okB {
				continue
			}
			dRow, dCol := in.Layout.Displacement(ka.Key, kb.Key)
			w := in.Tables.UnigramRel(groupA[i]) + in.Tables.UnigramRel(groupB[i])
			out.Found += w
			if !haveRef {
				refRow, refCol = dRow, dCol
				haveRef = true
				continue
			}
			deviation := abs(dRow-refRow) + abs(dCol-refCol)
			out.Raw += float64(deviation) * w
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FingerBalanceParams configures the finger_balance metric.
type FingerBalanceParams struct {
	// IntendedLoads maps hand -> finger -> intended load share. Thumbs are
	// excluded from the normalization denominator.
	IntendedLoads map[string]map[string]float64 `yaml:"intended_loads"`
	// Absolute switches the deviation function from squared to absolute.
	Absolute bool `yaml:"absolute"`
}

// FingerBalance compares the observed per-finger load fractions against the
// configured intended fractions.
type FingerBalance struct {
	intended map[keyboard.Hand]map[keyboard.Finger]float64
	absolute bool
}

// NewFingerBalance validates params and builds the metric.
func NewFingerBalance(p FingerBalanceParams) (*FingerBalance, error) {
	if len(p.IntendedLoads) == 0 {
		return nil, fmt.Errorf("finger_balance: intended_loads must not be empty")
	}
	intended := map[keyboard.Hand]map[keyboard.Finger]float64{
		keyboard.HandLeft:  {},
		keyboard.HandRight: {},
	}
	for handName, fingers := range p.IntendedLoads {
		hand, err := keyboard.ParseHand(handName)
		if err != nil {
			return nil, fmt.Errorf("finger_balance: %w", err)
		}
		for fingerName, load := range fingers {
			finger, err := keyboard.ParseFinger(fingerName)
			if err != nil {
				return nil, fmt.Errorf("finger_balance: %w", err)
			}
			if load < 0 {
				return nil, fmt.Errorf("finger_balance: intended load for %s %s is negative", handName, fingerName)
			}
			intended[hand][finger] = load
		}
	}
	return &FingerBalance{intended: intended, absolute: p.Absolute}, nil
}

// Name implements Metric.
func (m *FingerBalance) Name() string { return "finger_balance" }

// Class implements Metric.
func (m *FingerBalance) Class() Class { return ClassUnigram }

// Evaluate implements Metric.
func (m *FingerBalance) Evaluate(in *Input) Outcome {
	observed := map[keyboard.Hand]map[keyboard.Finger]float64{
		keyboard.HandLeft:  {},
		keyboard.HandRight: {},
	}
	var observedTotal float64
	for _, g := range in.Tables.Unigrams {
		if g.Key.Finger == keyboard.FingerThumb {
			continue
		}
		observed[g.Key.Hand][g.Key.Finger] += g.Rel
		observedTotal += g.Rel
	}
	var intendedTotal float64
	for _, fingers := range m.intended {
		for finger, load := range fingers {
			if finger == keyboard.FingerThumb {
				continue
			}
			intendedTotal += load
		}
	}
	if observedTotal == 0 || intendedTotal == 0 {
		return Outcome{}
	}

	var out Outcome
	out.Found = observedTotal
	var infoParts []string
	for _, hand := range []keyboard.Hand{keyboard.HandLeft, keyboard.HandRight} {
		for _, finger := range []keyboard.Finger{keyboard.FingerPinky, keyboard.FingerRing, keyboard.FingerMiddle, keyboard.FingerIndex} {
			obsFrac := observed[hand][finger] / observedTotal
			intFrac := m.intended[hand][finger] / intendedTotal
			dev := obsFrac - intFrac
			if m.absolute {
				out.Raw += math.Abs(dev)
			} else {
				out.Raw += dev * dev
			}
			infoParts = append(infoParts, fmt.Sprintf("%s %s %.1f%%", hand, finger, obsFrac*100))
		}
	}
	out.Info = strings.Join(infoParts, "  ")
	return out
}

// HandDisbalanceParams configures the hand_disbalance metric.
type HandDisbalanceParams struct {
	// Absolute switches the deviation function from squared to absolute.
	Absolute bool `yaml:"absolute"`
}

// HandDisbalance charges the squared deviation of the left hand's load from
// an even split.
type HandDisbalance struct {
	params HandDisbalanceParams
}

// NewHandDisbalance builds the metric; params are optional.
func NewHandDisbalance(p HandDisbalanceParams) (*HandDisbalance, error) {
	return &HandDisbalance{params: p}, nil
}

// Name implements Metric.
func (m *HandDisbalance) Name() string { return "hand_disbalance" }

// Class implements Metric.
func (m *HandDisbalance) Class() Class { return ClassUnigram }

// Evaluate implements Metric.
func (m *HandDisbalance) Evaluate(in *Input) Outcome {
	var left, total float64
	for _, g := range in.Tables.Unigrams {
		total += g.Rel
		if g.Key.Hand == keyboard.HandLeft {
			left += g.Rel
		}
	}
	if total == 0 {
		return Outcome{}
	}
	dev := left/total - 0.5
	raw := dev * dev
	if m.params.Absolute {
		raw = math.Abs(dev)
	}
	return Outcome{
		Raw:   raw,
		Found: total,
		Info:  fmt.Sprintf("left %.1f%%  right %.1f%%", left/total*100, (1-left/total)*100),
	}
}

// KeyCosts charges every keystroke with its key's configured effort.
type KeyCosts struct{}

// NewKeyCosts builds the metric; it takes no params.
func NewKeyCosts() *KeyCosts { return &KeyCosts{} }

// Name implements Metric.
func (m *KeyCosts) Name() string { return "key_costs" }

// Class implements Metric.
func (m *KeyCosts) Class() Class { return ClassUnigram }

// Evaluate implements Metric.
func (m *KeyCosts) Evaluate(in *Input) Outcome {
	var out Outcome
	for _, g := range in.Tables.Unigrams {
		out.Raw += g.Rel * g.Key.Cost
	}
	out.Found = in.Tables.UnigramTotal
	return out
}

// RowLoads is informational: it publishes per-row load fractions and
// contributes no cost.
type RowLoads struct{}

// NewRowLoads builds the metric; it takes no params.
func NewRowLoads() *RowLoads { return &RowLoads{} }

// Name implements Metric.
func (m *RowLoads) Name() string { return "row_loads" }

// Class implements Metric.
func (m *RowLoads) Class() Class { return ClassUnigram }

// Evaluate implements Metric.
func (m *RowLoads) Evaluate(in *Input) Outcome {
	loads := map[int]float64{}
	var total float64
	for _, g := range in.Tables.Unigrams {
		loads[g.Key.Row] += g.Rel
		total += g.Rel
	}
	if total == 0 {
		return Outcome{}
	}
	rows := make([]int, 0, len(loads))
	for row := range loads {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, fmt.Sprintf("row %d %.1f%%", row, loads[row]/total*100))
	}
	return Outcome{Found: total, Info: strings.Join(parts, "  ")}
}
