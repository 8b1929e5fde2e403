package metrics

import "fmt"

// NormalizationType names a normalization policy.
type NormalizationType string

// Normalization policies.
const (
	NormalizationFixed       NormalizationType = "fixed"
	NormalizationWeightFound NormalizationType = "weight_found"
	NormalizationWeightAll   NormalizationType = "weight_all"
)

// Normalization rescales a raw metric cost into a corpus-size-independent
// quantity.
type Normalization struct {
	Type  NormalizationType `yaml:"type"`
	Value float64           `yaml:"value"`
}

// DefaultNormalization is used when a metric's config omits the section.
func DefaultNormalization() Normalization {
	return Normalization{Type: NormalizationFixed, Value: 1.0}
}

// Validate rejects unknown types and zero divisors at load time.
func (n Normalization) Validate() error {
	switch n.Type {
	case NormalizationFixed, NormalizationWeightFound, NormalizationWeightAll:
	default:
		return fmt.Errorf("unknown normalization type %q", n.Type)
	}
	if n.Value == 0 {
		return fmt.Errorf("normalization value must not be zero")
	}
	return nil
}

// Apply rescales raw cost. found is the weight of charged ngrams, all the
// weight of every considered ngram of the metric's class. A zero weight
// denominator yields 0 rather than propagating NaN into the total.
func (n Normalization) Apply(raw, found, all float64) float64 {
	switch n.Type {
	case NormalizationWeightFound:
		if found == 0 {
			return 0
		}
		return raw / found / n.Value
	case NormalizationWeightAll:
		if all == 0 {
			return 0
		}
		return raw / all / n.Value
	default:
		return raw / n.Value
	}
}
