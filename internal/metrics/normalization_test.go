package metrics

import (
	"math"
	"testing"
)

func TestNormalizationValidate(t *testing.T) {
	if err := DefaultNormalization().Validate(); err != nil {
		t.Fatalf("default normalization must validate: %v", err)
	}
	if err := (Normalization{Type: "median", Value: 1}).Validate(); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if err := (Normalization{Type: NormalizationFixed, Value: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero value")
	}
}

func TestNormalizationApply(t *testing.T) {
	fixed := Normalization{Type: NormalizationFixed, Value: 2}
	if got := fixed.Apply(8, 0.5, 1.0); math.Abs(got-4) > epsilon {
		t.Fatalf("fixed: expected 4, got %v", got)
	}

	found := Normalization{Type: NormalizationWeightFound, Value: 2}
	if got := found.Apply(8, 0.5, 1.0); math.Abs(got-8) > epsilon {
		t.Fatalf("weight_found: expected 8, got %v", got)
	}
	if got := found.Apply(8, 0, 1.0); got != 0 {
		t.Fatalf("weight_found with zero denominator: expected 0, got %v", got)
	}

	all := Normalization{Type: NormalizationWeightAll, Value: 2}
	if got := all.Apply(8, 0.5, 4.0); math.Abs(got-1) > epsilon {
		t.Fatalf("weight_all: expected 1, got %v", got)
	}
	if got := all.Apply(8, 0.5, 0); got != 0 {
		t.Fatalf("weight_all with zero denominator: expected 0, got %v", got)
	}
}
