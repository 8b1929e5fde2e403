package report

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	lines := formatTable(
		[]string{"metric", "raw"},
		[][]string{
			{"key_costs", "1.5000"},
			{"hand_disbalance", "0.0100"},
		},
		map[int]bool{1: true},
	)
	want := []string{
		"metric              raw",
		"key_costs        1.5000",
		"hand_disbalance  0.0100",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestFormatTableHandlesRaggedRows(t *testing.T) {
	lines := formatTable(
		[]string{"a"},
		[][]string{{"x", "extra"}},
		nil,
	)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1] != "x  extra" {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	if got := sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("expected flat profile, got %q", got)
	}
	got := sparkline([]float64{0, 1})
	if got[0] != ' ' || got[1] != '@' {
		t.Fatalf("expected full range endpoints, got %q", got)
	}
}

func TestFormatTableCountsDisplayCells(t *testing.T) {
	lines := formatTable(
		[]string{"sym", "n"},
		[][]string{
			{"你", "1"},
			{"ab", "2"},
		},
		nil,
	)
	// The wide rune occupies two cells, same as "ab".
	want := []string{
		"sym  n",
		"你   1",
		"ab   2",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}
