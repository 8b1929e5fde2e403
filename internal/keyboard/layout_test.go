package keyboard

import "testing"

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

func parseTestLayout(t *testing.T) *Layout {
	t.Helper()
	layout, err := Parse([]byte(testLayoutYAML))
	if err != nil {
		t.Fatalf("failed to parse layout: %v", err)
	}
	return layout
}

func TestParseLayoutBasics(t *testing.T) {
	layout := parseTestLayout(t)

	if layout.Name() != "test" {
		t.Fatalf("expected name test, got %q", layout.Name())
	}
	if layout.Columns() != 10 {
		t.Fatalf("expected 10 columns, got %d", layout.Columns())
	}

	a, ok := layout.Key('a')
	if !ok {
		t.Fatalf("symbol a not mapped")
	}
	if a.Row != 1 || a.Column != 0 {
		t.Fatalf("expected a at (1,0), got (%d,%d)", a.Row, a.Column)
	}
	if a.Hand != HandLeft || a.Finger != FingerPinky {
		t.Fatalf("expected a on left pinky, got %s %s", a.Hand, a.Finger)
	}
	if a.Cost != 1.0 {
		t.Fatalf("expected home row cost 1.0, got %v", a.Cost)
	}
	if len(a.Modifiers) != 0 {
		t.Fatalf("base layer symbol must carry no modifiers, got %v", a.Modifiers)
	}

	q, ok := layout.Key('q')
	if !ok {
		t.Fatalf("symbol q not mapped")
	}
	if q.Cost != 2.0 {
		t.Fatalf("expected off-home cost 2.0, got %v", q.Cost)
	}
}

func TestParseLayoutShiftedSymbols(t *testing.T) {
	layout := parseTestLayout(t)

	// Shifted left-hand symbols use the right shift key, and vice versa.
	upperQ, ok := layout.Key('Q')
	if !ok {
		t.Fatalf("symbol Q not mapped")
	}
	if upperQ.Layer != 1 {
		t.Fatalf("expected Q on layer 1, got %d", upperQ.Layer)
	}
	if len(upperQ.Modifiers) != 1 || upperQ.Modifiers[0] != RightShiftSymbol {
		t.Fatalf("expected Q to need right shift, got %v", upperQ.Modifiers)
	}
	upperP, ok := layout.Key('P')
	if !ok {
		t.Fatalf("symbol P not mapped")
	}
	if len(upperP.Modifiers) != 1 || upperP.Modifiers[0] != LeftShiftSymbol {
		t.Fatalf("expected P to need left shift, got %v", upperP.Modifiers)
	}

	shift, ok := layout.Key(LeftShiftSymbol)
	if !ok {
		t.Fatalf("left shift not mapped")
	}
	if !shift.IsModifier {
		t.Fatalf("shift key must be a modifier")
	}
	if shift.Row != 3 || shift.Column != 0 || shift.Finger != FingerPinky {
		t.Fatalf("unexpected left shift key: %+v", shift)
	}
}

func TestParseLayoutSpaceAndEnter(t *testing.T) {
	layout := parseTestLayout(t)

	space, ok := layout.Key(' ')
	if !ok {
		t.Fatalf("space not mapped")
	}
	if space.Finger != FingerThumb {
		t.Fatalf("expected space on thumb, got %s", space.Finger)
	}
	if space.Row != 3 || space.Column != 5 {
		t.Fatalf("expected space at (3,5), got (%d,%d)", space.Row, space.Column)
	}

	enter, ok := layout.Key('\n')
	if !ok {
		t.Fatalf("enter not mapped")
	}
	if enter.Row != 3 || enter.Column != 9 || enter.Hand != HandRight {
		t.Fatalf("unexpected enter key: %+v", enter)
	}
}

func TestMirroredAndDisplacement(t *testing.T) {
	layout := parseTestLayout(t)

	a, _ := layout.Key('a')
	semi, _ := layout.Key(';')
	if !layout.Mirrored(a.Key, semi.Key) {
		t.Fatalf("expected a and ; to be mirrored")
	}
	j, _ := layout.Key('j')
	if layout.Mirrored(a.Key, j.Key) {
		t.Fatalf("a and j must not be mirrored")
	}
	s, _ := layout.Key('s')
	if layout.Mirrored(a.Key, s.Key) {
		t.Fatalf("same-hand keys must not be mirrored")
	}

	dRow, dCol := layout.Displacement(a.Key, s.Key)
	if dRow != 0 || dCol != 1 {
		t.Fatalf("expected displacement (0,1), got (%d,%d)", dRow, dCol)
	}
	// Cross-hand displacement mirrors the target first.
	f, _ := layout.Key('f')
	dRow, dCol = layout.Displacement(f.Key, j.Key)
	if dRow != 0 || dCol != 0 {
		t.Fatalf("expected mirrored displacement (0,0), got (%d,%d)", dRow, dCol)
	}
}

func TestParseLayoutDuplicateSymbol(t *testing.T) {
	_, err := Parse([]byte(`
name: dup
layers:
  - - "aa"
`))
	if err == nil {
		t.Fatalf("expected error for duplicated symbol")
	}
}

func TestParseLayoutRaggedRows(t *testing.T) {
	_, err := Parse([]byte(`
name: ragged
layers:
  - - "abc"
    - "de"
`))
	if err == nil {
		t.Fatalf("expected error for ragged rows")
	}
}

func TestAdjacent(t *testing.T) {
	a := Key{Position: Position{Row: 0, Column: 0}}
	b := Key{Position: Position{Row: 1, Column: 1}}
	c := Key{Position: Position{Row: 0, Column: 2}}
	if !Adjacent(a, b) {
		t.Fatalf("diagonal neighbors must be adjacent")
	}
	if Adjacent(a, c) {
		t.Fatalf("keys two columns apart must not be adjacent")
	}
	if Adjacent(a, a) {
		t.Fatalf("a key is not adjacent to itself")
	}
}

func TestParseHandAndFinger(t *testing.T) {
	hand, err := ParseHand("right")
	if err != nil || hand != HandRight {
		t.Fatalf("failed to parse hand: %v %v", hand, err)
	}
	if _, err := ParseHand("middle"); err == nil {
		t.Fatalf("expected error for unknown hand")
	}
	finger, err := ParseFinger("pinky")
	if err != nil || finger != FingerPinky {
		t.Fatalf("failed to parse finger: %v %v", finger, err)
	}
	if _, err := ParseFinger("palm"); err == nil {
		t.Fatalf("expected error for unknown finger")
	}
	if HandLeft.Other() != HandRight {
		t.Fatalf("expected other of left to be right")
	}
}
