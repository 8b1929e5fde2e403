package keyboard

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Synthetic symbols hosting the shift modifier keys inside a layout.
const (
	LeftShiftSymbol  = '⇧'
	RightShiftSymbol = '⇪'
)

const defaultShiftCost = 0.5

// Layout is a read-only bijection from symbol to key. Higher-layer symbols
// carry the modifier symbols needed to reach them.
type Layout struct {
	name    string
	columns int
	keys    map[rune]LayerKey
	symbols []rune
}

// Name returns the layout name.
func (l *Layout) Name() string { return l.name }

// Columns returns the keyboard's column count, used by the mirror relation.
func (l *Layout) Columns() int { return l.columns }

// Key looks up the layer key for a symbol.
func (l *Layout) Key(sym rune) (LayerKey, bool) {
	k, ok := l.keys[sym]
	return k, ok
}

// Symbols returns all non-modifier symbols in deterministic order.
func (l *Layout) Symbols() []rune {
	out := make([]rune, len(l.symbols))
	copy(out, l.symbols)
	return out
}

// MirrorOf reflects a position about the keyboard's central gap.
func (l *Layout) MirrorOf(p Position) Position {
	return Position{Row: p.Row, Column: l.columns - 1 - p.Column}
}

// Mirrored reports whether two keys occupy hand-symmetric positions.
func (l *Layout) Mirrored(a, b Key) bool {
	if a.Hand == b.Hand {
		return false
	}
	return l.MirrorOf(a.Position) == b.Position
}

// Displacement returns the row/column displacement from a to b. When the keys
// sit on different hands, b is first mirrored onto a's hand so that
// symmetric motions compare equal.
func (l *Layout) Displacement(a, b Key) (dRow, dCol int) {
	to := b.Position
	if a.Hand != b.Hand {
		to = l.MirrorOf(to)
	}
	return to.Row - a.Row, to.Column - a.Column
}

type fileLayout struct {
	Name        string     `yaml:"name"`
	Layers      [][]string `yaml:"layers"`
	Fingers     []string   `yaml:"fingers"`
	Costs       [][]float64 `yaml:"costs"`
	Unbalancing [][]int    `yaml:"unbalancing"`
	ShiftKeys   map[string][]int `yaml:"shift_keys"`
	// Space and Enter positions. Blank slots in layer rows are written as
	// spaces, so the space bar gets its own entry. Space defaults to a
	// right-thumb key below the letter block; enter is unmapped unless set.
	Space []int `yaml:"space"`
	Enter []int `yaml:"enter"`
}

// LoadFile reads a layout definition from a YAML file.
func LoadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	layout, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout %s: %w", path, err)
	}
	return layout, nil
}

// Parse builds a Layout from YAML layout data.
func Parse(data []byte) (*Layout, error) {
	var f fileLayout
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode layout yaml: %w", err)
	}
	return build(f)
}

func build(f fileLayout) (*Layout, error) {
	if len(f.Layers) == 0 || len(f.Layers[0]) == 0 {
		return nil, fmt.Errorf("layout has no layers")
	}
	base := toRuneRows(f.Layers[0])
	rows := len(base)
	columns := 0
	for _, row := range base {
		if len(row) > columns {
			columns = len(row)
		}
	}
	for i, row := range base {
		if len(row) != columns {
			return nil, fmt.Errorf("base layer row %d has %d symbols, want %d", i, len(row), columns)
		}
	}

	fingers, err := columnFingers(f.Fingers, columns)
	if err != nil {
		return nil, err
	}
	costs, err := keyCosts(f.Costs, rows, columns)
	if err != nil {
		return nil, err
	}
	unbalancing := make(map[Position]bool, len(f.Unbalancing))
	for _, rc := range f.Unbalancing {
		if len(rc) != 2 {
			return nil, fmt.Errorf("unbalancing entry must be [row, column], got %v", rc)
		}
		unbalancing[Position{Row: rc[0], Column: rc[1]}] = true
	}

	l := &Layout{
		name:    f.Name,
		columns: columns,
		keys:    make(map[rune]LayerKey),
	}

	shiftLeft, shiftRight, err := shiftKeys(f.ShiftKeys, rows, columns)
	if err != nil {
		return nil, err
	}
	l.keys[LeftShiftSymbol] = shiftLeft
	l.keys[RightShiftSymbol] = shiftRight

	spacePos := Position{Row: rows, Column: columns / 2}
	if len(f.Space) == 2 {
		spacePos = Position{Row: f.Space[0], Column: f.Space[1]}
	} else if len(f.Space) != 0 {
		return nil, fmt.Errorf("space must be [row, column]")
	}
	l.keys[' '] = LayerKey{
		Key:    Key{Position: spacePos, Hand: handFor(spacePos.Column, columns), Finger: FingerThumb, Cost: defaultShiftCost},
		Symbol: ' ',
	}
	l.symbols = append(l.symbols, ' ')

	if len(f.Enter) == 2 {
		enterPos := Position{Row: f.Enter[0], Column: f.Enter[1]}
		l.keys['\n'] = LayerKey{
			Key:    Key{Position: enterPos, Hand: handFor(enterPos.Column, columns), Finger: FingerPinky, Cost: defaultShiftCost},
			Symbol: '\n',
		}
		l.symbols = append(l.symbols, '\n')
	} else if len(f.Enter) != 0 {
		return nil, fmt.Errorf("enter must be [row, column]")
	}

	for layer, rowStrings := range f.Layers {
		layerRows := toRuneRows(rowStrings)
		if len(layerRows) != rows {
			return nil, fmt.Errorf("layer %d has %d rows, want %d", layer, len(layerRows), rows)
		}
		for r, row := range layerRows {
			if len(row) != columns {
				return nil, fmt.Errorf("layer %d row %d has %d symbols, want %d", layer, r, len(row), columns)
			}
			for c, sym := range row {
				if sym == ' ' {
					continue // blank slot
				}
				if _, dup := l.keys[sym]; dup {
					return nil, fmt.Errorf("symbol %q mapped twice", sym)
				}
				pos := Position{Row: r, Column: c}
				key := Key{
					Position:    pos,
					Hand:        handFor(c, columns),
					Finger:      fingers[c],
					Cost:        costs[r][c],
					Unbalancing: unbalancing[pos],
				}
				lk := LayerKey{Key: key, Symbol: sym, Layer: layer}
				if layer > 0 {
					// Shifted symbols use the shift key of the opposite hand.
					if key.Hand == HandLeft {
						lk.Modifiers = []rune{RightShiftSymbol}
					} else {
						lk.Modifiers = []rune{LeftShiftSymbol}
					}
				}
				l.keys[sym] = lk
				l.symbols = append(l.symbols, sym)
			}
		}
	}

	sort.Slice(l.symbols, func(i, j int) bool { return l.symbols[i] < l.symbols[j] })
	return l, nil
}

func toRuneRows(rows []string) [][]rune {
	out := make([][]rune, len(rows))
	for i, row := range rows {
		out[i] = []rune(row)
	}
	return out
}

func handFor(column, columns int) Hand {
	if column*2 < columns {
		return HandLeft
	}
	return HandRight
}

func columnFingers(names []string, columns int) ([]Finger, error) {
	if len(names) == 0 {
		return defaultFingers(columns), nil
	}
	if len(names) != columns {
		return nil, fmt.Errorf("fingers lists %d columns, layout has %d", len(names), columns)
	}
	out := make([]Finger, columns)
	for i, name := range names {
		f, err := ParseFinger(name)
		if err != nil {
			return nil, fmt.Errorf("fingers column %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// defaultFingers assigns pinky/ring/middle to the outer three columns of each
// half and index to everything between.
func defaultFingers(columns int) []Finger {
	out := make([]Finger, columns)
	for c := 0; c < columns; c++ {
		fromEdge := c
		if c*2 >= columns {
			fromEdge = columns - 1 - c
		}
		switch fromEdge {
		case 0:
			out[c] = FingerPinky
		case 1:
			out[c] = FingerRing
		case 2:
			out[c] = FingerMiddle
		default:
			out[c] = FingerIndex
		}
	}
	return out
}

func keyCosts(costs [][]float64, rows, columns int) ([][]float64, error) {
	if len(costs) == 0 {
		return defaultCosts(rows, columns), nil
	}
	if len(costs) != rows {
		return nil, fmt.Errorf("costs has %d rows, layout has %d", len(costs), rows)
	}
	for r, row := range costs {
		if len(row) != columns {
			return nil, fmt.Errorf("costs row %d has %d columns, layout has %d", r, len(row), columns)
		}
		for c, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("costs[%d][%d] is negative", r, c)
			}
		}
	}
	return costs, nil
}

// defaultCosts charges 1.0 on the home row and 2.0 elsewhere. The home row is
// the middle row of the base layer.
func defaultCosts(rows, columns int) [][]float64 {
	home := rows / 2
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, columns)
		for c := range out[r] {
			if r == home {
				out[r][c] = 1.0
			} else {
				out[r][c] = 2.0
			}
		}
	}
	return out
}

func shiftKeys(cfg map[string][]int, rows, columns int) (left, right LayerKey, err error) {
	leftPos := Position{Row: rows, Column: 0}
	rightPos := Position{Row: rows, Column: columns - 1}
	if rc, ok := cfg["left"]; ok {
		if len(rc) != 2 {
			return left, right, fmt.Errorf("shift_keys.left must be [row, column]")
		}
		leftPos = Position{Row: rc[0], Column: rc[1]}
	}
	if rc, ok := cfg["right"]; ok {
		if len(rc) != 2 {
			return left, right, fmt.Errorf("shift_keys.right must be [row, column]")
		}
		rightPos = Position{Row: rc[0], Column: rc[1]}
	}
	left = LayerKey{
		Key:        Key{Position: leftPos, Hand: HandLeft, Finger: FingerPinky, Cost: defaultShiftCost},
		Symbol:     LeftShiftSymbol,
		IsModifier: true,
	}
	right = LayerKey{
		Key:        Key{Position: rightPos, Hand: HandRight, Finger: FingerPinky, Cost: defaultShiftCost},
		Symbol:     RightShiftSymbol,
		IsModifier: true,
	}
	return left, right, nil
}
