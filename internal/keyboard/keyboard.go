// Package keyboard models physical keys, layouts, and their geometry.
package keyboard

import "fmt"

// Hand identifies the left or right hand.
type Hand int

// Hands.
const (
	HandLeft Hand = iota
	HandRight
)

// Other returns the opposite hand.
func (h Hand) Other() Hand {
	if h == HandLeft {
		return HandRight
	}
	return HandLeft
}

// String implements fmt.Stringer.
func (h Hand) String() string {
	if h == HandLeft {
		return "left"
	}
	return "right"
}

// ParseHand parses a hand name.
func ParseHand(s string) (Hand, error) {
	switch s {
	case "left":
		return HandLeft, nil
	case "right":
		return HandRight, nil
	}
	return 0, fmt.Errorf("unknown hand %q", s)
}

// Finger identifies one of the five fingers.
type Finger int

// Fingers.
const (
	FingerThumb Finger = iota
	FingerIndex
	FingerMiddle
	FingerRing
	FingerPinky
)

var fingerNames = map[Finger]string{
	FingerThumb:  "thumb",
	FingerIndex:  "index",
	FingerMiddle: "middle",
	FingerRing:   "ring",
	FingerPinky:  "pinky",
}

// String implements fmt.Stringer.
func (f Finger) String() string {
	if name, ok := fingerNames[f]; ok {
		return name
	}
	return fmt.Sprintf("finger(%d)", int(f))
}

// ParseFinger parses a finger name.
func ParseFinger(s string) (Finger, error) {
	for f, name := range fingerNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown finger %q", s)
}

// Position is a key slot on the physical keyboard grid.
type Position struct {
	Row    int
	Column int
}

// Key describes a physical key slot.
type Key struct {
	Position
	Hand        Hand
	Finger      Finger
	Cost        float64
	Unbalancing bool
}

// LayerKey binds a symbol on some layer to a physical key, together with the
// modifier symbols needed to reach that layer.
type LayerKey struct {
	Key
	Symbol    rune
	Layer     int
	Modifiers []rune
	// IsModifier marks keys the ngram mapper injects when splitting
	// higher-layer symbols into modifier+base sequences.
	IsModifier bool
}

// SamePosition reports whether two keys occupy the same physical slot.
func SamePosition(a, b Key) bool {
	return a.Row == b.Row && a.Column == b.Column
}

// Adjacent reports whether two distinct keys touch on the keyboard grid.
func Adjacent(a, b Key) bool {
	if SamePosition(a, b) {
		return false
	}
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Column - b.Column
	if dc < 0 {
		dc = -dc
	}
	return dr <= 1 && dc <= 1
}
