package components

import (
	"fmt"
	"strings"
)

// Color is the label of a cell colour as seen by the recogniser.
type Color uint8

const (
	ColorNone Color = iota
	ColorGreen
	ColorRed
	ColorBlue
	ColorMagenta
	ColorYellow
	NumColors
)

var colorNames = [NumColors]string{"none", "green", "red", "blue", "magenta", "yellow"}

// colorRunes maps colours to their map characters.
var colorRunes = [NumColors]rune{' ', 'G', 'R', 'B', 'M', 'Y'}

// String returns the lower-case colour name.
func (c Color) String() string {
	if c >= NumColors {
		return fmt.Sprintf("color(%d)", uint8(c))
	}
	return colorNames[c]
}

// Rune returns the map character for the colour.
func (c Color) Rune() rune {
	if c >= NumColors {
		return ' '
	}
	return colorRunes[c]
}

// ParseColor parses a colour name, case-insensitively.
func ParseColor(name string) (Color, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range colorNames {
		if n == name {
			return Color(i), nil
		}
	}
	return ColorNone, fmt.Errorf("unknown colour %q", name)
}

// ColorFromRune returns the colour for a map character.
func ColorFromRune(r rune) (Color, bool) {
	for i := ColorGreen; i < NumColors; i++ {
		if colorRunes[i] == r {
			return i, true
		}
	}
	return ColorNone, false
}

// ColorSet is a bit set of colours.
type ColorSet uint8

// Add returns the set with c included.
func (s ColorSet) Add(c Color) ColorSet { return s | 1<<c }

// Has reports whether c is in the set.
func (s ColorSet) Has(c Color) bool { return s&(1<<c) != 0 }

// Len returns the number of colours in the set.
func (s ColorSet) Len() int {
	n := 0
	for c := ColorGreen; c < NumColors; c++ {
		if s.Has(c) {
			n++
		}
	}
	return n
}

// Contains reports whether every colour of other is in s.
func (s ColorSet) Contains(other ColorSet) bool { return s&other == other }

// Colors returns the members in label order.
func (s ColorSet) Colors() []Color {
	var out []Color
	for c := ColorGreen; c < NumColors; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String renders the set as map characters, e.g. "GRB".
func (s ColorSet) String() string {
	var b strings.Builder
	for _, c := range s.Colors() {
		b.WriteRune(c.Rune())
	}
	return b.String()
}
