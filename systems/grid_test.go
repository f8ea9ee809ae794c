package systems

import (
	"errors"
	"testing"

	"github.com/pthm-cable/critter/components"
)

const sampleMap = `
#######
#  M  #
# # # #
# #B# #
#G Y R#
#######
`

func TestParseGridSample(t *testing.T) {
	g, err := ParseGrid(sampleMap)
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	if g.Width() != 7 || g.Height() != 6 {
		t.Fatalf("size = %dx%d, want 7x6", g.Width(), g.Height())
	}

	tests := []struct {
		name  string
		x, y  int
		wall  bool
		color components.Color
	}{
		{"corner wall", 0, 0, true, components.ColorNone},
		{"start cell", 1, 2, false, components.ColorNone},
		{"green", 1, 4, false, components.ColorGreen},
		{"red", 5, 4, false, components.ColorRed},
		{"blue", 3, 3, false, components.ColorBlue},
		{"magenta", 3, 1, false, components.ColorMagenta},
		{"yellow", 3, 4, false, components.ColorYellow},
		{"inner wall", 2, 2, true, components.ColorNone},
		{"out of bounds left", -1, 2, true, components.ColorNone},
		{"out of bounds below", 3, 6, true, components.ColorNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.IsWall(tt.x, tt.y); got != tt.wall {
				t.Errorf("IsWall(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.wall)
			}
			if got := g.ColorAt(tt.x, tt.y); got != tt.color {
				t.Errorf("ColorAt(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.color)
			}
		})
	}

	if got := g.Colors().Len(); got != 5 {
		t.Errorf("Colors().Len() = %d, want 5", got)
	}
}

func TestGridRoundTrip(t *testing.T) {
	g := MustParseGrid(sampleMap)
	again, err := ParseGrid(g.String())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.String() != g.String() {
		t.Errorf("round trip changed the map:\n%s\nvs\n%s", g.String(), again.String())
	}
	want := "#######\n#  M  #\n# # # #\n# #B# #\n#G Y R#\n#######\n"
	if g.String() != want {
		t.Errorf("String() = %q, want %q", g.String(), want)
	}
}

func TestParseGridErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"blank lines only", "\n  \n\n"},
		{"ragged rows", "####\n# #\n####"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseGrid(tt.text); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := ParseGrid(""); !errors.Is(err, ErrEmptyMap) {
		t.Errorf("empty map error = %v, want ErrEmptyMap", err)
	}
}

func TestParseGridUnknownCharacters(t *testing.T) {
	g, err := ParseGrid("#####\n#x?G#\n#####")
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	if g.Unknown() != 2 {
		t.Errorf("Unknown() = %d, want 2", g.Unknown())
	}
	if g.IsWall(1, 1) || g.ColorAt(1, 1) != components.ColorNone {
		t.Error("unknown character should load as an empty cell")
	}
	if g.ColorAt(3, 1) != components.ColorGreen {
		t.Error("known colour after unknown characters not parsed")
	}
}
