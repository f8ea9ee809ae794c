package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/critter/components"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager(\"\") error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}

	// Methods on a nil manager are no-ops
	if err := om.WriteEvent(Event{}); err != nil {
		t.Errorf("WriteEvent on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	var mem components.Memory
	mem.Seen = mem.Seen.Add(components.ColorGreen)
	for tick := int64(1); tick <= 2; tick++ {
		e := NewColorLatchedEvent(tick, float64(tick)*0.001, 0, components.ColorGreen, mem)
		if err := om.WriteEvent(e); err != nil {
			t.Fatalf("WriteEvent: %v", err)
		}
	}
	if err := om.WriteTrace([]TraceRecord{{Tick: 1}, {Tick: 2}}); err != nil {
		t.Fatalf("WriteTrace: %v", err)
	}
	if err := om.WriteTrace([]TraceRecord{{Tick: 3}}); err != nil {
		t.Fatalf("WriteTrace: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tests := []struct {
		file   string
		header string
		lines  int
	}{
		{"events.csv", "type,tick,sim_time,critter,color,seen,score", 3},
		{"trace.csv", "tick,sim_time,critter,x,y,heading", 4},
		{"telemetry.csv", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(dir, tt.file))
			if err != nil {
				t.Fatalf("reading %s: %v", tt.file, err)
			}
			text := strings.TrimSpace(string(data))
			if tt.lines == 0 {
				if text != "" {
					t.Errorf("%s should be empty, got %q", tt.file, text)
				}
				return
			}
			lines := strings.Split(text, "\n")
			if len(lines) != tt.lines {
				t.Errorf("%s has %d lines, want %d", tt.file, len(lines), tt.lines)
			}
			if !strings.HasPrefix(lines[0], tt.header) {
				t.Errorf("%s header = %q, want prefix %q", tt.file, lines[0], tt.header)
			}
		})
	}
}
