package telemetry

import (
	"math"

	"github.com/pthm-cable/critter/components"
)

// TraceRecord is one sampled tick of one critter.
type TraceRecord struct {
	Tick     int64   `csv:"tick"`
	SimTime  float64 `csv:"sim_time"`
	Critter  uint32  `csv:"critter"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Heading  float64 `csv:"heading"` // radians, 0 = north
	Left     float64 `csv:"left"`
	Forward  float64 `csv:"forward"`
	Right    float64 `csv:"right"`
	Noise    float64 `csv:"noise"`
	Speed    float64 `csv:"speed"`
	Rotation float64 `csv:"rotation"`
	Explore  bool    `csv:"explore"`
	Color    string  `csv:"color"`
	Seen     string  `csv:"seen"`
	Score    float64 `csv:"score"`
	Done     bool    `csv:"done"`

	// Position normalized to [-1, 1] with y up, heading as a fraction of a turn.
	NormX       float64 `csv:"norm_x"`
	NormY       float64 `csv:"norm_y"`
	NormHeading float64 `csv:"norm_heading"`
}

// NewTraceRecord captures the critter's components for one tick.
func NewTraceRecord(
	tick int64, simTime float64,
	id uint32,
	pose components.Pose,
	radar components.Radar,
	cmd components.Command,
	sight components.Sight,
	mem components.Memory,
	st components.Status,
	worldW, worldH int,
) TraceRecord {
	return TraceRecord{
		Tick:        tick,
		SimTime:     simTime,
		Critter:     id,
		X:           pose.X,
		Y:           pose.Y,
		Heading:     pose.Heading,
		Left:        radar.Left,
		Forward:     radar.Forward,
		Right:       radar.Right,
		Noise:       radar.Noise,
		Speed:       cmd.Speed,
		Rotation:    cmd.Rotation,
		Explore:     cmd.Explore,
		Color:       sight.Label.String(),
		Seen:        mem.Seen.String(),
		Score:       st.Score,
		Done:        st.Done,
		NormX:       pose.X/float64(worldW)*2 - 1,
		NormY:       1 - pose.Y/float64(worldH)*2,
		NormHeading: pose.Heading / (2 * math.Pi),
	}
}
