package systems

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/critter/config"
)

// NoiseSource produces the exploration signal, one sample per tick.
type NoiseSource interface {
	Next() float64
}

// NewNoiseSource builds the configured exploration noise for one critter.
func NewNoiseSource(cfg config.NoiseConfig, dt float64, rng *rand.Rand) (NoiseSource, error) {
	switch cfg.Kind {
	case "filtered":
		return NewFilteredNoise(cfg.Sigma, cfg.Tau, dt, rng), nil
	case "simplex":
		return NewSimplexNoise(cfg.Sigma, cfg.Tau, dt, rng.Int64()), nil
	case "none":
		return ZeroNoise{}, nil
	}
	return nil, fmt.Errorf("unknown noise kind %q", cfg.Kind)
}

// FilteredNoise is gaussian white noise passed through an alpha synapse
// (two cascaded first-order lowpass stages with the same time constant).
// The white noise is scaled by 1/sqrt(dt) so the output spread does not
// depend on the tick length.
type FilteredNoise struct {
	dist   distuv.Normal
	decay  float64 // dt / tau
	stage1 float64
	stage2 float64
}

// NewFilteredNoise creates a filtered gaussian process.
func NewFilteredNoise(sigma, tau, dt float64, rng *rand.Rand) *FilteredNoise {
	return &FilteredNoise{
		dist:  distuv.Normal{Mu: 0, Sigma: sigma / math.Sqrt(dt), Src: rng},
		decay: math.Min(dt/tau, 1),
	}
}

// Next advances the filter by one tick and returns its output.
func (f *FilteredNoise) Next() float64 {
	x := f.dist.Rand()
	f.stage1 += (x - f.stage1) * f.decay
	f.stage2 += (f.stage1 - f.stage2) * f.decay
	return f.stage2
}

// SimplexNoise samples a 1D slice of opensimplex noise, giving a smooth
// signal in [-amplitude, amplitude] that varies on the timescale tau.
type SimplexNoise struct {
	noise     opensimplex.Noise
	amplitude float64
	step      float64 // noise-space distance per tick
	t         float64
}

// NewSimplexNoise creates a simplex process seeded independently of the run RNG.
func NewSimplexNoise(amplitude, tau, dt float64, seed int64) *SimplexNoise {
	return &SimplexNoise{
		noise:     opensimplex.New(seed),
		amplitude: amplitude,
		step:      dt / tau,
	}
}

// Next returns the noise value for the next tick.
func (s *SimplexNoise) Next() float64 {
	s.t += s.step
	return s.amplitude * s.noise.Eval2(s.t, 0)
}

// ZeroNoise disables exploration.
type ZeroNoise struct{}

func (ZeroNoise) Next() float64 { return 0 }
