// Package config provides configuration loading and access for the simulation.
package config

import (
	"embed"
	"fmt"
	"math"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed profiles/*.yaml
var profilesFS embed.FS

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	World      WorldConfig      `yaml:"world"`
	Movement   MovementConfig   `yaml:"movement"`
	Sensors    SensorsConfig    `yaml:"sensors"`
	Noise      NoiseConfig      `yaml:"noise"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Memory     MemoryConfig     `yaml:"memory"`
	Stop       StopConfig       `yaml:"stop"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds tick loop parameters.
type SimulationConfig struct {
	DT         float64 `yaml:"dt"`          // Seconds per tick
	Duration   float64 `yaml:"duration"`    // Simulated seconds per run (0 = unlimited)
	Directions int     `yaml:"directions"`  // Heading units per full turn
	StopOnDone bool    `yaml:"stop_on_done"` // End the run once every critter is done
}

// StartConfig places one critter. X and Y are cell coordinates; Dir is in direction units.
type StartConfig struct {
	X   int     `yaml:"x"`
	Y   int     `yaml:"y"`
	Dir float64 `yaml:"dir"`
}

// WorldConfig holds the maze and starting poses.
type WorldConfig struct {
	Map     string        `yaml:"map"`      // Inline text grid
	MapFile string        `yaml:"map_file"` // Overrides Map when set
	Starts  []StartConfig `yaml:"starts"`   // One critter per entry
}

// MovementConfig holds movement policy parameters.
type MovementConfig struct {
	Policy            string  `yaml:"policy"`             // critter | threshold | avoid
	MaxSpeed          float64 `yaml:"max_speed"`          // Cells per second at speed 1
	MaxRotate         float64 `yaml:"max_rotate"`         // Direction units per second at rotation 1
	RotationThreshold float64 `yaml:"rotation_threshold"` // |noise| above this forces a random turn
	ExploreSpeed      float64 `yaml:"explore_speed"`      // Speed while turning randomly
	ForwardDivisor    float64 `yaml:"forward_divisor"`    // Forward reading divisor for speed
	NearDistance      float64 `yaml:"near_distance"`      // Wall proximity for threshold/avoid policies
	SpeedGain         float64 `yaml:"speed_gain"`         // Threshold policy speed gain
	TurnMax           float64 `yaml:"turn_max"`           // Threshold policy max random turn
}

// SensorsConfig holds ray sensor parameters.
type SensorsConfig struct {
	MaxDistance float64   `yaml:"max_distance"`
	Offsets     []float64 `yaml:"offsets"` // left, forward, right in direction units
	NoiseSigma  float64   `yaml:"noise_sigma"`
}

// NoiseConfig holds the exploration noise process.
type NoiseConfig struct {
	Kind  string  `yaml:"kind"`  // filtered | simplex | none
	Sigma float64 `yaml:"sigma"` // Gaussian std dev (filtered) or amplitude (simplex)
	Tau   float64 `yaml:"tau"`   // Alpha synapse time constant / simplex time scale
}

// RecognizerConfig holds colour recogniser parameters.
type RecognizerConfig struct {
	FlipProb float64 `yaml:"flip_prob"` // Per-tick probability of a random label
}

// MemoryConfig holds the colour memory bank and comparator encoding.
type MemoryConfig struct {
	Colors          []string `yaml:"colors"`           // Tracked colours
	ConfirmTicks    int      `yaml:"confirm_ticks"`    // Consecutive ticks before a latch
	Encoding        string   `yaml:"encoding"`         // set | hrr
	Dimensions      int      `yaml:"dimensions"`       // Vector size for hrr
	Neurons         int      `yaml:"neurons"`          // Accepted for compatibility; unused
	ComparatorNoise float64  `yaml:"comparator_noise"` // Gaussian noise on the hrr joint vector
}

// StopConfig holds the target pattern and stop gate.
type StopConfig struct {
	ColorsToFind int      `yaml:"colors_to_find"` // Count target (ignored when TargetColors set)
	TargetColors []string `yaml:"target_colors"`  // Explicit subset target
	SimThreshold float64  `yaml:"sim_threshold"`  // Score above this sets Done
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds per stats window
	TraceEvery  int     `yaml:"trace_every"`  // Ticks between trace rows (0 = off)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	RadiansPerDir float64 // 2*pi / Directions
	MaxTicks      int64   // Duration / DT (0 = unlimited)
	Profile       string  // Profile applied on load
}

// DefaultProfile is applied when no profile is requested.
const DefaultProfile = "critter"

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path, profile string) error {
	cfg, err := Load(path, profile)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path, profile string) {
	if err := Init(path, profile); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Profiles lists the embedded profile names.
func Profiles() []string {
	entries, err := profilesFS.ReadDir("profiles")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Load loads configuration from a YAML file, merging with embedded defaults and the named
// profile. If path is empty, only defaults and the profile are used.
func Load(path, profile string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if profile == "" {
		profile = DefaultProfile
	}
	if err := cfg.applyProfile(profile); err != nil {
		return nil, err
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	cfg.Derived.Profile = profile
	return cfg, nil
}

func (c *Config) applyProfile(name string) error {
	data, err := profilesFS.ReadFile(path.Join("profiles", name+".yaml"))
	if err != nil {
		return fmt.Errorf("unknown profile %q (have %s)", name, strings.Join(Profiles(), ", "))
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing profile %s: %w", name, err)
	}
	return nil
}

// Finalize loads the map file, validates, and recomputes derived values.
// Call it again after mutating a loaded config.
func (c *Config) Finalize() error {
	if c.World.MapFile != "" {
		data, err := os.ReadFile(c.World.MapFile)
		if err != nil {
			return fmt.Errorf("reading map file: %w", err)
		}
		c.World.Map = string(data)
		c.World.MapFile = ""
	}
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.RadiansPerDir = 2 * math.Pi / float64(c.Simulation.Directions)
	c.Derived.MaxTicks = 0
	if c.Simulation.Duration > 0 {
		c.Derived.MaxTicks = int64(math.Round(c.Simulation.Duration / c.Simulation.DT))
	}
}

// Clone returns a deep copy via a YAML round trip.
func (c *Config) Clone() *Config {
	data, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Sprintf("config: clone marshal: %v", err))
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("config: clone unmarshal: %v", err))
	}
	out.Derived = c.Derived
	return out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
