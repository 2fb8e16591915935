package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// maxConfigFileSize caps how much we are willing to read from disk.
const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// Gravity slider limits. Configured ranges may narrow these but never widen
// them.
const (
	GravityFloor   = 100.0
	GravityCeiling = 200.0
)

// TuningConfig represents the root configuration for the docking pipeline and
// the relativity simulator. Every field is optional; the Get* accessors fall
// back to the built-in defaults, so partial files are safe.
type TuningConfig struct {
	// Spring filter params (alignment channel)
	SpringStiffness *float64 `json:"spring_stiffness,omitempty" yaml:"spring_stiffness,omitempty"`
	SpringDamping   *float64 `json:"spring_damping,omitempty" yaml:"spring_damping,omitempty"`
	SpringMass      *float64 `json:"spring_mass,omitempty" yaml:"spring_mass,omitempty"`
	FrameRate       *int     `json:"frame_rate,omitempty" yaml:"frame_rate,omitempty"`

	// Rotation channel and alignment window (degrees)
	RotationMaxDeg    *float64 `json:"rotation_max_deg,omitempty" yaml:"rotation_max_deg,omitempty"`
	AlignmentLowerDeg *float64 `json:"alignment_lower_deg,omitempty" yaml:"alignment_lower_deg,omitempty"`
	AlignmentUpperDeg *float64 `json:"alignment_upper_deg,omitempty" yaml:"alignment_upper_deg,omitempty"`
	FrozenRotationDeg *float64 `json:"frozen_rotation_deg,omitempty" yaml:"frozen_rotation_deg,omitempty"`
	ConfirmDelay      *string  `json:"confirm_delay,omitempty" yaml:"confirm_delay,omitempty"` // duration string like "1s"

	// Simulator params
	TickPeriod     *string  `json:"tick_period,omitempty" yaml:"tick_period,omitempty"` // duration string like "100ms"
	GravityMin     *float64 `json:"gravity_min,omitempty" yaml:"gravity_min,omitempty"`
	GravityMax     *float64 `json:"gravity_max,omitempty" yaml:"gravity_max,omitempty"`
	GravityInitial *float64 `json:"gravity_initial,omitempty" yaml:"gravity_initial,omitempty"`

	// Journal params
	JournalReadoutEvery *int `json:"journal_readout_every,omitempty" yaml:"journal_readout_every,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the built-in defaults. It matches config/tuning.defaults.json.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		SpringStiffness:     ptrFloat64(50),
		SpringDamping:       ptrFloat64(20),
		SpringMass:          ptrFloat64(1),
		FrameRate:           ptrInt(60),
		RotationMaxDeg:      ptrFloat64(180),
		AlignmentLowerDeg:   ptrFloat64(85),
		AlignmentUpperDeg:   ptrFloat64(95),
		FrozenRotationDeg:   ptrFloat64(90),
		ConfirmDelay:        ptrString("1s"),
		TickPeriod:          ptrString("100ms"),
		GravityMin:          ptrFloat64(100),
		GravityMax:          ptrFloat64(200),
		GravityInitial:      ptrFloat64(100),
		JournalReadoutEvery: ptrInt(10),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON or YAML file.
// The file must have a .json, .yaml or .yml extension and be under 1MB.
// Fields omitted from the file retain their default values.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/ or cmd/endurance/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.SpringStiffness != nil && *c.SpringStiffness <= 0 {
		return fmt.Errorf("spring_stiffness must be positive, got %f", *c.SpringStiffness)
	}
	if c.SpringDamping != nil && *c.SpringDamping < 0 {
		return fmt.Errorf("spring_damping must be non-negative, got %f", *c.SpringDamping)
	}
	if c.SpringMass != nil && *c.SpringMass <= 0 {
		return fmt.Errorf("spring_mass must be positive, got %f", *c.SpringMass)
	}
	if c.FrameRate != nil && *c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %d", *c.FrameRate)
	}
	if c.RotationMaxDeg != nil && *c.RotationMaxDeg <= 0 {
		return fmt.Errorf("rotation_max_deg must be positive, got %f", *c.RotationMaxDeg)
	}

	lower, upper := c.GetAlignmentLowerDeg(), c.GetAlignmentUpperDeg()
	if lower > upper {
		return fmt.Errorf("alignment_lower_deg (%f) must not exceed alignment_upper_deg (%f)", lower, upper)
	}
	if frozen := c.GetFrozenRotationDeg(); frozen < lower || frozen > upper {
		return fmt.Errorf("frozen_rotation_deg %f lies outside the alignment window [%f, %f]", frozen, lower, upper)
	}

	if err := validateDuration("confirm_delay", c.ConfirmDelay); err != nil {
		return err
	}
	if err := validateDuration("tick_period", c.TickPeriod); err != nil {
		return err
	}

	gmin, gmax := c.GetGravityMin(), c.GetGravityMax()
	if gmin < GravityFloor {
		return fmt.Errorf("gravity_min %f is below %v", gmin, GravityFloor)
	}
	if gmax > GravityCeiling {
		return fmt.Errorf("gravity_max %f is above %v", gmax, GravityCeiling)
	}
	if gmin >= gmax {
		return fmt.Errorf("gravity_min (%f) must be below gravity_max (%f)", gmin, gmax)
	}
	if g := c.GetGravityInitial(); g < gmin || g > gmax {
		return fmt.Errorf("gravity_initial %f lies outside [%f, %f]", g, gmin, gmax)
	}

	if c.JournalReadoutEvery != nil && *c.JournalReadoutEvery < 0 {
		return fmt.Errorf("journal_readout_every must be non-negative, got %d", *c.JournalReadoutEvery)
	}

	return nil
}

func validateDuration(name string, v *string) error {
	if v == nil || *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", name, *v)
	}
	return nil
}

func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil || d <= 0 {
		return def // default on parse error
	}
	return d
}

// GetSpringStiffness returns the spring_stiffness value or the default.
func (c *TuningConfig) GetSpringStiffness() float64 {
	if c.SpringStiffness == nil {
		return 50
	}
	return *c.SpringStiffness
}

// GetSpringDamping returns the spring_damping value or the default.
func (c *TuningConfig) GetSpringDamping() float64 {
	if c.SpringDamping == nil {
		return 20
	}
	return *c.SpringDamping
}

// GetSpringMass returns the spring_mass value or the default.
func (c *TuningConfig) GetSpringMass() float64 {
	if c.SpringMass == nil {
		return 1
	}
	return *c.SpringMass
}

// GetFrameRate returns the frame_rate value or the default.
func (c *TuningConfig) GetFrameRate() int {
	if c.FrameRate == nil {
		return 60
	}
	return *c.FrameRate
}

// GetRotationMaxDeg returns the rotation_max_deg value or the default.
func (c *TuningConfig) GetRotationMaxDeg() float64 {
	if c.RotationMaxDeg == nil {
		return 180
	}
	return *c.RotationMaxDeg
}

// GetAlignmentLowerDeg returns the alignment_lower_deg value or the default.
func (c *TuningConfig) GetAlignmentLowerDeg() float64 {
	if c.AlignmentLowerDeg == nil {
		return 85
	}
	return *c.AlignmentLowerDeg
}

// GetAlignmentUpperDeg returns the alignment_upper_deg value or the default.
func (c *TuningConfig) GetAlignmentUpperDeg() float64 {
	if c.AlignmentUpperDeg == nil {
		return 95
	}
	return *c.AlignmentUpperDeg
}

// GetFrozenRotationDeg returns the frozen_rotation_deg value or the default.
func (c *TuningConfig) GetFrozenRotationDeg() float64 {
	if c.FrozenRotationDeg == nil {
		return 90
	}
	return *c.FrozenRotationDeg
}

// GetConfirmDelay parses and returns the ConfirmDelay as a time.Duration.
func (c *TuningConfig) GetConfirmDelay() time.Duration {
	return durationOr(c.ConfirmDelay, time.Second)
}

// GetTickPeriod parses and returns the TickPeriod as a time.Duration.
func (c *TuningConfig) GetTickPeriod() time.Duration {
	return durationOr(c.TickPeriod, 100*time.Millisecond)
}

// GetGravityMin returns the gravity_min value or the default.
func (c *TuningConfig) GetGravityMin() float64 {
	if c.GravityMin == nil {
		return 100
	}
	return *c.GravityMin
}

// GetGravityMax returns the gravity_max value or the default.
func (c *TuningConfig) GetGravityMax() float64 {
	if c.GravityMax == nil {
		return 200
	}
	return *c.GravityMax
}

// GetGravityInitial returns the gravity_initial value or the default.
func (c *TuningConfig) GetGravityInitial() float64 {
	if c.GravityInitial == nil {
		return 100
	}
	return *c.GravityInitial
}

// GetJournalReadoutEvery returns how many ticks pass between journalled
// clock readouts. Zero disables readout journalling.
func (c *TuningConfig) GetJournalReadoutEvery() int {
	if c.JournalReadoutEvery == nil {
		return 10
	}
	return *c.JournalReadoutEvery
}
