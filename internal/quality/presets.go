package quality

import (
	"errors"
	"fmt"
)

var ErrUnknownPreset = errors.New("quality: unknown preset")

type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeLow    Mode = "low"
	ModeMedium Mode = "medium"
	ModeHigh   Mode = "high"
)

// Settings bundles every knob that affects rendering cost. Modules read it
// once per tick.
type Settings struct {
	ParticleDensity float64 `yaml:"particle_density" json:"particle_density"`
	EnableGlow      bool    `yaml:"enable_glow" json:"enable_glow"`
	EnableParticles bool    `yaml:"enable_particles" json:"enable_particles"`
	MaxHazards      int     `yaml:"max_hazards" json:"max_hazards"`
	MaxNodes        int     `yaml:"max_nodes" json:"max_nodes"`
}

var Presets = map[Mode]Settings{
	ModeLow: {
		ParticleDensity: 0.25,
		EnableGlow:      false,
		EnableParticles: false,
		MaxHazards:      3,
		MaxNodes:        6,
	},
	ModeMedium: {
		ParticleDensity: 0.5,
		EnableGlow:      false,
		EnableParticles: true,
		MaxHazards:      6,
		MaxNodes:        10,
	},
	ModeHigh: {
		ParticleDensity: 1.0,
		EnableGlow:      true,
		EnableParticles: true,
		MaxHazards:      12,
		MaxNodes:        20,
	},
}

// ladder is the downgrade order.
var ladder = []Mode{ModeHigh, ModeMedium, ModeLow}

// GetPreset returns the settings of a pinned preset.
func GetPreset(m Mode) (Settings, error) {
	s, ok := Presets[m]
	if !ok {
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownPreset, m)
	}
	return s, nil
}

// ParseMode accepts auto, low, medium or high.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if m == ModeAuto {
		return m, nil
	}
	if _, ok := Presets[m]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
}

// ListModes returns every selectable mode, auto first.
func ListModes() []Mode {
	return []Mode{ModeAuto, ModeLow, ModeMedium, ModeHigh}
}

// next returns the preset one step below m, or m itself at the bottom.
func next(m Mode) Mode {
	for i, l := range ladder {
		if l == m && i+1 < len(ladder) {
			return ladder[i+1]
		}
	}
	return m
}
