package config

import (
	"sort"
	"time"
)

// Presets bundle a feed scenario with engine settings that show it off.
var Presets = map[string]*Config{
	"demo": {
		Feed:   FeedConfig{Scenario: "calm", Loop: true, Interval: 500 * time.Millisecond, Seed: 1},
		Engine: EngineConfig{FPS: 60, Quality: "auto", Theme: "cyberpunk", Seed: 1},
		Log:    LogConfig{Level: "info"},
	},
	"volatile": {
		Feed:   FeedConfig{Scenario: "volatile", Loop: true, Interval: 250 * time.Millisecond, Seed: 7},
		Engine: EngineConfig{FPS: 60, Quality: "auto", Theme: "sunset", Seed: 7},
		Log:    LogConfig{Level: "info"},
	},
	"stress": {
		Feed:   FeedConfig{Scenario: "stressed", Loop: true, Interval: 100 * time.Millisecond, Seed: 13},
		Engine: EngineConfig{FPS: 60, Quality: "high", Theme: "retro", Seed: 13},
		Log:    LogConfig{Level: "debug"},
	},
	"lowpower": {
		Feed:   FeedConfig{Scenario: "calm", Loop: true, Interval: time.Second, Seed: 1},
		Engine: EngineConfig{FPS: 30, Quality: "low", Theme: "ocean", Seed: 1},
		Log:    LogConfig{Level: "warn"},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
