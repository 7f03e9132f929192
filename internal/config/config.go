// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Residency modes for shard vertex data.
const (
	ResidencyLocal  = "local"
	ResidencyRemote = "remote"
)

// Capture backends.
const (
	BackendGL   = "gl"
	BackendWGPU = "wgpu"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Picking PickingConfig `yaml:"picking"`
	Scene   SceneConfig   `yaml:"scene"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// PickingConfig holds picking and snapping settings.
type PickingConfig struct {
	SnapMode         string `yaml:"snap_mode"`          // vertex, edge, face, line_dim, disabled
	LegacyVertexOnly bool   `yaml:"legacy_vertex_only"` // report the vertex even when an edge is closer
	BorderMargin     int    `yaml:"border_margin"`      // cursor positions this close to the edge resolve to nothing
	SettleFrames     int    `yaml:"settle_frames"`      // still frames before a capture is requested
	RowAlignment     int    `yaml:"row_alignment"`      // readback row stride alignment in bytes
	Backend          string `yaml:"backend"`            // gl or wgpu
}

// SceneConfig holds hull data settings.
type SceneConfig struct {
	Residency  string   `yaml:"residency"` // local or remote
	Packs      []string `yaml:"packs"`     // .hpk files, one per shard in order
	Demo       bool     `yaml:"demo"`      // build the procedural demo hull when no packs are given
	DemoShards int      `yaml:"demo_shards"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Picking: PickingConfig{
			SnapMode:     "vertex",
			BorderMargin: 10,
			SettleFrames: 10,
			RowAlignment: 256,
			Backend:      BackendGL,
		},
		Scene: SceneConfig{
			Residency:  ResidencyLocal,
			Demo:       true,
			DemoShards: 3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var snapModes = map[string]bool{
	"vertex": true, "edge": true, "face": true, "line_dim": true, "disabled": true, "not_set": true,
}

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid setting")

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	if c.Window.Width < 1 || c.Window.Height < 1 {
		return fmt.Errorf("%w: window %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if !snapModes[c.Picking.SnapMode] {
		return fmt.Errorf("%w: snap_mode %q", ErrInvalid, c.Picking.SnapMode)
	}
	if c.Picking.RowAlignment < 16 || c.Picking.RowAlignment%16 != 0 {
		return fmt.Errorf("%w: row_alignment %d must be a positive multiple of 16", ErrInvalid, c.Picking.RowAlignment)
	}
	if c.Picking.BorderMargin < 0 {
		return fmt.Errorf("%w: border_margin %d", ErrInvalid, c.Picking.BorderMargin)
	}
	if c.Picking.SettleFrames < 0 {
		return fmt.Errorf("%w: settle_frames %d", ErrInvalid, c.Picking.SettleFrames)
	}
	switch c.Picking.Backend {
	case BackendGL, BackendWGPU:
	default:
		return fmt.Errorf("%w: backend %q", ErrInvalid, c.Picking.Backend)
	}
	switch c.Scene.Residency {
	case ResidencyLocal, ResidencyRemote:
	default:
		return fmt.Errorf("%w: residency %q", ErrInvalid, c.Scene.Residency)
	}
	if len(c.Scene.Packs) > 8 {
		return fmt.Errorf("%w: %d packs, at most 8 shards", ErrInvalid, len(c.Scene.Packs))
	}
	if c.Scene.DemoShards < 1 || c.Scene.DemoShards > 8 {
		return fmt.Errorf("%w: demo_shards %d", ErrInvalid, c.Scene.DemoShards)
	}
	return nil
}
