package config

import (
	"flag"
	"strings"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagSnap       = flag.String("snap", "", "Snap mode: vertex, edge, face, line_dim, disabled")
	flagBackend    = flag.String("backend", "", "Capture backend: gl or wgpu")
	flagResidency  = flag.String("residency", "", "Shard vertex residency: local or remote")
	flagPacks      = flag.String("packs", "", "Comma-separated .hpk files, one per shard")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagSnap != "" {
		cfg.Picking.SnapMode = *flagSnap
	}
	if *flagBackend != "" {
		cfg.Picking.Backend = *flagBackend
	}
	if *flagResidency != "" {
		cfg.Scene.Residency = *flagResidency
	}
	if *flagPacks != "" {
		cfg.Scene.Packs = strings.Split(*flagPacks, ",")
	}
}
