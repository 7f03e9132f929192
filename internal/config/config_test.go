package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}

	if cfg.Picking.SnapMode != "vertex" {
		t.Errorf("expected snap mode vertex, got %s", cfg.Picking.SnapMode)
	}
	if cfg.Picking.SettleFrames != 10 {
		t.Errorf("expected 10 settle frames, got %d", cfg.Picking.SettleFrames)
	}
	if cfg.Picking.BorderMargin != 10 {
		t.Errorf("expected border margin 10, got %d", cfg.Picking.BorderMargin)
	}
	if cfg.Picking.RowAlignment != 256 {
		t.Errorf("expected row alignment 256, got %d", cfg.Picking.RowAlignment)
	}
	if cfg.Picking.LegacyVertexOnly {
		t.Error("expected legacy vertex-only reporting to be off by default")
	}

	if cfg.Scene.Residency != ResidencyLocal {
		t.Errorf("expected local residency, got %s", cfg.Scene.Residency)
	}
	if !cfg.Scene.Demo {
		t.Error("expected demo hull to be enabled by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hullview.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
picking:
  snap_mode: edge
  legacy_vertex_only: true
  settle_frames: 4
  backend: wgpu
scene:
  residency: remote
  packs:
    - bow.hpk
    - mid.hpk
logging:
  level: debug
  log_file: hullview.log
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Picking.SnapMode != "edge" {
		t.Errorf("expected snap mode edge, got %s", cfg.Picking.SnapMode)
	}
	if !cfg.Picking.LegacyVertexOnly {
		t.Error("expected legacy_vertex_only to be true")
	}
	if cfg.Picking.SettleFrames != 4 {
		t.Errorf("expected 4 settle frames, got %d", cfg.Picking.SettleFrames)
	}
	// Not present in the file, keeps default.
	if cfg.Picking.RowAlignment != 256 {
		t.Errorf("expected row alignment 256, got %d", cfg.Picking.RowAlignment)
	}
	if cfg.Picking.Backend != BackendWGPU {
		t.Errorf("expected wgpu backend, got %s", cfg.Picking.Backend)
	}
	if cfg.Scene.Residency != ResidencyRemote {
		t.Errorf("expected remote residency, got %s", cfg.Scene.Residency)
	}
	if len(cfg.Scene.Packs) != 2 || cfg.Scene.Packs[1] != "mid.hpk" {
		t.Errorf("unexpected packs %v", cfg.Scene.Packs)
	}
	if cfg.Logging.LogFile != "hullview.log" {
		t.Errorf("expected log file hullview.log, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/hullview.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"line dim mode", func(c *Config) { c.Picking.SnapMode = "line_dim" }, true},
		{"unknown snap mode", func(c *Config) { c.Picking.SnapMode = "corner" }, false},
		{"zero width", func(c *Config) { c.Window.Width = 0 }, false},
		{"unaligned rows", func(c *Config) { c.Picking.RowAlignment = 100 }, false},
		{"negative settle", func(c *Config) { c.Picking.SettleFrames = -1 }, false},
		{"negative border margin", func(c *Config) { c.Picking.BorderMargin = -1 }, false},
		{"unknown backend", func(c *Config) { c.Picking.Backend = "vulkan" }, false},
		{"unknown residency", func(c *Config) { c.Scene.Residency = "cloud" }, false},
		{"too many packs", func(c *Config) { c.Scene.Packs = make([]string, 9) }, false},
		{"too many demo shards", func(c *Config) { c.Scene.DemoShards = 9 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "hullview.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find hullview.yaml in current directory")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hullview.yaml")

	cfg := Default()
	cfg.Picking.SnapMode = "face"
	cfg.Scene.Packs = []string{"a.hpk"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Picking.SnapMode != "face" {
		t.Errorf("expected snap mode face after reload, got %s", loaded.Picking.SnapMode)
	}
	if len(loaded.Scene.Packs) != 1 || loaded.Scene.Packs[0] != "a.hpk" {
		t.Errorf("unexpected packs after reload: %v", loaded.Scene.Packs)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "snap and backend flags",
			setup: func() {
				*flagSnap = "disabled"
				*flagBackend = BackendWGPU
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Picking.SnapMode != "disabled" {
					t.Errorf("expected snap mode disabled, got %s", cfg.Picking.SnapMode)
				}
				if cfg.Picking.Backend != BackendWGPU {
					t.Errorf("expected wgpu backend, got %s", cfg.Picking.Backend)
				}
			},
			teardown: func() {
				*flagSnap = ""
				*flagBackend = ""
			},
		},
		{
			name: "residency and packs flags",
			setup: func() {
				*flagResidency = ResidencyRemote
				*flagPacks = "a.hpk,b.hpk"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Residency != ResidencyRemote {
					t.Errorf("expected remote residency, got %s", cfg.Scene.Residency)
				}
				if len(cfg.Scene.Packs) != 2 || cfg.Scene.Packs[0] != "a.hpk" {
					t.Errorf("unexpected packs %v", cfg.Scene.Packs)
				}
			},
			teardown: func() {
				*flagResidency = ""
				*flagPacks = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hullview.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height from file.
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("picking:\n  snap_mode: corner\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
