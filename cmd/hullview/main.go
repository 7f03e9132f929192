// Package main is the entry point for the HullView viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/config"
	"github.com/Faultbox/hullview/internal/engine/scene"
	"github.com/Faultbox/hullview/internal/logger"
	"github.com/Faultbox/hullview/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== HullView ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	shards, readers, err := scene.Open(scene.Source{
		Packs:      cfg.Scene.Packs,
		Residency:  cfg.Scene.Residency,
		Demo:       cfg.Scene.Demo,
		DemoShards: cfg.Scene.DemoShards,
	})
	if err != nil {
		logger.Error("failed to load scene", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	v, err := viewer.New(cfg, shards)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
