//go:build !cgo || windows

// hullpick resolves the snap point under one screen position without a window.
// The pick image is rasterized on the CPU, copied through a WebGPU texture into
// a mapped readback buffer, and resolved from the host copy.
//
// On Linux, macOS and FreeBSD build it with CGO_ENABLED=0.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gogpu/gputypes"
	_ "github.com/gogpu/wgpu/hal/allbackends"
	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/config"
	"github.com/Faultbox/hullview/internal/engine/camera"
	"github.com/Faultbox/hullview/internal/engine/capture"
	"github.com/Faultbox/hullview/internal/engine/debug"
	"github.com/Faultbox/hullview/internal/engine/gpu"
	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/engine/picking"
	"github.com/Faultbox/hullview/internal/engine/scene"
	"github.com/Faultbox/hullview/internal/logger"
)

var (
	flagX      = flag.Int("x", -1, "Cursor x in pixels (default: image centre)")
	flagY      = flag.Int("y", -1, "Cursor y in pixels (default: image centre)")
	flagFrames = flag.Int("frames", 300, "Polls to wait for the readback map")
	flagDump   = flag.String("dump", "", "Write the read back pick image as PNG into this directory")
)

const pollInterval = 16 * time.Millisecond

var errMapTimeout = errors.New("readback map did not complete")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("hullpick failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	shards, readers, err := scene.Open(scene.Source{
		Packs:      cfg.Scene.Packs,
		Residency:  cfg.Scene.Residency,
		Demo:       cfg.Scene.Demo,
		DemoShards: cfg.Scene.DemoShards,
	})
	if err != nil {
		return err
	}
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	mode, err := picking.ParseSnapMode(cfg.Picking.SnapMode)
	if err != nil {
		return err
	}

	w, h := cfg.Window.Width, cfg.Window.Height
	x, y := *flagX, *flagY
	if x < 0 {
		x = w / 2
	}
	if y < 0 {
		y = h / 2
	}

	cam := camera.NewOrbitCamera()
	if b, ok := shards.Bounds(); ok {
		cam.FitToBounds(b)
	}

	ctx, err := gpu.NewContext()
	if err != nil {
		return err
	}
	defer ctx.Release()

	machine := capture.NewMachine(gpu.NewReadback(ctx.Device()))
	defer machine.Close()

	t, err := machine.BeginCapture(w, h, cfg.Picking.RowAlignment)
	if err != nil {
		return err
	}

	rendered, err := rasterize(shards, cam, w, h)
	if err != nil {
		return err
	}

	tex, err := gpu.CreatePickTexture(ctx.Device(), t, gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	defer tex.Release()

	if err := gpu.UploadTexels(ctx.Device(), tex, t, rendered.Data); err != nil {
		return err
	}
	if err := gpu.SubmitCopy(ctx.Device(), tex, t); err != nil {
		return err
	}
	if err := machine.RequestAsyncMap(); err != nil {
		return err
	}

	data, err := waitForMap(machine, *flagFrames)
	if err != nil {
		return err
	}
	img, err := picking.NewImage(data, t.PaddedWidth, w, h)
	if err != nil {
		return err
	}
	if n := mismatches(rendered, img); n > 0 {
		logger.Warn("readback differs from rendered image", zap.Int("texels", n))
	}

	resolver := picking.NewResolver(shards, picking.Options{
		LegacyVertexOnly: cfg.Picking.LegacyVertexOnly,
		BorderMargin:     cfg.Picking.BorderMargin,
	})
	res := resolver.Resolve(img, x, y, mode, cam.Ray(float32(x), float32(y), w, h))

	if res.Resolved() {
		fmt.Printf("%s object=%d shard=%d index=%d point=(%.3f, %.3f, %.3f) distance=%.3f\n",
			res.Kind, res.ObjectID, res.Shard, res.PickIndex,
			res.Point.X, res.Point.Y, res.Point.Z, res.Distance)
	} else {
		fmt.Println("nothing under cursor")
	}

	if *flagDump != "" {
		path, err := debug.NewPickDump(*flagDump, "hullpick").Dump(img)
		if err != nil {
			return err
		}
		logger.Info("pick image written", zap.String("path", path))
	}
	return nil
}

// rasterize draws every visible triangle into a tightly packed pick image.
func rasterize(shards *scene.ShardSet, cam *camera.OrbitCamera, w, h int) (picking.Image, error) {
	img, err := picking.NewImage(make([]int32, w*h*picking.ChannelsPerTexel), w, w, h)
	if err != nil {
		return picking.Image{}, err
	}
	r := picking.NewRasterizer(img, cam.ViewProjection(w, h))
	triangles := 0
	shards.Each(func(sh *scene.Shard) {
		if !sh.Renderable() {
			return
		}
		sh.EachTriangle(func(index uint32, _ int32, tri model.Triangle) {
			r.Draw(sh.ID(), index, tri)
			triangles++
		})
	})
	logger.Debug("pick image rasterized", zap.Int("triangles", triangles))
	return img, nil
}

// waitForMap polls the machine until the readback lands or frames run out.
func waitForMap(m *capture.Machine, frames int) ([]int32, error) {
	for i := 0; i < frames; i++ {
		if data, ok := m.PollAndConsume(); ok {
			return data, nil
		}
		if m.State() == capture.Idle {
			return nil, fmt.Errorf("readback map failed")
		}
		time.Sleep(pollInterval)
	}
	m.Abort()
	return nil, fmt.Errorf("%w after %d polls", errMapTimeout, frames)
}

func mismatches(a, b picking.Image) int {
	n := 0
	for row := 0; row < a.Height; row++ {
		for col := 0; col < a.Width; col++ {
			if a.At(col, row) != b.At(col, row) {
				n++
			}
		}
	}
	return n
}
