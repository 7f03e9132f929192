// Package viewer implements the interactive hull viewer frame loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/config"
	"github.com/Faultbox/hullview/internal/engine/camera"
	"github.com/Faultbox/hullview/internal/engine/capture"
	"github.com/Faultbox/hullview/internal/engine/debug"
	"github.com/Faultbox/hullview/internal/engine/framebuffer"
	"github.com/Faultbox/hullview/internal/engine/input"
	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/engine/picking"
	"github.com/Faultbox/hullview/internal/engine/renderer"
	"github.com/Faultbox/hullview/internal/engine/scene"
	"github.com/Faultbox/hullview/internal/engine/window"
	"github.com/Faultbox/hullview/internal/interact"
	"github.com/Faultbox/hullview/internal/logger"
	"github.com/Faultbox/hullview/pkg/math"
)

const title = "HullView"

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	controls controls

	shards  *scene.ShardSet
	state   *interact.State
	backend pickBackend
	picker  *picker
	dump    *debug.PickDump

	// selectionBox holds wireframe endpoints of the selected objects' bounds.
	selectionBox []math.Vec3
}

// New opens the window and prepares rendering and picking over shards.
func New(cfg *config.Config, shards *scene.ShardSet) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("backend", cfg.Picking.Backend),
	)

	mode, err := picking.ParseSnapMode(cfg.Picking.SnapMode)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		config: cfg,
		shards: shards,
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
		state:  interact.New(shards, mode),
		dump:   debug.NewPickDump("pickdumps", "pick"),
	}

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	dw, dh := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:  dw,
		Height: dh,
		VSync:  cfg.Window.VSync,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.backend, err = newPickBackend(cfg.Picking.Backend, dw, dh)
	if err != nil {
		v.renderer.Close()
		v.window.Close()
		return nil, err
	}

	v.picker = newPicker(v.backend.device(), shards, picking.Options{
		LegacyVertexOnly: cfg.Picking.LegacyVertexOnly,
		BorderMargin:     cfg.Picking.BorderMargin,
	}, cfg.Picking.SettleFrames, cfg.Picking.RowAlignment)

	ww, _ := v.window.GetSize()
	v.dump.SetMaxWidth(ww)

	if b, ok := shards.Bounds(); ok {
		v.camera.FitToBounds(b)
	}

	logger.Info("viewer initialized successfully")
	return v, nil
}

// State returns the interactive state handle. Other goroutines may Send
// commands through it while Run is active.
func (v *Viewer) State() *interact.State {
	return v.state
}

// Run starts the main loop and returns when the window is closed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		before := *v.camera
		v.handleEvents()

		// 2. Update state
		v.update()
		if *v.camera != before {
			v.picker.invalidate()
		}

		// 3. Pick and render
		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		// 4. Present (swap buffers)
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			v.updateTitle(frameCount)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.picker != nil {
		v.picker.close()
	}
	if v.backend != nil {
		v.backend.close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())
			v.picker.invalidate()
		case input.EventKeyDown:
			v.handleKey(event.Key)
		default:
			if cmd, ok := v.controls.handle(event, v.camera); ok {
				v.send(cmd)
			}
		}
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
		return
	case sdl.SCANCODE_HOME:
		if b, ok := v.shards.Bounds(); ok {
			v.camera.FitToBounds(b)
		}
		return
	case sdl.SCANCODE_F12:
		if !v.picker.hasImage {
			logger.Info("no pick image to dump yet")
			return
		}
		if name, err := v.dump.Dump(v.picker.image); err != nil {
			logger.Warn("pick dump failed", zap.Error(err))
		} else {
			logger.Info("pick image saved", zap.String("file", name))
		}
		return
	case sdl.SCANCODE_F5:
		v.config.Picking.SnapMode = v.state.SnapMode().String()
		if err := v.config.Save(); err != nil {
			logger.Warn("failed to save settings", zap.Error(err))
		} else {
			logger.Info("settings saved", zap.String("dir", config.ConfigDir()))
		}
		return
	}
	if cmd, ok := keyCommand(key, v.state.Selected(), v.state.Hidden()); ok {
		v.send(cmd)
	}
}

func (v *Viewer) send(cmd interact.Command) {
	if err := v.state.Send(cmd); err != nil {
		logger.Warn("command dropped", zap.Error(err))
	}
}

// update applies queued commands and uploads changed shard data.
func (v *Viewer) update() {
	fx := v.state.Update()
	if fx.Recenter {
		v.camera.SetCenter(fx.RecenterTo)
	}
	if fx.Zoom {
		v.camera.FitToBounds(fx.ZoomBounds)
	}
	if fx.MaterialsChanged {
		v.picker.invalidate()
		v.selectionBox = debug.SelectionWireframe(v.selectedBounds(), debug.DefaultBBoxPadding)
	}
	if v.renderer.Sync(v.shards) {
		v.picker.invalidate()
	}
}

// render runs the capture step, resolves the cursor and draws the frame.
func (v *Viewer) render() error {
	w, h := v.renderer.Size()
	viewProj := v.camera.ViewProjection(w, h)

	v.picker.step(w, h, func(t capture.Target) error {
		return v.backend.prepare(t, func(fb *framebuffer.Framebuffer) {
			v.renderer.DrawPick(fb, viewProj)
		})
	})

	mx, my := v.input.Mouse()
	scale := v.window.ScaleFactor()
	px, py := int(float32(mx)*scale), int(float32(my)*scale)
	ray := v.camera.Ray(float32(px), float32(py), w, h)
	active := v.picker.resolve(px, py, v.state.SnapMode(), ray)
	v.state.Publish(active)

	v.renderer.Begin()
	v.renderer.DrawHull(viewProj, v.camera.Position())

	if len(v.selectionBox) > 0 {
		v.renderer.DrawSegments(viewProj, renderer.SelectionColor, v.selectionBox)
	}
	if active.Resolved() && active.Kind != picking.KindPick {
		v.renderer.DrawPoints(viewProj, renderer.SnapColor, active.Point)
	}
	dim := v.state.Dimension()
	switch dim.Mode {
	case interact.DimensionStarted:
		v.renderer.DrawPoints(viewProj, renderer.DimensionColor, dim.P0)
	case interact.DimensionLine:
		v.renderer.DrawLine(viewProj, renderer.DimensionColor, dim.P0, dim.P1)
		v.renderer.DrawPoints(viewProj, renderer.DimensionColor, dim.P0, dim.P1)
	}

	v.renderer.End()
	return nil
}

// selectedBounds collects the bounds of every selected object across shards.
func (v *Viewer) selectedBounds() []model.Bounds {
	var out []model.Bounds
	for _, id := range v.state.Selected() {
		v.shards.Each(func(sh *scene.Shard) {
			if b, ok := sh.BBoxForObject(id); ok {
				out = append(out, b)
			}
		})
	}
	return out
}

func (v *Viewer) updateTitle(fps int) {
	active := v.state.Active()
	t := fmt.Sprintf("%s | %d fps | snap %s", title, fps, v.state.SnapMode())
	if active.ObjectID != 0 {
		t += fmt.Sprintf(" | object %d", active.ObjectID)
	}
	if dim := v.state.Dimension(); dim.Mode == interact.DimensionLine {
		t += fmt.Sprintf(" | dim %.3f", dim.Length())
	}
	v.window.SetTitle(t)
}
