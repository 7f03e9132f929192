// Package renderer draws the hull shards, the pick pass and the overlay.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/engine/framebuffer"
	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/engine/shader"
	"github.com/Faultbox/hullview/internal/logger"
	"github.com/Faultbox/hullview/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	VSync  bool
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	hull    *shader.Program
	pick    *shader.Program
	overlay *shader.Program

	meshes [model.MaxShards]*shardMesh

	overlayVAO uint32
	overlayVBO uint32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	var err error
	if r.hull, err = shader.New(hullVertexShader, hullFragmentShader); err != nil {
		return nil, fmt.Errorf("hull program: %w", err)
	}
	if r.pick, err = shader.New(pickVertexShader, pickFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("pick program: %w", err)
	}
	if r.overlay, err = shader.New(overlayVertexShader, overlayFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("overlay program: %w", err)
	}

	r.hull.Use()
	r.hull.SetVec3Array("uPalette", Palette())
	gl.UseProgram(0)

	r.createOverlay()

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for i, m := range r.meshes {
		if m != nil {
			m.destroy()
			r.meshes[i] = nil
		}
	}
	if r.overlayVAO != 0 {
		gl.DeleteVertexArrays(1, &r.overlayVAO)
	}
	if r.overlayVBO != 0 {
		gl.DeleteBuffers(1, &r.overlayVBO)
	}
	for _, p := range []*shader.Program{r.hull, r.pick, r.overlay} {
		if p != nil {
			p.Delete()
		}
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size.
func (r *Renderer) Size() (width, height int) {
	return r.config.Width, r.config.Height
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(r.config.Width), int32(r.config.Height))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.UseProgram(0)
}

// DrawHull draws every uploaded shard with its current materials.
func (r *Renderer) DrawHull(viewProj math.Mat4, eye math.Vec3) {
	r.hull.Use()
	r.hull.SetMat4("uViewProj", viewProj)
	r.hull.SetVec3("uEye", eye)
	for _, m := range r.meshes {
		if m != nil {
			m.draw()
		}
	}
}

// DrawPick renders the pick pass into fb, which must be an RGBA32I target.
func (r *Renderer) DrawPick(fb *framebuffer.Framebuffer, viewProj math.Mat4) {
	restore := fb.BindWithViewport()
	defer restore()

	fb.Clear()
	r.pick.Use()
	r.pick.SetMat4("uViewProj", viewProj)
	for i, m := range r.meshes {
		if m == nil {
			continue
		}
		r.pick.SetInt("uShard", int32(i))
		m.draw()
	}
}
