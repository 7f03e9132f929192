//go:build windows

package viewer

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	_ "github.com/gogpu/wgpu/hal/allbackends"
	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/engine/capture"
	"github.com/Faultbox/hullview/internal/engine/framebuffer"
	"github.com/Faultbox/hullview/internal/engine/gpu"
	"github.com/Faultbox/hullview/internal/logger"
)

// wgpuBackend mirrors the GL pick image into a WebGPU texture and copies it
// into a mappable WebGPU buffer.
type wgpuBackend struct {
	fb       *framebuffer.Framebuffer
	ctx      *gpu.Context
	readback *gpu.Readback

	tex     *wgpu.Texture
	texW    int
	texH    int
	staging []int32
}

func newWGPUBackend(fb *framebuffer.Framebuffer) (pickBackend, error) {
	ctx, err := gpu.NewContext()
	if err != nil {
		return nil, err
	}
	logger.Info("wgpu capture backend ready")
	return &wgpuBackend{fb: fb, ctx: ctx, readback: gpu.NewReadback(ctx.Device())}, nil
}

func (b *wgpuBackend) device() capture.Device { return b.readback }

func (b *wgpuBackend) prepare(t capture.Target, draw func(fb *framebuffer.Framebuffer)) error {
	b.fb.Resize(int32(t.Width), int32(t.Height))
	draw(b.fb)

	if b.tex == nil || b.texW != t.Width || b.texH != t.Height {
		if b.tex != nil {
			b.tex.Release()
			b.tex = nil
		}
		tex, err := gpu.CreatePickTexture(b.ctx.Device(), t, gputypes.TextureUsageCopyDst)
		if err != nil {
			return err
		}
		b.tex, b.texW, b.texH = tex, t.Width, t.Height
		logger.Debug("wgpu pick texture allocated",
			zap.Int("width", t.Width),
			zap.Int("height", t.Height))
	}

	n := t.Width * t.Height * 4
	if cap(b.staging) < n {
		b.staging = make([]int32, n)
	}
	b.staging = b.staging[:n]
	if err := b.fb.ReadTexels(b.staging); err != nil {
		return err
	}
	if err := gpu.UploadTexels(b.ctx.Device(), b.tex, t, b.staging); err != nil {
		return err
	}
	return gpu.SubmitCopy(b.ctx.Device(), b.tex, t)
}

func (b *wgpuBackend) close() {
	if b.tex != nil {
		b.tex.Release()
	}
	b.ctx.Release()
	b.fb.Destroy()
}
