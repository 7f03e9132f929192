package viewer

import (
	"fmt"

	"github.com/Faultbox/hullview/internal/config"
	"github.com/Faultbox/hullview/internal/engine/capture"
	"github.com/Faultbox/hullview/internal/engine/framebuffer"
)

// pickBackend owns the pick framebuffer and moves its texels into the
// capture readback buffer.
type pickBackend interface {
	device() capture.Device
	// prepare draws the pick pass for t with draw and schedules the copy.
	prepare(t capture.Target, draw func(fb *framebuffer.Framebuffer)) error
	close()
}

func newPickBackend(name string, width, height int) (pickBackend, error) {
	fb, err := framebuffer.New(int32(width), int32(height), framebuffer.RGBA32I)
	if err != nil {
		return nil, fmt.Errorf("pick framebuffer: %w", err)
	}

	switch name {
	case config.BackendWGPU:
		b, err := newWGPUBackend(fb)
		if err != nil {
			fb.Destroy()
			return nil, fmt.Errorf("wgpu backend: %w", err)
		}
		return b, nil
	default:
		return &glBackend{fb: fb, readback: framebuffer.NewReadback(fb)}, nil
	}
}

// glBackend reads the pick framebuffer through a pixel pack buffer.
// The read itself is issued by the buffer's MapAsync.
type glBackend struct {
	fb       *framebuffer.Framebuffer
	readback *framebuffer.Readback
}

func (b *glBackend) device() capture.Device { return b.readback }

func (b *glBackend) prepare(t capture.Target, draw func(fb *framebuffer.Framebuffer)) error {
	b.fb.Resize(int32(t.Width), int32(t.Height))
	draw(b.fb)
	return nil
}

func (b *glBackend) close() { b.fb.Destroy() }
