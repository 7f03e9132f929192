//go:build !cgo || windows

// Package gpu implements the capture readback device on WebGPU.
package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/engine/capture"
	"github.com/Faultbox/hullview/internal/logger"
)

var (
	ErrNotMapped     = errors.New("gpu: buffer not mapped")
	ErrForeignBuffer = errors.New("gpu: readback buffer not created by this device")
	ErrShortBuffer   = errors.New("gpu: destination too small")
)

// Context owns the WebGPU instance, adapter and device.
type Context struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
}

// NewContext requests a default adapter and device.
func NewContext() (*Context, error) {
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("gpu: request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("gpu: request device: %w", err)
	}

	logger.Info("webgpu device ready")

	return &Context{instance: instance, adapter: adapter, device: device}, nil
}

// Device returns the owned device.
func (c *Context) Device() *wgpu.Device {
	return c.device
}

// Release frees the device, adapter and instance.
func (c *Context) Release() {
	if c.device != nil {
		c.device.Release()
	}
	if c.adapter != nil {
		c.adapter.Release()
	}
	if c.instance != nil {
		c.instance.Release()
	}
}

// Readback implements capture.Device on a borrowed *wgpu.Device.
type Readback struct {
	device  *wgpu.Device
	pending []*readbackBuffer
}

// NewReadback wraps dev. The caller keeps ownership of the device.
func NewReadback(dev *wgpu.Device) *Readback {
	return &Readback{device: dev}
}

// CreateReadbackBuffer allocates a MapRead|CopyDst buffer.
func (r *Readback) CreateReadbackBuffer(desc gputypes.BufferDescriptor) (capture.ReadbackBuffer, error) {
	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer: %w", err)
	}
	return &readbackBuffer{owner: r, buf: buf, size: desc.Size}, nil
}

// Poll drives the device without waiting and fires completed map callbacks.
func (r *Readback) Poll() {
	r.device.Poll(wgpu.PollPoll)

	still := r.pending[:0]
	for _, b := range r.pending {
		if !b.checkPending() {
			still = append(still, b)
		}
	}
	for i := len(still); i < len(r.pending); i++ {
		r.pending[i] = nil
	}
	r.pending = still
}

func (r *Readback) track(b *readbackBuffer) {
	r.pending = append(r.pending, b)
}

type readbackBuffer struct {
	owner    *Readback
	buf      *wgpu.Buffer
	size     uint64
	inflight *wgpu.MapPending
	done     func(error)
	mapped   bool
}

func (b *readbackBuffer) MapAsync(done func(error)) error {
	pending, err := b.buf.MapAsync(wgpu.MapModeRead, 0, b.size)
	if err != nil {
		return err
	}
	b.inflight = pending
	b.done = done
	b.owner.track(b)
	return nil
}

// checkPending reports whether the outstanding map has resolved.
func (b *readbackBuffer) checkPending() bool {
	if b.inflight == nil {
		return true
	}
	ready, err := b.inflight.Status()
	if !ready && err == nil {
		return false
	}
	b.inflight.Release()
	b.inflight = nil
	b.mapped = err == nil

	done := b.done
	b.done = nil
	if done != nil {
		done(err)
	}
	return true
}

func (b *readbackBuffer) CopyOut(dst []int32) error {
	if !b.mapped {
		return ErrNotMapped
	}
	if uint64(len(dst))*4 < b.size {
		return fmt.Errorf("%w: %d values for %d bytes", ErrShortBuffer, len(dst), b.size)
	}

	rng, err := b.buf.MappedRange(0, b.size)
	if err != nil {
		return fmt.Errorf("gpu: mapped range: %w", err)
	}
	defer rng.Release()

	raw := rng.Bytes()
	for i := range len(raw) / 4 {
		dst[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return nil
}

func (b *readbackBuffer) Unmap() error {
	active := b.mapped || b.inflight != nil
	if b.inflight != nil {
		b.inflight.Release()
		b.inflight = nil
		b.done = nil
	}
	b.mapped = false
	if !active {
		return nil
	}
	return b.buf.Unmap()
}

func (b *readbackBuffer) Release() {
	if b.mapped {
		if err := b.Unmap(); err != nil {
			logger.Debug("readback unmap on release", zap.Error(err))
		}
	}
	b.buf.Release()
}
