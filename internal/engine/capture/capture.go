// Package capture owns the pick-image readback buffer and its map lifecycle.
//
// A capture runs Idle → CapturePending → MapRequested → Ready → Idle.
// The caller renders into the target described by BeginCapture, copies it into
// the readback buffer, then calls RequestAsyncMap. PollAndConsume is called
// once per frame and never blocks.
package capture

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/logger"
)

// BytesPerTexel is the size of one RGBA32Sint texel.
const BytesPerTexel = 16

// completionQueueSize bounds the map completion channel.
const completionQueueSize = 16

var (
	ErrCaptureInProgress = errors.New("capture: capture already in progress")
	ErrNoCapturePending  = errors.New("capture: no capture pending")
	ErrInvalidSize       = errors.New("capture: invalid target size")
	ErrInvalidAlignment  = errors.New("capture: row alignment must be a positive multiple of 16")
	ErrMapFailed         = errors.New("capture: buffer map failed")
)

// ReadbackBuffer is a host-mappable buffer the pick target is copied into.
type ReadbackBuffer interface {
	// MapAsync starts mapping for read. done is invoked exactly once,
	// possibly from inside Device.Poll.
	MapAsync(done func(error)) error
	// CopyOut copies the mapped contents into dst as int32 values.
	CopyOut(dst []int32) error
	Unmap() error
	Release()
}

// Device creates readback buffers and drives pending map callbacks.
type Device interface {
	CreateReadbackBuffer(desc gputypes.BufferDescriptor) (ReadbackBuffer, error)
	// Poll processes completed GPU work without waiting.
	Poll()
}

// State is the capture lifecycle state.
type State int

const (
	Idle State = iota
	CapturePending
	MapRequested
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CapturePending:
		return "capture_pending"
	case MapRequested:
		return "map_requested"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Target describes the render target and copy for one capture.
type Target struct {
	Width       int
	Height      int
	PaddedWidth int
	BytesPerRow uint32

	Texture gputypes.TextureDescriptor
	Buffer  gputypes.BufferDescriptor
	Layout  gputypes.TextureDataLayout
	// CopySize is the extent passed to the texture-to-buffer copy.
	CopySize gputypes.Extent3D

	Readback ReadbackBuffer
}

// Values returns the number of int32 values in the readback image.
func (t Target) Values() int {
	return t.PaddedWidth * t.Height * 4
}

// AlignUp rounds n up to a multiple of align.
func AlignUp(n, align int) int {
	return (n + align - 1) / align * align
}

// PaddedWidth returns the texel row stride for a target width.
func PaddedWidth(width, rowAlignment int) int {
	return AlignUp(width*BytesPerTexel, rowAlignment) / BytesPerTexel
}

// NewTarget computes descriptors for a width×height pick target.
func NewTarget(width, height, rowAlignment int) (Target, error) {
	if width <= 0 || height <= 0 {
		return Target{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if rowAlignment <= 0 || rowAlignment%BytesPerTexel != 0 {
		return Target{}, fmt.Errorf("%w: %d", ErrInvalidAlignment, rowAlignment)
	}

	padded := PaddedWidth(width, rowAlignment)
	bytesPerRow := uint32(padded * BytesPerTexel)
	size := gputypes.NewExtent2D(uint32(width), uint32(height))

	return Target{
		Width:       width,
		Height:      height,
		PaddedWidth: padded,
		BytesPerRow: bytesPerRow,
		Texture: gputypes.TextureDescriptor{
			Label:         "pick-target",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatRGBA32Sint,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
		},
		Buffer: gputypes.BufferDescriptor{
			Label: "pick-readback",
			Size:  uint64(bytesPerRow) * uint64(height),
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		},
		Layout: gputypes.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: uint32(height),
		},
		CopySize: size,
	}, nil
}

type completion struct {
	gen uint64
	err error
}

// Machine serializes captures over a single readback buffer.
type Machine struct {
	dev    Device
	state  State
	target Target
	gen    uint64
	done   chan completion
}

// NewMachine creates an idle machine that allocates from dev.
func NewMachine(dev Device) *Machine {
	return &Machine{
		dev:  dev,
		done: make(chan completion, completionQueueSize),
	}
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	return m.state
}

// InProgress reports whether a map is outstanding or a result is being consumed.
func (m *Machine) InProgress() bool {
	return m.state == MapRequested || m.state == Ready
}

// Dimensions returns the current target size, zero before the first capture.
func (m *Machine) Dimensions() (width, height, paddedWidth int) {
	return m.target.Width, m.target.Height, m.target.PaddedWidth
}

// BeginCapture prepares a target of the given size.
// The readback buffer is reallocated only when the size or row stride changes.
func (m *Machine) BeginCapture(width, height, rowAlignment int) (Target, error) {
	switch m.state {
	case MapRequested, Ready:
		return Target{}, ErrCaptureInProgress
	case CapturePending:
		if m.sameShape(width, height, rowAlignment) {
			return m.target, nil
		}
	}

	if m.target.Readback != nil && m.sameShape(width, height, rowAlignment) {
		m.state = CapturePending
		return m.target, nil
	}

	t, err := NewTarget(width, height, rowAlignment)
	if err != nil {
		return Target{}, err
	}
	buf, err := m.dev.CreateReadbackBuffer(t.Buffer)
	if err != nil {
		return Target{}, fmt.Errorf("capture: create readback buffer: %w", err)
	}
	if m.target.Readback != nil {
		m.target.Readback.Release()
	}
	t.Readback = buf
	m.target = t
	m.state = CapturePending

	logger.Debug("capture target allocated",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("padded_width", t.PaddedWidth),
		zap.Uint64("bytes", t.Buffer.Size))

	return t, nil
}

// sameShape reports whether the current target already has the requested
// size and row stride.
func (m *Machine) sameShape(width, height, rowAlignment int) bool {
	if rowAlignment <= 0 || rowAlignment%BytesPerTexel != 0 {
		return false
	}
	return m.target.Width == width && m.target.Height == height &&
		m.target.PaddedWidth == PaddedWidth(width, rowAlignment)
}

// RequestAsyncMap issues a fire-and-forget map of the readback buffer.
func (m *Machine) RequestAsyncMap() error {
	if m.state != CapturePending {
		return fmt.Errorf("%w: state %s", ErrNoCapturePending, m.state)
	}

	m.gen++
	gen := m.gen
	m.state = MapRequested

	err := m.target.Readback.MapAsync(func(err error) {
		select {
		case m.done <- completion{gen: gen, err: err}:
		default:
		}
	})
	if err != nil {
		m.state = Idle
		return fmt.Errorf("%w: %w", ErrMapFailed, err)
	}
	return nil
}

// PollAndConsume returns the captured image once the map completes.
// It returns nil, false when nothing is ready.
func (m *Machine) PollAndConsume() ([]int32, bool) {
	if m.state != MapRequested {
		return nil, false
	}

	m.dev.Poll()

	for {
		var c completion
		select {
		case c = <-m.done:
		default:
			return nil, false
		}
		if c.gen != m.gen {
			continue
		}

		if c.err != nil {
			logger.Warn("capture map failed", zap.Error(c.err))
			m.unmap()
			m.state = Idle
			return nil, false
		}

		m.state = Ready
		data := make([]int32, m.target.Values())
		err := m.target.Readback.CopyOut(data)
		m.unmap()
		m.state = Idle
		if err != nil {
			logger.Warn("capture copy failed", zap.Error(err))
			return nil, false
		}
		return data, true
	}
}

// Abort abandons the current capture. A pending map's completion is discarded.
func (m *Machine) Abort() {
	switch m.state {
	case CapturePending:
		m.state = Idle
	case MapRequested:
		m.gen++
		m.unmap()
		m.state = Idle
	}
}

// Close releases the readback buffer.
func (m *Machine) Close() {
	if m.target.Readback != nil {
		m.target.Readback.Release()
	}
	m.target = Target{}
	m.state = Idle
}

func (m *Machine) unmap() {
	if err := m.target.Readback.Unmap(); err != nil {
		logger.Debug("capture unmap", zap.Error(err))
	}
}
