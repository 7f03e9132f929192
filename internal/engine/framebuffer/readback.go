package framebuffer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/gogpu/gputypes"

	"github.com/Faultbox/hullview/internal/engine/capture"
)

var (
	ErrSyncFailed = errors.New("framebuffer: fence wait failed")
	ErrNotMapped  = errors.New("framebuffer: pixel buffer not mapped")
	ErrMapRange   = errors.New("framebuffer: map buffer range failed")
	ErrGenBuffer  = errors.New("framebuffer: gen pixel buffer failed")
)

// genBuffer allocates a GL buffer name; 0 means failure.
var genBuffer = func() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

// Readback implements capture.Device with pixel pack buffers and fences.
// It reads from the pick framebuffer bound at construction and must be
// used on the thread that owns the GL context.
type Readback struct {
	source  *Framebuffer
	pending []*pixelBuffer
}

// NewReadback reads back from source.
func NewReadback(source *Framebuffer) *Readback {
	return &Readback{source: source}
}

// CreateReadbackBuffer allocates a PBO of desc.Size bytes.
func (r *Readback) CreateReadbackBuffer(desc gputypes.BufferDescriptor) (capture.ReadbackBuffer, error) {
	b := &pixelBuffer{owner: r, size: int(desc.Size)}
	b.pbo = genBuffer()
	if b.pbo == 0 {
		return nil, ErrGenBuffer
	}
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, b.pbo)
	gl.BufferData(gl.PIXEL_PACK_BUFFER, b.size, nil, gl.STREAM_READ)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	return b, nil
}

// Poll checks outstanding fences without waiting.
func (r *Readback) Poll() {
	still := r.pending[:0]
	for _, b := range r.pending {
		if !b.checkFence() {
			still = append(still, b)
		}
	}
	for i := len(still); i < len(r.pending); i++ {
		r.pending[i] = nil
	}
	r.pending = still
}

type pixelBuffer struct {
	owner  *Readback
	pbo    uint32
	size   int
	fence  uintptr
	done   func(error)
	mapped unsafe.Pointer
	width  int32
	height int32
}

// MapAsync issues an asynchronous ReadPixels into the PBO and a fence after it.
func (b *pixelBuffer) MapAsync(done func(error)) error {
	if b.fence != 0 || b.mapped != nil {
		return fmt.Errorf("framebuffer: pixel buffer busy")
	}
	src := b.owner.source
	b.width, b.height = src.Size()
	// The buffer was sized from the capture target, so its row stride is the padded width.
	padded := b.size / (int(b.height) * capture.BytesPerTexel)
	if padded < int(b.width) {
		return fmt.Errorf("framebuffer: %d byte buffer too small for %dx%d", b.size, b.width, b.height)
	}

	restore := src.BindWithViewport()
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, b.pbo)
	gl.PixelStorei(gl.PACK_ROW_LENGTH, int32(padded))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 4)
	gl.ReadPixels(0, 0, b.width, b.height, gl.RGBA_INTEGER, gl.INT, gl.PtrOffset(0))
	gl.PixelStorei(gl.PACK_ROW_LENGTH, 0)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	restore()

	b.fence = gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	b.done = done
	b.owner.pending = append(b.owner.pending, b)
	return nil
}

// checkFence reports whether the outstanding read has resolved.
func (b *pixelBuffer) checkFence() bool {
	if b.fence == 0 {
		return true
	}

	var err error
	switch gl.ClientWaitSync(b.fence, 0, 0) {
	case gl.TIMEOUT_EXPIRED:
		return false
	case gl.ALREADY_SIGNALED, gl.CONDITION_SATISFIED:
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, b.pbo)
		b.mapped = gl.MapBufferRange(gl.PIXEL_PACK_BUFFER, 0, b.size, gl.MAP_READ_BIT)
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
		if b.mapped == nil {
			err = ErrMapRange
		}
	default:
		err = ErrSyncFailed
	}

	gl.DeleteSync(b.fence)
	b.fence = 0
	done := b.done
	b.done = nil
	if done != nil {
		done(err)
	}
	return true
}

// CopyOut copies the mapped image into dst with rows flipped to top-down order.
func (b *pixelBuffer) CopyOut(dst []int32) error {
	if b.mapped == nil {
		return ErrNotMapped
	}
	n := b.size / 4
	if len(dst) < n || b.height <= 0 {
		return fmt.Errorf("framebuffer: destination holds %d values, need %d", len(dst), n)
	}

	src := unsafe.Slice((*int32)(b.mapped), n)
	rowValues := n / int(b.height)
	rows := int(b.height)
	for r := 0; r < rows; r++ {
		from := src[r*rowValues : (r+1)*rowValues]
		copy(dst[(rows-1-r)*rowValues:], from)
	}
	return nil
}

func (b *pixelBuffer) Unmap() error {
	if b.fence != 0 {
		gl.DeleteSync(b.fence)
		b.fence = 0
		b.done = nil
	}
	if b.mapped == nil {
		return nil
	}
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, b.pbo)
	ok := gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	b.mapped = nil
	if !ok {
		return fmt.Errorf("framebuffer: unmap reported corrupted data store")
	}
	return nil
}

func (b *pixelBuffer) Release() {
	_ = b.Unmap()
	if b.pbo != 0 {
		gl.DeleteBuffers(1, &b.pbo)
		b.pbo = 0
	}
}
