package capture

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuffer struct {
	desc     gputypes.BufferDescriptor
	pending  func(error)
	mapErr   error
	failWith error
	fill     int32
	unmaps   int
	released bool
}

func (b *fakeBuffer) MapAsync(done func(error)) error {
	if b.mapErr != nil {
		return b.mapErr
	}
	b.pending = done
	return nil
}

func (b *fakeBuffer) CopyOut(dst []int32) error {
	for i := range dst {
		dst[i] = b.fill
	}
	return nil
}

func (b *fakeBuffer) Unmap() error {
	b.unmaps++
	return nil
}

func (b *fakeBuffer) Release() { b.released = true }

// complete fires the pending callback, as a device poll would.
func (b *fakeBuffer) complete() {
	if b.pending != nil {
		done := b.pending
		b.pending = nil
		done(b.failWith)
	}
}

type fakeDevice struct {
	buffers  []*fakeBuffer
	ready    bool
	polls    int
	allocErr error
}

func (d *fakeDevice) CreateReadbackBuffer(desc gputypes.BufferDescriptor) (ReadbackBuffer, error) {
	if d.allocErr != nil {
		return nil, d.allocErr
	}
	b := &fakeBuffer{desc: desc, fill: int32(len(d.buffers) + 1)}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) Poll() {
	d.polls++
	if d.ready {
		for _, b := range d.buffers {
			b.complete()
		}
	}
}

func (d *fakeDevice) last() *fakeBuffer {
	return d.buffers[len(d.buffers)-1]
}

func TestNewTarget(t *testing.T) {
	tgt, err := NewTarget(100, 50, 256)
	require.NoError(t, err)

	assert.Equal(t, 112, tgt.PaddedWidth)
	assert.Equal(t, uint32(112*16), tgt.BytesPerRow)
	assert.Zero(t, tgt.BytesPerRow%256)
	assert.Equal(t, uint64(112*16*50), tgt.Buffer.Size)
	assert.Equal(t, gputypes.TextureFormatRGBA32Sint, tgt.Texture.Format)
	assert.Equal(t, uint32(100), tgt.Texture.Size.Width)
	assert.Equal(t, uint32(50), tgt.CopySize.Height)
	assert.Equal(t, tgt.BytesPerRow, tgt.Layout.BytesPerRow)
	assert.NotZero(t, tgt.Buffer.Usage&gputypes.BufferUsageMapRead)
	assert.NotZero(t, tgt.Texture.Usage&gputypes.TextureUsageCopySrc)
	assert.Equal(t, 112*50*4, tgt.Values())
}

func TestNewTargetInvalid(t *testing.T) {
	_, err := NewTarget(0, 10, 256)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = NewTarget(10, 10, 100)
	assert.ErrorIs(t, err, ErrInvalidAlignment)
}

func TestPaddedWidth(t *testing.T) {
	tests := []struct {
		width, align, want int
	}{
		{16, 256, 16},
		{17, 256, 32},
		{1, 256, 16},
		{1280, 256, 1280},
		{1, 16, 1},
		{3, 64, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PaddedWidth(tt.width, tt.align), "width %d align %d", tt.width, tt.align)
	}
}

func TestMachineHappyPath(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMachine(dev)
	assert.Equal(t, Idle, m.State())
	assert.False(t, m.InProgress())

	tgt, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	assert.Equal(t, CapturePending, m.State())
	require.NotNil(t, tgt.Readback)

	require.NoError(t, m.RequestAsyncMap())
	assert.Equal(t, MapRequested, m.State())
	assert.True(t, m.InProgress())

	data, ok := m.PollAndConsume()
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Equal(t, MapRequested, m.State())

	dev.ready = true
	data, ok = m.PollAndConsume()
	require.True(t, ok)
	assert.Len(t, data, tgt.Values())
	assert.Equal(t, int32(1), data[0])
	assert.Equal(t, Idle, m.State())
	assert.Equal(t, 1, dev.last().unmaps)
}

func TestMachineExclusive(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMachine(dev)

	_, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	require.NoError(t, m.RequestAsyncMap())

	_, err = m.BeginCapture(40, 10, 256)
	assert.ErrorIs(t, err, ErrCaptureInProgress)
	assert.Len(t, dev.buffers, 1)
	assert.Equal(t, MapRequested, m.State())

	w, h, _ := m.Dimensions()
	assert.Equal(t, 20, w)
	assert.Equal(t, 10, h)
}

func TestPollAndConsumeNothingOutsideMap(t *testing.T) {
	dev := &fakeDevice{ready: true}
	m := NewMachine(dev)

	data, ok := m.PollAndConsume()
	assert.False(t, ok)
	assert.Nil(t, data)

	_, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	data, ok = m.PollAndConsume()
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Equal(t, CapturePending, m.State())
	assert.Zero(t, dev.polls)
}

func TestMachineReallocatesOnResize(t *testing.T) {
	dev := &fakeDevice{ready: true}
	m := NewMachine(dev)

	capture := func(w, h int) {
		_, err := m.BeginCapture(w, h, 256)
		require.NoError(t, err)
		require.NoError(t, m.RequestAsyncMap())
		_, ok := m.PollAndConsume()
		require.True(t, ok)
	}

	capture(20, 10)
	capture(20, 10)
	assert.Len(t, dev.buffers, 1)

	capture(30, 10)
	require.Len(t, dev.buffers, 2)
	assert.True(t, dev.buffers[0].released)
	assert.False(t, dev.buffers[1].released)
}

func TestBeginCaptureTwiceReissues(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMachine(dev)

	a, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	b, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	assert.Equal(t, a.Readback, b.Readback)
	assert.Len(t, dev.buffers, 1)
	assert.Equal(t, CapturePending, m.State())
}

func TestBeginCaptureReallocatesOnAlignmentChange(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMachine(dev)

	a, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	assert.Equal(t, 32, a.PaddedWidth)

	// Pending target with a different row stride.
	b, err := m.BeginCapture(20, 10, 1024)
	require.NoError(t, err)
	assert.Equal(t, 64, b.PaddedWidth)
	require.Len(t, dev.buffers, 2)
	assert.True(t, dev.buffers[0].released)
	assert.Equal(t, uint64(64*10*BytesPerTexel), dev.buffers[1].desc.Size)

	// Idle target with a retained buffer.
	m.Abort()
	c, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	assert.Equal(t, 32, c.PaddedWidth)
	require.Len(t, dev.buffers, 3)
	assert.True(t, dev.buffers[1].released)
	_, _, padded := m.Dimensions()
	assert.Equal(t, 32, padded)
}

func TestRequestAsyncMapRequiresPending(t *testing.T) {
	m := NewMachine(&fakeDevice{})
	err := m.RequestAsyncMap()
	assert.ErrorIs(t, err, ErrNoCapturePending)
}

func TestMapFailureReturnsToIdle(t *testing.T) {
	dev := &fakeDevice{ready: true}
	m := NewMachine(dev)

	_, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	dev.last().failWith = errors.New("device lost")
	require.NoError(t, m.RequestAsyncMap())

	data, ok := m.PollAndConsume()
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Equal(t, Idle, m.State())
	assert.Equal(t, 1, dev.last().unmaps)

	// The machine can capture again.
	dev.last().failWith = nil
	_, err = m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	require.NoError(t, m.RequestAsyncMap())
	_, ok = m.PollAndConsume()
	assert.True(t, ok)
}

func TestMapAsyncErrorReturnsToIdle(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMachine(dev)

	_, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	dev.last().mapErr = errors.New("already mapped")

	err = m.RequestAsyncMap()
	assert.ErrorIs(t, err, ErrMapFailed)
	assert.Equal(t, Idle, m.State())
}

func TestStaleCompletionDiscarded(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMachine(dev)

	_, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	require.NoError(t, m.RequestAsyncMap())
	stale := dev.last().pending

	m.Abort()
	assert.Equal(t, Idle, m.State())

	_, err = m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	require.NoError(t, m.RequestAsyncMap())

	// The abandoned map reports success first.
	stale(nil)
	data, ok := m.PollAndConsume()
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Equal(t, MapRequested, m.State())

	dev.ready = true
	_, ok = m.PollAndConsume()
	assert.True(t, ok)
}

func TestAbortFromPending(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMachine(dev)

	_, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)
	m.Abort()
	assert.Equal(t, Idle, m.State())
	assert.Zero(t, dev.last().unmaps)
}

func TestBeginCaptureAllocError(t *testing.T) {
	dev := &fakeDevice{allocErr: errors.New("out of memory")}
	m := NewMachine(dev)

	_, err := m.BeginCapture(20, 10, 256)
	require.Error(t, err)
	assert.Equal(t, Idle, m.State())
}

func TestClose(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMachine(dev)
	_, err := m.BeginCapture(20, 10, 256)
	require.NoError(t, err)

	m.Close()
	assert.True(t, dev.last().released)
	assert.Equal(t, Idle, m.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "map_requested", MapRequested.String())
	assert.Equal(t, "state(9)", State(9).String())
}

func TestTrigger(t *testing.T) {
	tr := NewTrigger(3)

	fired := 0
	for i := 0; i < 10; i++ {
		if tr.Tick() {
			fired++
			assert.Equal(t, 3, i)
		}
	}
	assert.Equal(t, 1, fired)
	assert.False(t, tr.Armed())

	tr.Touch()
	assert.False(t, tr.Tick())
	tr.Touch()
	for i := 0; i < 3; i++ {
		assert.False(t, tr.Tick())
	}
	assert.True(t, tr.Tick())
	assert.False(t, tr.Tick())
}

func TestTriggerRearm(t *testing.T) {
	tr := NewTrigger(0)
	assert.True(t, tr.Tick())
	tr.Rearm()
	assert.True(t, tr.Tick())
	assert.False(t, tr.Tick())
}
