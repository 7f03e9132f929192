//go:build !cgo || windows

package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/Faultbox/hullview/internal/engine/capture"
)

// CreatePickTexture allocates the RGBA32Sint render target described by t.
// extra usages are OR-ed into the descriptor.
func CreatePickTexture(dev *wgpu.Device, t capture.Target, extra gputypes.TextureUsage) (*wgpu.Texture, error) {
	d := t.Texture
	tex, err := dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         d.Label,
		Size:          extent(d.Size),
		MipLevelCount: d.MipLevelCount,
		SampleCount:   d.SampleCount,
		Dimension:     d.Dimension,
		Format:        d.Format,
		Usage:         d.Usage | extra,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create pick texture: %w", err)
	}
	return tex, nil
}

// EncodeCopy records the texture-to-buffer copy of the pick target into enc.
func EncodeCopy(enc *wgpu.CommandEncoder, tex *wgpu.Texture, t capture.Target) error {
	rb, ok := t.Readback.(*readbackBuffer)
	if !ok {
		return ErrForeignBuffer
	}
	enc.CopyTextureToBuffer(tex, rb.buf, []wgpu.BufferTextureCopy{{
		BufferLayout: wgpu.ImageDataLayout{
			Offset:       t.Layout.Offset,
			BytesPerRow:  t.Layout.BytesPerRow,
			RowsPerImage: t.Layout.RowsPerImage,
		},
		TextureBase: wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Aspect:   gputypes.TextureAspectAll,
		},
		Size: extent(t.CopySize),
	}})
	return nil
}

// SubmitCopy encodes and submits the pick target copy on the device queue.
func SubmitCopy(dev *wgpu.Device, tex *wgpu.Texture, t capture.Target) error {
	enc, err := dev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "pick-copy"})
	if err != nil {
		return fmt.Errorf("gpu: create encoder: %w", err)
	}
	if err := EncodeCopy(enc, tex, t); err != nil {
		enc.DiscardEncoding()
		return err
	}
	cmd, err := enc.Finish()
	if err != nil {
		return fmt.Errorf("gpu: finish copy: %w", err)
	}
	if _, err := dev.Queue().Submit(cmd); err != nil {
		return fmt.Errorf("gpu: submit copy: %w", err)
	}
	return nil
}

// UploadTexels writes a top-down RGBA32Sint image of t's size into tex.
func UploadTexels(dev *wgpu.Device, tex *wgpu.Texture, t capture.Target, texels []int32) error {
	n := int(t.Width * t.Height * 4)
	if len(texels) < n {
		return fmt.Errorf("%w: %d values for %dx%d", ErrShortBuffer, len(texels), t.Width, t.Height)
	}
	src := make([]byte, n*4)
	for i, v := range texels[:n] {
		binary.LittleEndian.PutUint32(src[i*4:], uint32(v))
	}
	size := extent(t.CopySize)
	err := dev.Queue().WriteTexture(
		&wgpu.ImageCopyTexture{Texture: tex, Aspect: gputypes.TextureAspectAll},
		src,
		&wgpu.ImageDataLayout{BytesPerRow: uint32(t.Width * capture.BytesPerTexel), RowsPerImage: uint32(t.Height)},
		&size,
	)
	if err != nil {
		return fmt.Errorf("gpu: upload pick texels: %w", err)
	}
	return nil
}

func extent(e gputypes.Extent3D) wgpu.Extent3D {
	return wgpu.Extent3D{Width: e.Width, Height: e.Height, DepthOrArrayLayers: e.DepthOrArrayLayers}
}
