package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/Faultbox/hullview/internal/engine/picking"
)

// PickDump writes pick images as false-color PNGs for inspection.
type PickDump struct {
	outputDir string
	prefix    string
	maxWidth  int
}

// NewPickDump creates a dumper writing prefix_<timestamp>.png files into outputDir.
func NewPickDump(outputDir, prefix string) *PickDump {
	return &PickDump{
		outputDir: outputDir,
		prefix:    prefix,
	}
}

// SetMaxWidth limits the width of written images; wider images are scaled
// down with nearest-neighbor sampling so every pixel keeps a real id color.
// Zero disables scaling.
func (d *PickDump) SetMaxWidth(w int) {
	d.maxWidth = w
}

// Render converts a pick image to RGBA. Background texels are black; every
// (id, shard) pair gets a stable color.
func Render(img picking.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			px := img.At(x, y)
			if px.Background() {
				out.SetRGBA(x, y, color.RGBA{A: 255})
				continue
			}
			out.SetRGBA(x, y, idColor(picking.Pack(px.ID, px.Shard)))
		}
	}
	return out
}

// idColor spreads packed ids over the color cube.
func idColor(packed uint32) color.RGBA {
	h := packed * 2654435761
	return color.RGBA{
		R: 64 + uint8(h>>24)%192,
		G: 64 + uint8(h>>16)%192,
		B: 64 + uint8(h>>8)%192,
		A: 255,
	}
}

// Dump writes img and returns the file name.
func (d *PickDump) Dump(img picking.Image) (string, error) {
	if d.outputDir != "" {
		if err := os.MkdirAll(d.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := d.GenerateFilename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, d.scale(Render(img))); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

func (d *PickDump) scale(src *image.RGBA) image.Image {
	b := src.Bounds()
	if d.maxWidth <= 0 || b.Dx() <= d.maxWidth {
		return src
	}
	h := b.Dy() * d.maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, d.maxWidth, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// GenerateFilename generates a dump filename without saving.
func (d *PickDump) GenerateFilename() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.png", d.prefix, timestamp)
	if d.outputDir != "" {
		filename = filepath.Join(d.outputDir, filename)
	}
	return filename
}
