package debug

import (
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/engine/picking"
	"github.com/Faultbox/hullview/pkg/math"
)

func TestBBoxWireframe(t *testing.T) {
	b := model.Bounds{Min: math.Vec3{}, Max: math.Vec3{X: 4, Y: 2, Z: 1}}
	lines := BBoxWireframe(b, 0)
	if len(lines) != BBoxWireframeVertexCount {
		t.Fatalf("got %d vertices, want %d", len(lines), BBoxWireframeVertexCount)
	}

	var total float32
	for i := 0; i < len(lines); i += 2 {
		d := lines[i+1].Sub(lines[i])
		axes := 0
		for _, c := range d.Array() {
			if c != 0 {
				axes++
			}
		}
		if axes != 1 {
			t.Errorf("edge %d is not axis aligned: %v -> %v", i/2, lines[i], lines[i+1])
		}
		total += d.Length()
	}
	if want := float32(4 * (4 + 2 + 1)); total != want {
		t.Errorf("total edge length = %v, want %v", total, want)
	}
}

func TestBBoxWireframePaddingAndInvalid(t *testing.T) {
	b := model.Bounds{Min: math.Vec3{X: 1, Y: 1, Z: 1}, Max: math.Vec3{X: 2, Y: 2, Z: 2}}
	lines := BBoxWireframe(b, 0.5)
	if lines[0] != (math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}) {
		t.Errorf("first corner = %v", lines[0])
	}

	if got := BBoxWireframe(model.EmptyBounds(), 0); got != nil {
		t.Errorf("empty bounds produced %d vertices", len(got))
	}
	if got := SelectionWireframe([]model.Bounds{b, b, model.EmptyBounds()}, 0); len(got) != 2*BBoxWireframeVertexCount {
		t.Errorf("selection wireframe has %d vertices", len(got))
	}
}

func newPickImage(t *testing.T) picking.Image {
	t.Helper()
	img, err := picking.NewImage(make([]int32, 8*4*picking.ChannelsPerTexel), 8, 6, 4)
	if err != nil {
		t.Fatal(err)
	}
	img.Set(1, 1, math.Vec3{X: 1}, picking.Pack(5, 2))
	img.Set(2, 1, math.Vec3{X: 2}, picking.Pack(5, 2))
	img.Set(3, 1, math.Vec3{X: 3}, picking.Pack(6, 2))
	return img
}

func TestRender(t *testing.T) {
	out := Render(newPickImage(t))
	if out.Bounds().Dx() != 6 || out.Bounds().Dy() != 4 {
		t.Fatalf("size = %v", out.Bounds())
	}
	if got := out.RGBAAt(0, 0); got != (color.RGBA{A: 255}) {
		t.Errorf("background = %v", got)
	}
	if out.RGBAAt(1, 1) != out.RGBAAt(2, 1) {
		t.Error("same pick index rendered in different colors")
	}
	if out.RGBAAt(1, 1) == out.RGBAAt(3, 1) {
		t.Error("different pick indices rendered in the same color")
	}
}

func TestPickDump(t *testing.T) {
	dir := t.TempDir()
	d := NewPickDump(dir, "pick")

	name, err := d.Dump(newPickImage(t))
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", name, err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
		t.Errorf("decoded size = %v", img.Bounds())
	}
}

func TestPickDumpMaxWidth(t *testing.T) {
	d := NewPickDump(t.TempDir(), "pick")
	d.SetMaxWidth(3)

	name, err := d.Dump(newPickImage(t))
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("scaled size = %v, want 3x2", img.Bounds())
	}
}
