package renderer

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/hullview/internal/engine/model"
)

// SelectedColor is the highlight for selected objects.
var SelectedColor = [3]float32{1.0, 0.55, 0.1}

// MaterialColor returns the display color of a material code.
// Hidden geometry is discarded by the shader and has no color.
func MaterialColor(material int32) [3]float32 {
	switch material {
	case model.MaterialHidden:
		return [3]float32{}
	case model.MaterialSelected:
		return SelectedColor
	case model.MaterialProfiles:
		return [3]float32{0.45, 0.55, 0.75}
	case model.MaterialPlates:
		return [3]float32{0.7, 0.72, 0.7}
	case model.MaterialOuterPlates:
		return [3]float32{0.55, 0.3, 0.25}
	case model.MaterialOthers:
		return [3]float32{0.5, 0.6, 0.45}
	}
	// Spread unknown codes around the hue circle.
	return hue(float32(material%paletteSize) * 0.618034)
}

// Palette returns the packed xyz colors for codes 0..paletteSize-1.
func Palette() []float32 {
	out := make([]float32, 0, paletteSize*3)
	for i := int32(0); i < paletteSize; i++ {
		c := MaterialColor(i)
		out = append(out, c[0], c[1], c[2])
	}
	return out
}

// hue converts a fraction of the color wheel to a muted RGB color.
func hue(h float32) [3]float32 {
	h -= math32.Floor(h)
	h *= 6
	x := 1 - math32.Abs(math32.Mod(h, 2)-1)
	var r, g, b float32
	switch {
	case h < 1:
		r, g = 1, x
	case h < 2:
		r, g = x, 1
	case h < 3:
		g, b = 1, x
	case h < 4:
		g, b = x, 1
	case h < 5:
		r, b = x, 1
	default:
		r, b = 1, x
	}
	const sat, light = 0.5, 0.35
	return [3]float32{light + sat*r*0.5, light + sat*g*0.5, light + sat*b*0.5}
}
