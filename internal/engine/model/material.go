package model

// Fixed material codes written into the per-vertex metadata stream.
const (
	MaterialHidden   int32 = 0
	MaterialSelected int32 = 1
)

// Display classes for hull parts.
const (
	MaterialProfiles    int32 = 74
	MaterialPlates      int32 = 84
	MaterialOuterPlates int32 = 86
	MaterialOthers      int32 = 15
)

// MaterialForType maps a part type to its display material.
func MaterialForType(ty int32) int32 {
	switch ty {
	case 0, 2, 7, 16, 17, 19, 21, 24:
		return MaterialProfiles
	case 8, 12, 15, 18, 20, 22, 23:
		return MaterialPlates
	case 9:
		return MaterialOuterPlates
	default:
		return MaterialOthers
	}
}
