package picking

import (
	"errors"
	"fmt"
)

// SnapMode selects which feature the cursor locks onto.
type SnapMode int

const (
	SnapVertex SnapMode = iota
	SnapEdge
	SnapFace
	SnapDisabled
	SnapLineDim
	SnapNotSet
)

// ErrUnknownSnapMode is returned by ParseSnapMode.
var ErrUnknownSnapMode = errors.New("picking: unknown snap mode")

var snapModeNames = [...]string{
	SnapVertex:   "vertex",
	SnapEdge:     "edge",
	SnapFace:     "face",
	SnapDisabled: "disabled",
	SnapLineDim:  "line_dim",
	SnapNotSet:   "not_set",
}

// String returns the config name of the mode.
func (m SnapMode) String() string {
	if m < 0 || int(m) >= len(snapModeNames) {
		return fmt.Sprintf("SnapMode(%d)", int(m))
	}
	return snapModeNames[m]
}

// ParseSnapMode parses a config name.
func ParseSnapMode(s string) (SnapMode, error) {
	for i, name := range snapModeNames {
		if name == s {
			return SnapMode(i), nil
		}
	}
	return SnapNotSet, fmt.Errorf("%w: %q", ErrUnknownSnapMode, s)
}

// reportsEdge reports whether a strictly closer edge point replaces the vertex.
func (m SnapMode) reportsEdge() bool {
	return m == SnapEdge || m == SnapFace
}

// Next returns the mode the snap-mode key cycles to.
func (m SnapMode) Next() SnapMode {
	switch m {
	case SnapVertex:
		return SnapEdge
	case SnapEdge:
		return SnapFace
	case SnapFace:
		return SnapDisabled
	case SnapDisabled:
		return SnapLineDim
	default:
		return SnapVertex
	}
}
