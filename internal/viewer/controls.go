package viewer

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/hullview/internal/engine/camera"
	"github.com/Faultbox/hullview/internal/engine/input"
	"github.com/Faultbox/hullview/internal/engine/picking"
	"github.com/Faultbox/hullview/internal/interact"
)

// clickSlop is how far the cursor may travel between press and release
// for the gesture to count as a click rather than a drag.
const clickSlop = 4

var snapKeys = map[sdl.Scancode]picking.SnapMode{
	sdl.SCANCODE_1: picking.SnapVertex,
	sdl.SCANCODE_2: picking.SnapEdge,
	sdl.SCANCODE_3: picking.SnapFace,
	sdl.SCANCODE_4: picking.SnapLineDim,
	sdl.SCANCODE_0: picking.SnapDisabled,
}

// keyCommand maps a key press to a state command.
//
//	F9, Tab  cycle snap mode
//	0-4      pick a snap mode
//	H        hide the selection along with what is already hidden
//	U        show everything
//	C        clear the selection
//	F        frame the first selected object
func keyCommand(key sdl.Scancode, selected, hidden []int32) (interact.Command, bool) {
	if mode, ok := snapKeys[key]; ok {
		return interact.Command{Kind: interact.CmdSetSnapMode, Mode: mode}, true
	}
	switch key {
	case sdl.SCANCODE_F9, sdl.SCANCODE_TAB:
		return interact.Command{Kind: interact.CmdCycleSnapMode}, true
	case sdl.SCANCODE_H:
		if len(selected) == 0 {
			return interact.Command{}, false
		}
		ids := append(append([]int32{}, hidden...), selected...)
		return interact.Command{Kind: interact.CmdHide, IDs: ids}, true
	case sdl.SCANCODE_U:
		return interact.Command{Kind: interact.CmdShowAll}, true
	case sdl.SCANCODE_C:
		return interact.Command{Kind: interact.CmdClearSelection}, true
	case sdl.SCANCODE_F:
		if len(selected) == 0 {
			return interact.Command{}, false
		}
		return interact.Command{Kind: interact.CmdZoomTo, IDs: selected[:1]}, true
	}
	return interact.Command{}, false
}

// controls turns mouse gestures into camera moves and clicks.
type controls struct {
	held     uint8
	pressX   int
	pressY   int
	dragging bool
}

// handle applies e to cam. It returns a click command when a button was
// released without dragging.
func (c *controls) handle(e input.Event, cam *camera.OrbitCamera) (interact.Command, bool) {
	switch e.Type {
	case input.EventMouseDown:
		if c.held == 0 {
			c.held = e.Button
			c.pressX, c.pressY = e.MouseX, e.MouseY
			c.dragging = false
		}
	case input.EventMouseMove:
		if c.held == 0 {
			return interact.Command{}, false
		}
		if !c.dragging && abs(e.MouseX-c.pressX)+abs(e.MouseY-c.pressY) > clickSlop {
			c.dragging = true
		}
		if !c.dragging {
			return interact.Command{}, false
		}
		dx, dy := float32(e.DeltaX), float32(e.DeltaY)
		if c.held == input.ButtonLeft && !e.Shift {
			cam.HandleDrag(dx, dy)
		} else {
			cam.HandlePan(dx, dy)
		}
	case input.EventMouseUp:
		if e.Button != c.held {
			return interact.Command{}, false
		}
		c.held = 0
		if c.dragging {
			c.dragging = false
			return interact.Command{}, false
		}
		if b, ok := clickButton(e.Button); ok {
			return interact.Command{Kind: interact.CmdClick, Button: b, Ctrl: e.Ctrl}, true
		}
	case input.EventMouseWheel:
		cam.HandleZoom(e.Wheel)
	}
	return interact.Command{}, false
}

func clickButton(b uint8) (interact.Button, bool) {
	switch b {
	case input.ButtonLeft:
		return interact.ButtonLeft, true
	case input.ButtonMiddle:
		return interact.ButtonMiddle, true
	case input.ButtonRight:
		return interact.ButtonRight, true
	}
	return 0, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
