package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
		mods  sdl.Keymod
		want  Event
		ok    bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, 0, Event{Type: EventQuit}, true},
		{
			"resize",
			&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 800, Data2: 600},
			0,
			Event{Type: EventWindowResize, Width: 800, Height: 600},
			true,
		},
		{
			"window focus ignored",
			&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_FOCUS_GAINED},
			0, Event{}, false,
		},
		{
			"key down with ctrl",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_H}},
			sdl.KMOD_LCTRL,
			Event{Type: EventKeyDown, Key: sdl.SCANCODE_H, Ctrl: true},
			true,
		},
		{
			"mouse move",
			&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 10, Y: 20, XRel: 3, YRel: -2},
			0,
			Event{Type: EventMouseMove, MouseX: 10, MouseY: 20, DeltaX: 3, DeltaY: -2},
			true,
		},
		{
			"left click",
			&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT, X: 5, Y: 6},
			sdl.KMOD_RCTRL,
			Event{Type: EventMouseDown, Button: ButtonLeft, MouseX: 5, MouseY: 6, Ctrl: true},
			true,
		},
		{
			"wheel",
			&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: -1},
			0,
			Event{Type: EventMouseWheel, Wheel: -1},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.event, tt.mods)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("event = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApplyTracksCursor(t *testing.T) {
	in := New()
	in.Apply(Event{Type: EventMouseDown, Button: ButtonRight, MouseX: 1, MouseY: 2})
	if x, y := in.Mouse(); x != 1 || y != 2 {
		t.Errorf("mouse = %d,%d", x, y)
	}
	in.Apply(Event{Type: EventMouseMove, MouseX: 7, MouseY: 9})
	if x, y := in.Mouse(); x != 7 || y != 9 {
		t.Errorf("mouse = %d,%d", x, y)
	}
	in.Apply(Event{Type: EventMouseWheel, Wheel: 1})
	if x, y := in.Mouse(); x != 7 || y != 9 {
		t.Errorf("wheel moved the cursor to %d,%d", x, y)
	}
	if len(in.Events()) != 3 {
		t.Errorf("events = %d, want 3", len(in.Events()))
	}
}
