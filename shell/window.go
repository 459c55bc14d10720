// Package shell owns the borderless window the viewer renders into.
// It wraps glfw: surface creation for wgpu, input state, cursor
// shapes, and the manual move/resize a window without decorations
// needs.
package shell

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/profile"
)

type Window struct {
	win   *glfw.Window
	prof  interface{ Stop() }
	input InputState

	cursors map[glfw.StandardCursor]*glfw.Cursor
}

// NewWindow creates the viewer window: borderless, transparent where
// the compositor allows it, kept on top.
func NewWindow(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Decorated, glfw.False)
	glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)
	glfw.WindowHint(glfw.Floating, glfw.True)

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &Window{
		win:     window,
		cursors: map[glfw.StandardCursor]*glfw.Cursor{},
	}

	if os.Getenv("VU_PROFILE") == "1" {
		w.prof = profile.Start(profile.CPUProfile)
	}

	configureInput(window, &w.input)

	return w, nil
}

func (w *Window) GetSize() (uint32, uint32) {
	width, height := w.win.GetSize()
	return uint32(width), uint32(height)
}

func (w *Window) GetPos() (int, int) {
	return w.win.GetPos()
}

func (w *Window) SetPos(x, y int) {
	w.win.SetPos(x, y)
}

func (w *Window) SetSize(width, height int) {
	w.win.SetSize(width, height)
}

// SetAspectRatio forces the window manager to keep the window at the
// given aspect ratio during interactive resizes.
func (w *Window) SetAspectRatio(numer, denom int) {
	w.win.SetAspectRatio(numer, denom)
}

func (w *Window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.win)
}

func (w *Window) Close() {
	w.win.SetShouldClose(true)
}

func (w *Window) Terminate() {
	if w.prof != nil {
		w.prof.Stop()
	}

	w.win.Destroy()
	glfw.Terminate()
}

type Cursor int

const (
	CursorArrow Cursor = iota
	CursorHand
	CursorCrosshair
	CursorHResize
	CursorVResize
)

func (w *Window) SetCursor(cursor Cursor) {
	var shape glfw.StandardCursor

	switch cursor {
	case CursorHand:
		shape = glfw.HandCursor
	case CursorCrosshair:
		shape = glfw.CrosshairCursor
	case CursorHResize:
		shape = glfw.HResizeCursor
	case CursorVResize:
		shape = glfw.VResizeCursor
	default:
		shape = glfw.ArrowCursor
	}

	if w.cursors[shape] == nil {
		w.cursors[shape] = glfw.CreateStandardCursor(shape)
	}

	w.win.SetCursor(w.cursors[shape])
}

// Run drives the event loop until the window is closed. render is
// called once per frame; it receives a function that polls events and
// returns the input state of this frame.
func (w *Window) Run(render func(input UpdateInputState) error) error {
	var updateInputState UpdateInputState = func() InputState {
		w.input.nextTick()
		glfw.PollEvents()
		return w.input
	}

	for !w.win.ShouldClose() {
		if err := render(updateInputState); err != nil {
			return err
		}
	}

	return nil
}

func configureInput(window *glfw.Window, input *InputState) {
	window.SetKeyCallback(func(_win *glfw.Window, glfwKey glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}

		key, ok := glfwToKey[glfwKey]
		if !ok {
			return
		}

		switch action {
		case glfw.Press:
			input.Keys.press(key)

		case glfw.Release:
			input.Keys.release(key)
		}
	})

	window.SetMouseButtonCallback(func(_win *glfw.Window, btn glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		button := MouseButton(btn)

		switch action {
		case glfw.Press:
			input.Mouse.press(button)
		case glfw.Release:
			input.Mouse.release(button)
		}
	})

	window.SetCursorPosCallback(func(_win *glfw.Window, xpos float64, ypos float64) {
		input.Mouse.CursorX = float32(xpos)
		input.Mouse.CursorY = float32(ypos)
	})

	window.SetCursorEnterCallback(func(_win *glfw.Window, entered bool) {
		input.Mouse.Entered = entered
	})
}
