// Package app drives the viewer: it owns the window, the webgpu
// context and the frame loop, and turns input into changes of the
// Viewer state.
package app

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/imgvu/vu/gpu"
	"github.com/imgvu/vu/render"
	"github.com/imgvu/vu/shell"
)

type dragKind int

const (
	dragMove dragKind = iota
	dragResize
)

// dragState captures the window geometry at the moment a left button
// drag starts. Moves and resizes are applied relative to it.
type dragState struct {
	kind dragKind
	dir  ResizeDirection

	// screen position of the cursor at the start of the drag
	startCursor gpu.Vec2f

	startWinX, startWinY int
	startWidth           int
	startHeight          int
}

type App struct {
	win      *shell.Window
	ctx      *gpu.Context
	renderer *render.Renderer
	pre      *render.Preprocessor
	mips     *render.MipGenerator

	viewer *Viewer
	image  *loadedImage

	surfaceConfig *wgpu.SurfaceConfiguration
	supportsAlpha bool

	drag *dragState
}

// Run opens the image at path in a new window and blocks until the
// window is closed.
func Run(path string) error {
	img, err := decodeImage(path)
	if err != nil {
		return err
	}

	width := uint32(img.Bounds().Dx())
	height := uint32(img.Bounds().Dy())

	initWidth, initHeight := initialWindowSize(width, height)

	win, err := shell.NewWindow(int(initWidth), int(initHeight), filepath.Base(path))
	if err != nil {
		return err
	}

	defer win.Terminate()

	ctx, err := gpu.New(win.SurfaceDescriptor())
	if err != nil {
		return fmt.Errorf("initialize gpu: %w", err)
	}

	defer ctx.Release()

	a := &App{win: win, ctx: ctx}
	if err := a.configureSurface(win.GetSize()); err != nil {
		return err
	}

	a.renderer, err = render.NewRenderer(ctx, a.surfaceConfig.Format)
	if err != nil {
		return err
	}

	defer a.renderer.Release()

	a.pre, err = render.NewPreprocessor(ctx)
	if err != nil {
		return err
	}

	defer a.pre.Release()

	a.mips, err = render.NewMipGenerator(ctx)
	if err != nil {
		return err
	}

	defer a.mips.Release()

	a.image, err = uploadImage(ctx, a.pre, a.mips, img)
	if err != nil {
		return err
	}

	defer a.image.Release()

	if err := a.renderer.BindImage(a.image.chain); err != nil {
		return err
	}

	a.viewer = NewViewer(width, height, a.image.info, a.supportsAlpha)

	// the content bounds may have cut the image down to a different
	// aspect ratio than the window was created with
	a.applyAspect(false)

	return win.Run(a.frame)
}

// pickSurfaceConfig chooses the surface format and alpha mode from the
// adapter's capabilities. True transparency needs the compositor to
// accept premultiplied alpha; without it the viewer falls back to the
// checkerboard matte.
func pickSurfaceConfig(caps wgpu.SurfaceCapabilities) (*wgpu.SurfaceConfiguration, bool, error) {
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return nil, false, fmt.Errorf("surface reports no usable format or alpha mode")
	}

	alphaMode := caps.AlphaModes[0]
	for _, want := range []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModePremultiplied, wgpu.CompositeAlphaModeInherit} {
		if slices.Contains(caps.AlphaModes, want) {
			alphaMode = want
			break
		}
	}

	supportsAlpha := alphaMode == wgpu.CompositeAlphaModePremultiplied ||
		alphaMode == wgpu.CompositeAlphaModeInherit

	config := &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   alphaMode,
	}

	return config, supportsAlpha, nil
}

// configureSurface (re)configures the surface for the given size. The
// first call also decides the surface format and the alpha mode.
func (a *App) configureSurface(width, height uint32) error {
	if a.surfaceConfig == nil {
		caps := a.ctx.Surface.GetCapabilities(a.ctx.Adapter)

		config, supportsAlpha, err := pickSurfaceConfig(caps)
		if err != nil {
			return fmt.Errorf("configure surface: %w", err)
		}

		a.surfaceConfig = config
		a.supportsAlpha = supportsAlpha

		slog.Info("Surface configured",
			slog.Any("format", a.surfaceConfig.Format),
			slog.Any("alphaMode", a.surfaceConfig.AlphaMode),
			slog.Bool("supportsAlpha", a.supportsAlpha))
	}

	a.surfaceConfig.Width = width
	a.surfaceConfig.Height = height
	a.ctx.Surface.Configure(a.ctx.Adapter, a.ctx.Device, a.surfaceConfig)

	return nil
}

// frame runs once per iteration of the event loop: acquire a surface
// texture, handle the input since the last frame, draw, present.
func (a *App) frame(updateInput shell.UpdateInputState) error {
	width, height := a.win.GetSize()
	if width == 0 || height == 0 {
		// minimized, nothing to do
		updateInput()
		return nil
	}

	if width != a.surfaceConfig.Width || height != a.surfaceConfig.Height {
		if err := a.configureSurface(width, height); err != nil {
			return err
		}
	}

	surface, err := a.ctx.Surface.GetCurrentTexture()
	if err != nil {
		// the surface can go stale behind our back, e.g. when the
		// window manager resized us. Reconfigure and try again once.
		slog.Debug("Reconfigure lost surface", slog.Any("error", err))

		if err := a.configureSurface(a.win.GetSize()); err != nil {
			return err
		}

		surface, err = a.ctx.Surface.GetCurrentTexture()
		if err != nil {
			return fmt.Errorf("get surface texture: %w", err)
		}
	}

	defer surface.Release()

	// poll input after acquiring the texture to keep input lag low
	input := updateInput()
	a.handleInput(input)

	view, err := surface.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create surface view: %w", err)
	}

	defer view.Release()

	winSize := gpu.Vec2f{float32(width), float32(height)}
	settings := a.viewer.BuildSettings(winSize)

	if err := a.renderer.Render(view, &settings); err != nil {
		return err
	}

	a.ctx.Surface.Present()

	return nil
}

func (a *App) handleInput(input shell.InputState) {
	v := a.viewer

	if input.Keys.JustPressed[shell.KeyEscape] {
		slog.Info("Escape pressed, closing")
		a.win.Close()
		return
	}

	if input.Keys.JustPressed[shell.KeyBackspace] {
		v.ResetRegion()
		a.applyAspect(false)
	}

	if input.Keys.JustPressed[shell.KeyT] {
		v.CycleTransparency()
		slog.Debug("Transparency mode toggled", slog.Any("mode", v.Transparency()))
	}

	if input.Keys.JustPressed[shell.KeyL] {
		v.ToggleFilter()
		slog.Debug("Filter mode toggled", slog.Any("mode", v.Filter()))
	}

	if input.Keys.JustPressed[shell.KeyM] {
		v.ToggleMipmaps()
		slog.Debug("Mipmaps toggled", slog.Bool("enabled", v.UseMipmaps()))
	}

	cursor := gpu.Vec2f{input.Mouse.CursorX, input.Mouse.CursorY}
	width, height := a.win.GetSize()
	winSize := gpu.Vec2f{float32(width), float32(height)}

	if input.Mouse.Entered {
		v.UpdateCursor(winSize, cursor)
	} else {
		v.CursorLeft()
	}

	if input.Mouse.JustPressed[shell.MouseButtonMiddle] {
		v.StartSelection()
	}

	if input.Mouse.JustReleased[shell.MouseButtonMiddle] && v.Selecting() {
		if cropSize, ok := v.EndSelection(winSize); ok {
			a.win.SetSize(int(cropSize[0]), int(cropSize[1]))
			a.applyAspect(false)
		}
	}

	a.handleDrag(input, cursor)
	a.updateCursorShape()
}

// handleDrag implements moving and resizing the window by dragging,
// which a borderless window has to do itself.
func (a *App) handleDrag(input shell.InputState, cursor gpu.Vec2f) {
	if input.Mouse.JustPressed[shell.MouseButtonLeft] && !a.viewer.Selecting() {
		winX, winY := a.win.GetPos()
		width, height := a.win.GetSize()

		drag := &dragState{
			startCursor: gpu.Vec2f{float32(winX) + cursor[0], float32(winY) + cursor[1]},
			startWinX:   winX,
			startWinY:   winY,
			startWidth:  int(width),
			startHeight: int(height),
		}

		if dir := a.viewer.mode.dir; a.viewer.mode.kind == modeResize {
			drag.kind = dragResize
			drag.dir = dir
		} else {
			drag.kind = dragMove
		}

		a.drag = drag
	}

	if a.drag != nil && input.Mouse.Pressed[shell.MouseButtonLeft] {
		winX, winY := a.win.GetPos()

		// cursor position in screen coordinates, usable across moves
		// of the window's own origin
		screen := gpu.Vec2f{float32(winX) + cursor[0], float32(winY) + cursor[1]}
		delta := screen.Sub(a.drag.startCursor)

		dx := int(delta[0])
		dy := int(delta[1])

		switch a.drag.kind {
		case dragMove:
			a.win.SetPos(a.drag.startWinX+dx, a.drag.startWinY+dy)

		case dragResize:
			a.applyResize(dx, dy)
		}
	}

	if input.Mouse.JustReleased[shell.MouseButtonLeft] && a.drag != nil {
		if a.drag.kind == dragResize {
			vertical := a.drag.dir == ResizeNorth || a.drag.dir == ResizeSouth
			a.applyAspect(vertical)
		}

		a.drag = nil
	}
}

// applyResize resizes the window so that the dragged border follows
// the cursor. Dragging the north or west border also moves the window
// to keep the opposite border fixed.
func (a *App) applyResize(dx, dy int) {
	d := a.drag

	x, y := d.startWinX, d.startWinY
	width, height := d.startWidth, d.startHeight

	switch d.dir {
	case ResizeEast, ResizeNorthEast, ResizeSouthEast:
		width += dx
	case ResizeWest, ResizeNorthWest, ResizeSouthWest:
		width -= dx
		x += dx
	}

	switch d.dir {
	case ResizeSouth, ResizeSouthEast, ResizeSouthWest:
		height += dy
	case ResizeNorth, ResizeNorthEast, ResizeNorthWest:
		height -= dy
		y += dy
	}

	if width < 2*resizeBorderWidth || height < 2*resizeBorderWidth {
		return
	}

	a.win.SetPos(x, y)
	a.win.SetSize(width, height)
}

// applyAspect snaps the window size back onto the zoom region's
// aspect ratio and re-arms the window manager side enforcement.
func (a *App) applyAspect(vertical bool) {
	width, height := a.win.GetSize()

	fw, fh := a.viewer.FittedSize(width, height, vertical)
	if fw != width || fh != height {
		a.win.SetSize(int(fw), int(fh))
	}

	aspect := float64(a.viewer.Aspect())
	a.win.SetAspectRatio(int(math.Round(aspect*65536)), 65536)
}

func (a *App) updateCursorShape() {
	if !a.viewer.cursorPresent {
		return
	}

	switch a.viewer.mode.kind {
	case modeSelect:
		a.win.SetCursor(shell.CursorCrosshair)

	case modeResize:
		switch a.viewer.mode.dir {
		case ResizeEast, ResizeWest:
			a.win.SetCursor(shell.CursorHResize)
		case ResizeNorth, ResizeSouth:
			a.win.SetCursor(shell.CursorVResize)
		default:
			a.win.SetCursor(shell.CursorCrosshair)
		}

	default:
		a.win.SetCursor(shell.CursorArrow)
	}
}
