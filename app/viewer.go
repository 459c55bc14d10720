package app

import (
	"math"

	"github.com/imgvu/vu/gpu"
	"github.com/imgvu/vu/render"
)

// initial window bounds the image is fitted into
const winWidth = 1280
const winHeight = 720

// Width of the border around the window contents within which a drag
// resizes the window instead of moving it.
const resizeBorderWidth = 15

// Size of the checkerboard pattern cells (in screen pixels).
const checkerboardCellSize = 10

// Hovering over the window while it is displaying a transparent image
// shows the checkerboard pattern with this alpha value. Only does
// anything if the compositor composites premultiplied client surfaces.
const checkerboardHoverAlpha = 0.2

// Gray levels for the 2 checkerboard squares. Linear luminance.
const (
	checkerboardLightA = 0.75
	checkerboardLightB = 0.95
	checkerboardDarkA  = 0.01
	checkerboardDarkB  = 0.06
)

var selectionColor = render.Color{0.2, 0.5, 0.5, 0.1}

type TransparencyMode int

const (
	TrueTransparency TransparencyMode = iota
	LightCheckerboard
	DarkCheckerboard
)

func (m TransparencyMode) String() string {
	switch m {
	case TrueTransparency:
		return "TrueTransparency"
	case LightCheckerboard:
		return "LightCheckerboard"
	case DarkCheckerboard:
		return "DarkCheckerboard"
	default:
		return "Unknown"
	}
}

type FilterMode int

const (
	FilterSmart FilterMode = iota
	FilterLinear
)

func (m FilterMode) String() string {
	if m == FilterLinear {
		return "Linear"
	}

	return "Smart"
}

type ResizeDirection int

const (
	ResizeNone ResizeDirection = iota
	ResizeNorth
	ResizeNorthEast
	ResizeEast
	ResizeSouthEast
	ResizeSouth
	ResizeSouthWest
	ResizeWest
	ResizeNorthWest
)

type cursorModeKind int

const (
	modeMove cursorModeKind = iota
	modeResize
	modeSelect
)

type cursorMode struct {
	kind cursorModeKind

	// resize direction, for modeResize
	dir ResizeDirection

	// selection start in window coordinates, for modeSelect
	start gpu.Vec2f
}

// Viewer holds the per-image display state: the zoom region, the
// active selection, and the toggles. All geometry here is pure, the
// side effects (window calls, gpu passes) live in App.
type Viewer struct {
	ImageWidth  uint32
	ImageHeight uint32
	Info        render.ImageInfo

	// full image aspect ratio; never changes
	imageAspect float32

	// aspect ratio of the current zoom region
	aspect float32

	minUV gpu.Vec2f
	maxUV gpu.Vec2f

	cursor        gpu.Vec2f
	cursorPresent bool

	mode cursorMode

	transparency TransparencyMode
	filter       FilterMode
	useMipmaps   bool

	supportsAlpha bool
}

func NewViewer(width, height uint32, info render.ImageInfo, supportsAlpha bool) *Viewer {
	v := &Viewer{
		ImageWidth:    width,
		ImageHeight:   height,
		Info:          info,
		imageAspect:   float32(width) / float32(height),
		useMipmaps:    true,
		supportsAlpha: supportsAlpha,
	}

	if !supportsAlpha {
		v.transparency = LightCheckerboard
	}

	v.ResetRegion()

	return v
}

// ResetRegion zooms back out to the image's content bounds, or to the
// full image when the bounds never tightened (an image without any
// content).
func (v *Viewer) ResetRegion() {
	bounds, ok := v.Info.ContentBounds()
	if !ok {
		v.SetZoomRegion(gpu.Vec2f{0, 0}, gpu.Vec2f{1, 1})
		return
	}

	w := float32(v.ImageWidth)
	h := float32(v.ImageHeight)

	// bounds are inclusive pixel coordinates
	v.SetZoomRegion(
		gpu.Vec2f{float32(bounds.Min[0]) / w, float32(bounds.Min[1]) / h},
		gpu.Vec2f{float32(bounds.Max[0]+1) / w, float32(bounds.Max[1]+1) / h},
	)
}

// SetZoomRegion selects the uv range of the image to display and
// derives the aspect ratio the window is held at.
func (v *Viewer) SetZoomRegion(minUV, maxUV gpu.Vec2f) {
	v.minUV = minUV
	v.maxUV = maxUV

	// uvs go from 0 to 1, their native aspect ratio is 1
	size := maxUV.Sub(minUV)
	v.aspect = v.imageAspect * (size[0] / size[1])
}

func (v *Viewer) ZoomRegion() (minUV, maxUV gpu.Vec2f) {
	return v.minUV, v.maxUV
}

func (v *Viewer) Aspect() float32 {
	return v.aspect
}

// FBCoordRange returns the letterbox rectangle in framebuffer
// coordinates: the largest centered rectangle of the zoom region's
// aspect ratio that fits the window.
func (v *Viewer) FBCoordRange(winSize gpu.Vec2f) (minFB, maxFB gpu.Vec2f) {
	winAspect := winSize[0] / winSize[1]

	var x, y, w, h float32
	if v.aspect > winAspect {
		w = winSize[0]
		h = winSize[0] / v.aspect

		x = 0
		y = (winSize[1] - h) / 2
	} else {
		w = winSize[1] * v.aspect
		h = winSize[1]

		x = (winSize[0] - w) / 2
		y = 0
	}

	return gpu.Vec2f{x, y}, gpu.Vec2f{x + w, y + h}
}

// WindowToUV maps a window position into image uv space, taking the
// letterbox rectangle and the zoom region into account.
func (v *Viewer) WindowToUV(winSize, pos gpu.Vec2f) gpu.Vec2f {
	minFB, maxFB := v.FBCoordRange(winSize)

	u := (pos[0] - minFB[0]) / (maxFB[0] - minFB[0])
	vv := (pos[1] - minFB[1]) / (maxFB[1] - minFB[1])

	return gpu.Vec2f{
		u*(v.maxUV[0]-v.minUV[0]) + v.minUV[0],
		vv*(v.maxUV[1]-v.minUV[1]) + v.minUV[1],
	}
}

// SelectionRegion returns the uv rectangle of the selection drag in
// flight, clamped to the visible zoom region. Both corners are zero
// while no selection is active.
func (v *Viewer) SelectionRegion(winSize gpu.Vec2f) (minSel, maxSel gpu.Vec2f) {
	if v.mode.kind != modeSelect || !v.cursorPresent {
		return gpu.Vec2f{}, gpu.Vec2f{}
	}

	start := v.WindowToUV(winSize, v.mode.start)
	end := v.WindowToUV(winSize, v.cursor)

	rect := gpu.RectFromPoints(start, end).
		Intersect(gpu.Rect2f{Min: v.minUV, Max: v.maxUV})

	return rect.Min, rect.Max
}

// StartSelection begins a zoom selection at the current cursor.
func (v *Viewer) StartSelection() {
	if !v.cursorPresent {
		return
	}

	v.mode = cursorMode{kind: modeSelect, start: v.cursor}
}

// EndSelection commits the selection as the new zoom region. It
// returns the size of the drag rectangle in window coordinates so the
// window can shrink onto the cropped region; ok is false for an empty
// or degenerate selection, which leaves the zoom region unchanged.
func (v *Viewer) EndSelection(winSize gpu.Vec2f) (cropSize gpu.Vec2f, ok bool) {
	minSel, maxSel := v.SelectionRegion(winSize)
	start := v.mode.start

	v.mode = cursorMode{kind: modeMove}

	size := maxSel.Sub(minSel)
	if size[0] <= 0 || size[1] <= 0 {
		return gpu.Vec2f{}, false
	}

	v.SetZoomRegion(minSel, maxSel)

	drag := gpu.RectFromPoints(start, v.cursor)

	return drag.Size(), true
}

func (v *Viewer) Selecting() bool {
	return v.mode.kind == modeSelect
}

// UpdateCursor records a cursor movement and, outside of an active
// selection, re-derives the move/resize mode from the resize border.
func (v *Viewer) UpdateCursor(winSize, pos gpu.Vec2f) {
	v.cursor = pos
	v.cursorPresent = true

	if v.mode.kind == modeSelect {
		// already doing something, don't change to move/resize mode
		return
	}

	dir := resizeDirectionAt(winSize, pos)
	if dir == ResizeNone {
		v.mode = cursorMode{kind: modeMove}
	} else {
		v.mode = cursorMode{kind: modeResize, dir: dir}
	}
}

func (v *Viewer) CursorLeft() {
	v.cursorPresent = false
}

func (v *Viewer) CycleTransparency() {
	switch v.transparency {
	case TrueTransparency:
		v.transparency = LightCheckerboard
	case LightCheckerboard:
		v.transparency = DarkCheckerboard
	case DarkCheckerboard:
		if v.supportsAlpha {
			v.transparency = TrueTransparency
		} else {
			v.transparency = LightCheckerboard
		}
	}
}

func (v *Viewer) Transparency() TransparencyMode {
	return v.transparency
}

func (v *Viewer) ToggleFilter() {
	if v.filter == FilterSmart {
		v.filter = FilterLinear
	} else {
		v.filter = FilterSmart
	}
}

func (v *Viewer) Filter() FilterMode {
	return v.filter
}

func (v *Viewer) ToggleMipmaps() {
	v.useMipmaps = !v.useMipmaps
}

func (v *Viewer) UseMipmaps() bool {
	return v.useMipmaps
}

// BuildSettings assembles the display pass uniform for the current
// frame. It has no persistent identity, the settings are derived from
// scratch every frame.
func (v *Viewer) BuildSettings(winSize gpu.Vec2f) render.DisplaySettings {
	settings := render.DisplaySettings{
		MinUV:           v.minUV,
		MaxUV:           v.maxUV,
		SelectionColor:  selectionColor,
		CheckerboardRes: checkerboardCellSize,
		ForceLinear:     boolU32(v.filter == FilterLinear),
		UseMipmaps:      boolU32(v.useMipmaps),
	}

	settings.MinFB, settings.MaxFB = v.FBCoordRange(winSize)
	settings.MinSelection, settings.MaxSelection = v.SelectionRegion(winSize)

	switch v.transparency {
	case TrueTransparency:
		if v.cursorPresent {
			// faint checkerboard while hovered, premultiplied
			a := float32(checkerboardLightA * checkerboardHoverAlpha)
			b := float32(checkerboardLightB * checkerboardHoverAlpha)
			settings.CheckerboardA = render.Color{a, a, a, checkerboardHoverAlpha}
			settings.CheckerboardB = render.Color{b, b, b, checkerboardHoverAlpha}
		}
		// fully transparent otherwise, the zero value

	case LightCheckerboard:
		settings.CheckerboardA = render.Color{checkerboardLightA, checkerboardLightA, checkerboardLightA, 1}
		settings.CheckerboardB = render.Color{checkerboardLightB, checkerboardLightB, checkerboardLightB, 1}

	case DarkCheckerboard:
		settings.CheckerboardA = render.Color{checkerboardDarkA, checkerboardDarkA, checkerboardDarkA, 1}
		settings.CheckerboardB = render.Color{checkerboardDarkB, checkerboardDarkB, checkerboardDarkB, 1}
	}

	return settings
}

// FittedSize adjusts a requested window size to the enforced aspect
// ratio, rounding to the nearest integer. When the resize is vertical
// the requested height wins, otherwise the requested width does.
func (v *Viewer) FittedSize(width, height uint32, vertical bool) (uint32, uint32) {
	if vertical {
		return uint32(math.Round(float64(v.aspect) * float64(height))), height
	}

	return width, uint32(math.Round(float64(width) / float64(v.aspect)))
}

// initialWindowSize fits the default window bounds to the image's
// aspect ratio and never exceeds the image's own dimensions.
func initialWindowSize(imageWidth, imageHeight uint32) (uint32, uint32) {
	aspect := float64(imageWidth) / float64(imageHeight)

	w := uint32(math.Round(winHeight * aspect))
	h := uint32(winHeight)

	if w > winWidth {
		w = winWidth
		h = uint32(math.Round(winWidth / aspect))
	}

	return min(w, imageWidth), min(h, imageHeight)
}

// resizeDirectionAt hit-tests the resize border. The ambiguous entries
// cover windows so small that opposite borders overlap; the result is
// mostly arbitrary there.
func resizeDirectionAt(winSize, pos gpu.Vec2f) ResizeDirection {
	n := pos[1] <= resizeBorderWidth
	e := pos[0] >= winSize[0]-resizeBorderWidth
	s := pos[1] >= winSize[1]-resizeBorderWidth
	w := pos[0] <= resizeBorderWidth

	switch {
	case !n && !e && !s && !w:
		return ResizeNone
	case n && !e && !s && !w:
		return ResizeNorth
	case n && e && !s && !w:
		return ResizeNorthEast
	case n && !e && !s && w:
		return ResizeNorthWest
	case !n && !e && s && !w:
		return ResizeSouth
	case !n && e && s && !w:
		return ResizeSouthEast
	case !n && !e && s && w:
		return ResizeSouthWest
	case !n && e && !s && !w:
		return ResizeEast
	case !n && !e && !s && w:
		return ResizeWest
	case !n && e && s && w:
		return ResizeSouth
	case !n && e && !s && w:
		return ResizeWest
	case n && !e && s:
		return ResizeSouth
	case n && e && s:
		return ResizeSouthEast
	default: // n && e && w
		return ResizeNorthEast
	}
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}

	return 0
}
