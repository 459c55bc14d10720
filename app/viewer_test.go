package app

import (
	"math"
	"testing"

	"github.com/imgvu/vu/gpu"
	"github.com/imgvu/vu/render"
)

// fullInfo claims content over every pixel of a width x height image.
func fullInfo(width, height uint32) render.ImageInfo {
	return render.ImageInfo{
		Top:    0,
		Left:   0,
		Right:  width - 1,
		Bottom: height - 1,
	}
}

// emptyInfo claims no content at all.
func emptyInfo() render.ImageInfo {
	return render.ImageInfo{Top: math.MaxUint32, Left: math.MaxUint32}
}

func vecNear(a, b gpu.Vec2f) bool {
	const eps = 1e-4
	return math.Abs(float64(a[0]-b[0])) < eps && math.Abs(float64(a[1]-b[1])) < eps
}

func TestResetRegionFullImage(t *testing.T) {
	v := NewViewer(200, 100, fullInfo(200, 100), true)

	minUV, maxUV := v.ZoomRegion()
	if !vecNear(minUV, gpu.Vec2f{0, 0}) || !vecNear(maxUV, gpu.Vec2f{1, 1}) {
		t.Errorf("region = %v..%v, want full image", minUV, maxUV)
	}

	if v.Aspect() != 2 {
		t.Errorf("aspect = %v, want 2", v.Aspect())
	}
}

func TestResetRegionContentBounds(t *testing.T) {
	// content is the single pixel (3, 4) of an 8x8 image
	info := render.ImageInfo{Top: 4, Left: 3, Right: 3, Bottom: 4}
	v := NewViewer(8, 8, info, true)

	minUV, maxUV := v.ZoomRegion()
	if !vecNear(minUV, gpu.Vec2f{3.0 / 8, 4.0 / 8}) || !vecNear(maxUV, gpu.Vec2f{4.0 / 8, 5.0 / 8}) {
		t.Errorf("region = %v..%v, want the (3,4) pixel", minUV, maxUV)
	}

	if v.Aspect() != 1 {
		t.Errorf("aspect = %v, want 1 for a single pixel", v.Aspect())
	}
}

func TestResetRegionEmptyImage(t *testing.T) {
	v := NewViewer(64, 32, emptyInfo(), true)

	minUV, maxUV := v.ZoomRegion()
	if !vecNear(minUV, gpu.Vec2f{0, 0}) || !vecNear(maxUV, gpu.Vec2f{1, 1}) {
		t.Errorf("region = %v..%v, want fallback to full image", minUV, maxUV)
	}
}

func TestFBCoordRange(t *testing.T) {
	v := NewViewer(200, 100, fullInfo(200, 100), true)

	tests := []struct {
		name    string
		winSize gpu.Vec2f
		wantMin gpu.Vec2f
		wantMax gpu.Vec2f
	}{
		{
			name:    "exact fit",
			winSize: gpu.Vec2f{400, 200},
			wantMin: gpu.Vec2f{0, 0},
			wantMax: gpu.Vec2f{400, 200},
		},
		{
			name:    "letterbox top and bottom",
			winSize: gpu.Vec2f{200, 200},
			wantMin: gpu.Vec2f{0, 50},
			wantMax: gpu.Vec2f{200, 150},
		},
		{
			name:    "pillarbox left and right",
			winSize: gpu.Vec2f{800, 100},
			wantMin: gpu.Vec2f{300, 0},
			wantMax: gpu.Vec2f{500, 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minFB, maxFB := v.FBCoordRange(tt.winSize)
			if !vecNear(minFB, tt.wantMin) || !vecNear(maxFB, tt.wantMax) {
				t.Errorf("range = %v..%v, want %v..%v", minFB, maxFB, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestWindowToUV(t *testing.T) {
	v := NewViewer(100, 100, fullInfo(100, 100), true)
	winSize := gpu.Vec2f{200, 200}

	tests := []struct {
		pos  gpu.Vec2f
		want gpu.Vec2f
	}{
		{gpu.Vec2f{0, 0}, gpu.Vec2f{0, 0}},
		{gpu.Vec2f{100, 100}, gpu.Vec2f{0.5, 0.5}},
		{gpu.Vec2f{200, 200}, gpu.Vec2f{1, 1}},
		{gpu.Vec2f{50, 150}, gpu.Vec2f{0.25, 0.75}},
	}

	for _, tt := range tests {
		if got := v.WindowToUV(winSize, tt.pos); !vecNear(got, tt.want) {
			t.Errorf("WindowToUV(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestWindowToUVZoomed(t *testing.T) {
	v := NewViewer(100, 100, fullInfo(100, 100), true)
	v.SetZoomRegion(gpu.Vec2f{0.5, 0.5}, gpu.Vec2f{1, 1})

	winSize := gpu.Vec2f{100, 100}

	// the window center now maps into the zoomed quarter
	if got := v.WindowToUV(winSize, gpu.Vec2f{50, 50}); !vecNear(got, gpu.Vec2f{0.75, 0.75}) {
		t.Errorf("WindowToUV(center) = %v, want {0.75 0.75}", got)
	}
}

func TestSelectionLifecycle(t *testing.T) {
	v := NewViewer(100, 100, fullInfo(100, 100), true)
	winSize := gpu.Vec2f{100, 100}

	v.UpdateCursor(winSize, gpu.Vec2f{20, 20})
	v.StartSelection()

	if !v.Selecting() {
		t.Fatalf("selection did not start")
	}

	v.UpdateCursor(winSize, gpu.Vec2f{60, 60})

	minSel, maxSel := v.SelectionRegion(winSize)
	if !vecNear(minSel, gpu.Vec2f{0.2, 0.2}) || !vecNear(maxSel, gpu.Vec2f{0.6, 0.6}) {
		t.Errorf("selection = %v..%v, want 0.2..0.6", minSel, maxSel)
	}

	cropSize, ok := v.EndSelection(winSize)
	if !ok {
		t.Fatalf("selection was not committed")
	}

	if !vecNear(cropSize, gpu.Vec2f{40, 40}) {
		t.Errorf("crop size = %v, want {40 40}", cropSize)
	}

	minUV, maxUV := v.ZoomRegion()
	if !vecNear(minUV, gpu.Vec2f{0.2, 0.2}) || !vecNear(maxUV, gpu.Vec2f{0.6, 0.6}) {
		t.Errorf("zoom region = %v..%v, want the selection", minUV, maxUV)
	}

	if v.Selecting() {
		t.Errorf("selection still active after commit")
	}
}

func TestSelectionClampedToRegion(t *testing.T) {
	v := NewViewer(100, 100, fullInfo(100, 100), true)
	winSize := gpu.Vec2f{100, 100}

	v.UpdateCursor(winSize, gpu.Vec2f{50, 50})
	v.StartSelection()

	// drag past the window edge
	v.UpdateCursor(winSize, gpu.Vec2f{150, 150})

	minSel, maxSel := v.SelectionRegion(winSize)
	if !vecNear(minSel, gpu.Vec2f{0.5, 0.5}) || !vecNear(maxSel, gpu.Vec2f{1, 1}) {
		t.Errorf("selection = %v..%v, want clamped to 0.5..1", minSel, maxSel)
	}
}

func TestEndSelectionDegenerate(t *testing.T) {
	v := NewViewer(100, 100, fullInfo(100, 100), true)
	winSize := gpu.Vec2f{100, 100}

	v.UpdateCursor(winSize, gpu.Vec2f{40, 40})
	v.StartSelection()

	// no movement, the selection has zero area
	if _, ok := v.EndSelection(winSize); ok {
		t.Errorf("zero area selection was committed")
	}

	minUV, maxUV := v.ZoomRegion()
	if !vecNear(minUV, gpu.Vec2f{0, 0}) || !vecNear(maxUV, gpu.Vec2f{1, 1}) {
		t.Errorf("zoom region changed to %v..%v", minUV, maxUV)
	}
}

func TestCycleTransparency(t *testing.T) {
	t.Run("with alpha support", func(t *testing.T) {
		v := NewViewer(10, 10, fullInfo(10, 10), true)

		want := []TransparencyMode{LightCheckerboard, DarkCheckerboard, TrueTransparency}
		for _, mode := range want {
			v.CycleTransparency()
			if v.Transparency() != mode {
				t.Fatalf("mode = %v, want %v", v.Transparency(), mode)
			}
		}
	})

	t.Run("without alpha support", func(t *testing.T) {
		v := NewViewer(10, 10, fullInfo(10, 10), false)

		if v.Transparency() != LightCheckerboard {
			t.Fatalf("initial mode = %v, want LightCheckerboard", v.Transparency())
		}

		// true transparency is skipped entirely
		want := []TransparencyMode{DarkCheckerboard, LightCheckerboard, DarkCheckerboard}
		for _, mode := range want {
			v.CycleTransparency()
			if v.Transparency() != mode {
				t.Fatalf("mode = %v, want %v", v.Transparency(), mode)
			}
		}
	})
}

func TestBuildSettings(t *testing.T) {
	v := NewViewer(100, 100, fullInfo(100, 100), true)
	winSize := gpu.Vec2f{100, 100}

	t.Run("true transparency without hover", func(t *testing.T) {
		settings := v.BuildSettings(winSize)

		if settings.CheckerboardA != (render.Color{}) || settings.CheckerboardB != (render.Color{}) {
			t.Errorf("matte not fully transparent: %v, %v", settings.CheckerboardA, settings.CheckerboardB)
		}
	})

	t.Run("true transparency with hover", func(t *testing.T) {
		v.UpdateCursor(winSize, gpu.Vec2f{50, 50})
		defer v.CursorLeft()

		settings := v.BuildSettings(winSize)

		if settings.CheckerboardA[3] != checkerboardHoverAlpha {
			t.Errorf("hover matte alpha = %v, want %v", settings.CheckerboardA[3], checkerboardHoverAlpha)
		}

		// premultiplied, the gray level carries the alpha
		want := float32(checkerboardLightA * checkerboardHoverAlpha)
		if settings.CheckerboardA[0] != want {
			t.Errorf("hover matte gray = %v, want %v", settings.CheckerboardA[0], want)
		}
	})

	t.Run("light checkerboard", func(t *testing.T) {
		v.CycleTransparency()

		settings := v.BuildSettings(winSize)

		wantA := render.Color{checkerboardLightA, checkerboardLightA, checkerboardLightA, 1}
		wantB := render.Color{checkerboardLightB, checkerboardLightB, checkerboardLightB, 1}
		if settings.CheckerboardA != wantA || settings.CheckerboardB != wantB {
			t.Errorf("matte = %v, %v, want %v, %v", settings.CheckerboardA, settings.CheckerboardB, wantA, wantB)
		}
	})

	t.Run("toggles", func(t *testing.T) {
		settings := v.BuildSettings(winSize)
		if settings.ForceLinear != 0 || settings.UseMipmaps != 1 {
			t.Fatalf("defaults: ForceLinear = %d, UseMipmaps = %d", settings.ForceLinear, settings.UseMipmaps)
		}

		v.ToggleFilter()
		v.ToggleMipmaps()

		settings = v.BuildSettings(winSize)
		if settings.ForceLinear != 1 || settings.UseMipmaps != 0 {
			t.Errorf("toggled: ForceLinear = %d, UseMipmaps = %d", settings.ForceLinear, settings.UseMipmaps)
		}
	})
}

func TestFittedSize(t *testing.T) {
	v := NewViewer(200, 100, fullInfo(200, 100), true)

	tests := []struct {
		name          string
		width, height uint32
		vertical      bool
		wantW, wantH  uint32
	}{
		{name: "width wins", width: 300, height: 77, wantW: 300, wantH: 150},
		{name: "height wins", width: 77, height: 100, vertical: true, wantW: 200, wantH: 100},
		{name: "rounds to nearest", width: 301, height: 0, wantW: 301, wantH: 151},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := v.FittedSize(tt.width, tt.height, tt.vertical)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FittedSize(%d, %d, %v) = (%d, %d), want (%d, %d)",
					tt.width, tt.height, tt.vertical, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestInitialWindowSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		wantW, wantH  uint32
	}{
		{name: "exact fit", width: 1280, height: 720, wantW: 1280, wantH: 720},
		{name: "large 16:9", width: 2560, height: 1440, wantW: 1280, wantH: 720},
		{name: "tall fits height first", width: 500, height: 2000, wantW: 180, wantH: 720},
		{name: "wide falls back to width", width: 4000, height: 1000, wantW: 1280, wantH: 320},
		{name: "small image never upscales", width: 100, height: 50, wantW: 100, wantH: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := initialWindowSize(tt.width, tt.height)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("initialWindowSize(%d, %d) = (%d, %d), want (%d, %d)",
					tt.width, tt.height, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResizeDirectionAt(t *testing.T) {
	winSize := gpu.Vec2f{200, 200}

	tests := []struct {
		name string
		pos  gpu.Vec2f
		want ResizeDirection
	}{
		{name: "center", pos: gpu.Vec2f{100, 100}, want: ResizeNone},
		{name: "north", pos: gpu.Vec2f{100, 5}, want: ResizeNorth},
		{name: "south", pos: gpu.Vec2f{100, 195}, want: ResizeSouth},
		{name: "east", pos: gpu.Vec2f{195, 100}, want: ResizeEast},
		{name: "west", pos: gpu.Vec2f{5, 100}, want: ResizeWest},
		{name: "north east corner", pos: gpu.Vec2f{195, 5}, want: ResizeNorthEast},
		{name: "north west corner", pos: gpu.Vec2f{5, 5}, want: ResizeNorthWest},
		{name: "south east corner", pos: gpu.Vec2f{195, 195}, want: ResizeSouthEast},
		{name: "south west corner", pos: gpu.Vec2f{5, 195}, want: ResizeSouthWest},
		{name: "just inside the border", pos: gpu.Vec2f{16, 16}, want: ResizeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resizeDirectionAt(winSize, tt.pos); got != tt.want {
				t.Errorf("resizeDirectionAt(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}
