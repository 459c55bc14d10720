package render

// The adaptive pixel-art filter blends between linear and nearest
// neighbour sampling based on how many source texels cover one output
// pixel. The functions here are the scalar core of that filter; the
// fragment shader in display.wgsl mirrors them exactly and both sides
// must be kept in sync.

// MinSmoothness is the lower bound of the filter's smoothness factor.
// Even when a single texel covers many screen pixels a small amount of
// interpolation remains at the texel edges, which keeps the filter free
// of hard discontinuities.
const MinSmoothness = 0.25

// Smoothness maps the on-screen texel density to the interpolation
// factor of the filter. A density of one texel per pixel or more means
// fully linear sampling.
func Smoothness(texelsPerPixel float32) float32 {
	return clamp(texelsPerPixel, MinSmoothness, 1)
}

// SnapTexelCoord remaps the fractional part of a texel coordinate so
// that sampling is pulled towards the texel center when zoomed in.
//
// At a density of one texel per pixel or more the fraction passes
// through unchanged (fully linear sampling). As the density approaches
// zero the result converges towards 0.5, the texel center, leaving only
// a narrow linear transition band at the texel edges. The remap is
// symmetric around 0.5 and continuous at both texel edges, so adjacent
// texels never show a seam.
func SnapTexelCoord(frac, texelsPerPixel float32) float32 {
	smoothness := Smoothness(texelsPerPixel)

	// guard against a configured zero floor
	if smoothness == 0 {
		return 0.5
	}

	if frac < 0.5 {
		return min(frac/smoothness, 0.5)
	}

	return max(1-(1-frac)/smoothness, 0.5)
}

// Color is a premultiplied rgba color, the format every texture and
// compositing step of the pipeline works in.
type Color [4]float32

// Over composites the premultiplied src over background.
func Over(src, background Color) Color {
	f := 1 - src[3]

	return Color{
		src[0] + f*background[0],
		src[1] + f*background[1],
		src[2] + f*background[2],
		src[3] + f*background[3],
	}
}

// CheckerColor returns the checkerboard matte color behind the screen
// pixel at (x, y), alternating between a and b in cells of res pixels.
func CheckerColor(x, y uint32, res uint32, a, b Color) Color {
	if (x/res)%2 == (y/res)%2 {
		return a
	}

	return b
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
