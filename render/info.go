package render

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/imgvu/vu/gpu"
)

// noContent marks a bounding box coordinate that no pixel has tightened
// yet. Top and left count down from here, right and bottom count up
// from zero.
const noContent = math.MaxUint32

// number of u32 words in the gpu-side ImageInfo record
const infoWords = 7

// ImageInfo describes how an image uses its alpha channel, plus the
// bounding box of its visible content. It is produced by the
// preprocessing pass through an atomic reduction over all pixels.
type ImageInfo struct {
	// true if any pixel has alpha below 1
	UsesAlpha bool

	// true if any pixel has alpha strictly between 0 and 1
	UsesPartialAlpha bool

	// true if any pixel has an rgb channel above its alpha value,
	// which is impossible for correctly premultiplied data
	KnownStraight bool

	// inclusive pixel bounds of all content, i.e. of every pixel that
	// is not both fully transparent and black
	Top, Right, Bottom, Left uint32
}

// ContentBounds returns the inclusive bounding box of the image's
// visible content. ok is false for an image without any content, whose
// box was never tightened from its inverted initial extremes.
func (i ImageInfo) ContentBounds() (bounds gpu.Rect2u, ok bool) {
	if i.Top == noContent {
		return gpu.Rect2u{}, false
	}

	return gpu.Rect2u{
		Min: gpu.Vec2u{i.Left, i.Top},
		Max: gpu.Vec2u{i.Right, i.Bottom},
	}, true
}

// imageInfoInit is the buffer content the reduction starts from:
// flags cleared, bounding box at its inverted extremes.
func imageInfoInit() [infoWords]uint32 {
	return [infoWords]uint32{
		0, 0, 0, // uses_alpha, uses_partial_alpha, known_straight
		noContent, // top
		0,         // right
		0,         // bottom
		noContent, // left
	}
}

// decodeImageInfo parses the raw readback of the gpu-side record. The
// word order must match the ImageInfo struct in preprocess.wgsl.
func decodeImageInfo(raw []byte) ImageInfo {
	var words [infoWords]uint32
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}

	return ImageInfo{
		UsesAlpha:        words[0] != 0,
		UsesPartialAlpha: words[1] != 0,
		KnownStraight:    words[2] != 0,
		Top:              words[3],
		Right:            words[4],
		Bottom:           words[5],
		Left:             words[6],
	}
}

// Analyze is the cpu reference of the preprocessing reduction. It must
// agree with preprocess.wgsl for every input; the tests pin the two
// implementations together through this function.
func Analyze(img *image.NRGBA) ImageInfo {
	info := ImageInfo{
		Top:    noContent,
		Left:   noContent,
		Right:  0,
		Bottom: 0,
	}

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)

			px := uint32(x - bounds.Min.X)
			py := uint32(y - bounds.Min.Y)

			if c.A != 0xff {
				info.UsesAlpha = true
			}
			if c.A > 0 && c.A < 0xff {
				info.UsesPartialAlpha = true
			}
			// The gpu sees the srgb texture decoded to linear values,
			// so the comparison against alpha happens in linear space.
			a := float32(c.A) / 0xff
			if srgbToLinear(c.R) > a || srgbToLinear(c.G) > a || srgbToLinear(c.B) > a {
				info.KnownStraight = true
			}

			if c.A != 0 || c.R != 0 || c.G != 0 || c.B != 0 {
				info.Left = min(info.Left, px)
				info.Top = min(info.Top, py)
				info.Right = max(info.Right, px)
				info.Bottom = max(info.Bottom, py)
			}
		}
	}

	return info
}

// Premultiply converts a straight alpha color into the premultiplied
// form the rest of the pipeline carries. Mirrors the texture write at
// the end of preprocess.wgsl.
func Premultiply(straight Color) Color {
	a := straight[3]

	return Color{straight[0] * a, straight[1] * a, straight[2] * a, a}
}

func srgbToLinear(v uint8) float32 {
	c := float64(v) / 0xff
	if c <= 0.04045 {
		return float32(c / 12.92)
	}

	return float32(math.Pow((c+0.055)/1.055, 2.4))
}

func asBytes(words [infoWords]uint32) []byte {
	buf := make([]byte, 0, infoWords*4)
	for _, w := range words {
		buf = binary.LittleEndian.AppendUint32(buf, w)
	}

	return buf
}
