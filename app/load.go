package app

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"os"
	"time"

	// formats accepted by image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/imgvu/vu/gpu"
	"github.com/imgvu/vu/render"
)

// loadedImage is a fully preprocessed image: the premultiplied mip
// chain plus the metadata the reduction pass produced on the way.
type loadedImage struct {
	chain  *gpu.Texture
	info   render.ImageInfo
	width  uint32
	height uint32
}

func (l *loadedImage) Release() {
	l.chain.Release()
}

// decodeImage reads path into straight alpha rgba pixels. All formats
// are funneled through NRGBA so the preprocessing pass works on one
// layout.
func decodeImage(path string) (*image.NRGBA, error) {
	startTime := time.Now()

	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}

	defer fp.Close()

	decoded, format, err := image.Decode(fp)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img, ok := decoded.(*image.NRGBA)
	if !ok {
		img = image.NewNRGBA(image.Rect(0, 0, decoded.Bounds().Dx(), decoded.Bounds().Dy()))
		draw.Draw(img, img.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	}

	slog.Debug("Image decoded",
		slog.String("path", path),
		slog.String("format", format),
		slog.Int("width", img.Bounds().Dx()),
		slog.Int("height", img.Bounds().Dy()),
		slog.Int("sizeInKB", len(img.Pix)/1024),
		slog.Duration("duration", time.Since(startTime)))

	return img, nil
}

// uploadImage runs the gpu side of a load: it uploads the decoded
// pixels, premultiplies them into a fresh mip chain texture, reads the
// image metadata back and fills the remaining mip levels.
func uploadImage(ctx *gpu.Context, pre *render.Preprocessor, mips *render.MipGenerator, img *image.NRGBA) (*loadedImage, error) {
	startTime := time.Now()

	width := uint32(img.Bounds().Dx())
	height := uint32(img.Bounds().Dy())

	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image is empty")
	}

	// The pixels go in as srgb so all later passes see linear values.
	source, err := gpu.NewTexture(ctx, gpu.NewTextureOptions{
		Label:  "source",
		Width:  width,
		Height: height,
		Format: wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:  wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create source texture: %w", err)
	}

	defer source.Release()

	if err := source.WritePixels(ctx, img.Pix); err != nil {
		return nil, fmt.Errorf("upload pixels: %w", err)
	}

	chain, err := gpu.NewTexture(ctx, gpu.NewTextureOptions{
		Label:         "premultiplied",
		Width:         width,
		Height:        height,
		MipLevelCount: render.LevelCount(width, height),
		Format:        render.TextureFormat,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("create mip chain texture: %w", err)
	}

	info, err := pre.Run(source, chain)
	if err != nil {
		chain.Release()
		return nil, fmt.Errorf("preprocess image: %w", err)
	}

	if err := mips.Generate(chain); err != nil {
		chain.Release()
		return nil, fmt.Errorf("generate mipmaps: %w", err)
	}

	slog.Info("Image uploaded",
		slog.Any("info", info),
		slog.Duration("duration", time.Since(startTime)))

	return &loadedImage{
		chain:  chain,
		info:   info,
		width:  width,
		height: height,
	}, nil
}
