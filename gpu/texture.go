package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Texture wraps a wgpu.Texture together with an identity view covering
// all mip levels. Views of individual levels are created on demand and
// cached, they are needed when a pass writes one level while reading
// another.
type Texture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView

	levelViews []*wgpu.TextureView

	format wgpu.TextureFormat
	width  uint32
	height uint32
	levels uint32
}

type NewTextureOptions struct {
	Format wgpu.TextureFormat
	Width  uint32
	Height uint32

	// Number of mip levels to allocate, zero means one.
	MipLevelCount uint32

	Usage wgpu.TextureUsage
	Label string
}

func NewTexture(ctx *Context, opts NewTextureOptions) (*Texture, error) {
	if opts.MipLevelCount == 0 {
		opts.MipLevelCount = 1
	}

	if opts.Usage == 0 {
		opts.Usage = wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst
	}

	desc := &wgpu.TextureDescriptor{
		Label:         opts.Label,
		Format:        opts.Format,
		SampleCount:   1,
		MipLevelCount: opts.MipLevelCount,

		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              opts.Width,
			Height:             opts.Height,
			DepthOrArrayLayers: 1,
		},

		Usage: opts.Usage,
	}

	texture, err := ctx.Device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", opts.Label, err)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()

		return nil, fmt.Errorf("create texture view %q: %w", opts.Label, err)
	}

	return &Texture{
		texture:    texture,
		view:       view,
		levelViews: make([]*wgpu.TextureView, opts.MipLevelCount),

		format: desc.Format,
		width:  opts.Width,
		height: opts.Height,
		levels: opts.MipLevelCount,
	}, nil
}

func (t *Texture) Width() uint32 {
	return t.width
}

func (t *Texture) Height() uint32 {
	return t.height
}

func (t *Texture) Size() Vec2u {
	return Vec2u{t.width, t.height}
}

func (t *Texture) Format() wgpu.TextureFormat {
	return t.format
}

func (t *Texture) MipLevelCount() uint32 {
	return t.levels
}

// View returns a view covering the full mip chain.
func (t *Texture) View() *wgpu.TextureView {
	return t.view
}

// LevelView returns a view restricted to a single mip level.
func (t *Texture) LevelView(level uint32) (*wgpu.TextureView, error) {
	if level >= t.levels {
		return nil, fmt.Errorf("mip level %d out of range, texture has %d levels", level, t.levels)
	}

	if t.levelViews[level] != nil {
		return t.levelViews[level], nil
	}

	view, err := t.texture.CreateView(&wgpu.TextureViewDescriptor{
		Format:          t.format,
		Dimension:       wgpu.TextureViewDimension2D,
		BaseMipLevel:    level,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return nil, fmt.Errorf("create view of mip level %d: %w", level, err)
	}

	t.levelViews[level] = view

	return view, nil
}

func (t *Texture) ToWGPUTexture() *wgpu.Texture {
	return t.texture
}

// WritePixels uploads tightly packed rgba pixel data into mip level 0.
func (t *Texture) WritePixels(ctx *Context, pixels []byte) error {
	layout := &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  t.width * 4,
		RowsPerImage: t.height,
	}

	size := &wgpu.Extent3D{
		Width:              t.width,
		Height:             t.height,
		DepthOrArrayLayers: 1,
	}

	dest := &wgpu.ImageCopyTexture{
		Texture:  t.texture,
		MipLevel: 0,
		Origin:   wgpu.Origin3D{},
		Aspect:   wgpu.TextureAspectAll,
	}

	if err := ctx.WriteTexture(dest, pixels, layout, size); err != nil {
		return fmt.Errorf("copy pixel data to texture: %w", err)
	}

	return nil
}

// Release releases the texture and all views created from it. You must
// be sure to not use the texture after calling release.
func (t *Texture) Release() {
	for i, view := range t.levelViews {
		if view != nil {
			view.Release()
			t.levelViews[i] = nil
		}
	}

	t.view.Release()
	t.texture.Release()
}
