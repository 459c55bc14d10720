package render

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/imgvu/vu/gpu"
)

//go:embed display.wgsl
var displayShaderSource string

// DisplaySettings is the per-frame uniform of the display pass. It is
// rebuilt every frame from the current window size, zoom state and
// toggles. Layout and field order must match display.wgsl.
type DisplaySettings struct {
	// letterbox rectangle in framebuffer pixels
	MinFB gpu.Vec2f
	MaxFB gpu.Vec2f

	// uv range of the image to show (zoom region)
	MinUV gpu.Vec2f
	MaxUV gpu.Vec2f

	// uv range of the active selection, both equal when inactive
	MinSelection gpu.Vec2f
	MaxSelection gpu.Vec2f

	SelectionColor Color
	CheckerboardA  Color
	CheckerboardB  Color

	// checkerboard cell size in screen pixels
	CheckerboardRes uint32

	ForceLinear uint32
	UseMipmaps  uint32

	_ uint32 // pad to a 16 byte multiple, as the uniform layout requires
}

// Renderer draws the composited frame. One instance exists per gpu
// context; the bound image changes when a new image finishes loading.
type Renderer struct {
	ctx *gpu.Context

	pipeline *wgpu.RenderPipeline
	settings *wgpu.Buffer

	bindGroup *wgpu.BindGroup
}

func NewRenderer(ctx *gpu.Context, surfaceFormat wgpu.TextureFormat) (*Renderer, error) {
	var settings DisplaySettings
	settingsBuf, err := ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "DisplaySettings",
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:  uint64(len(gpu.AsByteSlice(&settings))),
	})
	if err != nil {
		return nil, fmt.Errorf("create display settings buffer: %w", err)
	}

	shader, err := ctx.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "display.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: displayShaderSource},
	})
	if err != nil {
		settingsBuf.Release()
		return nil, fmt.Errorf("compile display shader: %w", err)
	}

	defer shader.Release()

	pipeline, err := ctx.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Display",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vertex",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fragment",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    surfaceFormat,
					Blend:     &wgpu.BlendStateReplace,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleStrip,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xffffffff,
		},
	})
	if err != nil {
		settingsBuf.Release()
		return nil, fmt.Errorf("build display pipeline: %w", err)
	}

	return &Renderer{
		ctx:      ctx,
		pipeline: pipeline,
		settings: settingsBuf,
	}, nil
}

// BindImage points the renderer at a new mip chain. Must be called
// once before the first Render and again whenever the displayed image
// is replaced.
func (r *Renderer) BindImage(chain *gpu.Texture) error {
	sampler, err := gpu.CachedSampler(r.ctx.Device, wgpu.SamplerDescriptor{
		Label:         "Display.Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}

	layout := r.pipeline.GetBindGroupLayout(0)
	defer layout.Release()

	bindGroup, err := r.ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "DisplayBindGroup",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Sampler: sampler,
			},
			{
				Binding:     1,
				TextureView: chain.View(),
			},
			{
				Binding: 2,
				Buffer:  r.settings,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create display bind group: %w", err)
	}

	if r.bindGroup != nil {
		r.bindGroup.Release()
	}

	r.bindGroup = bindGroup

	return nil
}

// Render encodes one display pass into target and submits it.
func (r *Renderer) Render(target *wgpu.TextureView, settings *DisplaySettings) error {
	if r.bindGroup == nil {
		return fmt.Errorf("no image bound")
	}

	if err := r.ctx.WriteBuffer(r.settings, 0, gpu.AsByteSlice(settings)); err != nil {
		return fmt.Errorf("update display settings: %w", err)
	}

	encoder, err := r.ctx.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}

	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "DisplayPass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       target,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{},
			},
		},
	})

	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, r.bindGroup, nil)
	pass.Draw(4, 1, 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("end display pass: %w", err)
	}

	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish command encoder: %w", err)
	}

	defer cmd.Release()

	r.ctx.Submit(cmd)

	return nil
}

func (r *Renderer) Release() {
	if r.bindGroup != nil {
		r.bindGroup.Release()
		r.bindGroup = nil
	}

	r.pipeline.Release()
	r.settings.Release()
}
