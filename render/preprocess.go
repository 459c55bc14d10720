package render

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/imgvu/vu/gpu"
)

//go:embed preprocess.wgsl
var preprocessShaderSource string

// must match preprocess.wgsl
const preprocessWorkgroupSize = 16

// TextureFormat is the texel format the pipeline carries premultiplied
// colors in. The extended float range is a safety margin against
// transient filtering overshoot; the format must match the storage
// texture declarations in preprocess.wgsl and mips.wgsl, which rules
// out the srgb formats.
const TextureFormat = wgpu.TextureFormatRGBA16Float

// Preprocessor premultiplies a freshly uploaded image into the base
// level of its mip chain and computes the image's ImageInfo record.
type Preprocessor struct {
	ctx      *gpu.Context
	pipeline *wgpu.ComputePipeline
}

func NewPreprocessor(ctx *gpu.Context) (*Preprocessor, error) {
	shader, err := ctx.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "preprocess.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: preprocessShaderSource},
	})
	if err != nil {
		return nil, fmt.Errorf("compile preprocess shader: %w", err)
	}

	defer shader.Release()

	pipeline, err := ctx.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Preprocess",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: "preprocess",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build preprocess pipeline: %w", err)
	}

	return &Preprocessor{ctx: ctx, pipeline: pipeline}, nil
}

// Run premultiplies source into mip level 0 of dest and returns the
// reduced ImageInfo. It blocks until the gpu has finished the pass and
// the record has been read back, so on return dest level 0 is fully
// written. Both textures must have the same dimensions.
func (p *Preprocessor) Run(source, dest *gpu.Texture) (ImageInfo, error) {
	initial := imageInfoInit()
	infoBuf, err := p.ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "ImageInfo",
		Contents: asBytes(initial),
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return ImageInfo{}, fmt.Errorf("create image info buffer: %w", err)
	}

	defer infoBuf.Release()

	staging, err := p.ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ImageInfo.Readback",
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
		Size:  infoWords * 4,
	})
	if err != nil {
		return ImageInfo{}, fmt.Errorf("create readback buffer: %w", err)
	}

	defer staging.Release()

	destView, err := dest.LevelView(0)
	if err != nil {
		return ImageInfo{}, err
	}

	layout := p.pipeline.GetBindGroupLayout(0)
	defer layout.Release()

	bindGroup, err := p.ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "PreprocessBindGroup",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding:     0,
				TextureView: source.View(),
			},
			{
				Binding:     1,
				TextureView: destView,
			},
			{
				Binding: 2,
				Buffer:  infoBuf,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return ImageInfo{}, fmt.Errorf("create preprocess bind group: %w", err)
	}

	defer bindGroup.Release()

	encoder, err := p.ctx.CreateCommandEncoder(nil)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("create command encoder: %w", err)
	}

	defer encoder.Release()

	pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: "PreprocessPass"})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(
		dispatchSize(source.Width(), preprocessWorkgroupSize),
		dispatchSize(source.Height(), preprocessWorkgroupSize),
		1,
	)
	if err := pass.End(); err != nil {
		return ImageInfo{}, fmt.Errorf("end preprocess pass: %w", err)
	}

	pass.Release()

	if err := encoder.CopyBufferToBuffer(infoBuf, 0, staging, 0, infoWords*4); err != nil {
		return ImageInfo{}, fmt.Errorf("copy image info to readback buffer: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("finish command encoder: %w", err)
	}

	defer cmd.Release()

	p.ctx.Submit(cmd)

	// block until the record is complete; no reader may observe a
	// partially reduced record
	var mapErr error
	err = staging.MapAsync(wgpu.MapModeRead, 0, infoWords*4, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("map readback buffer: status %v", status)
		}
	})
	if err != nil {
		return ImageInfo{}, fmt.Errorf("map readback buffer: %w", err)
	}

	p.ctx.Device.Poll(true, nil)

	if mapErr != nil {
		return ImageInfo{}, mapErr
	}

	info := decodeImageInfo(staging.GetMappedRange(0, infoWords*4))
	staging.Unmap()

	return info, nil
}

func (p *Preprocessor) Release() {
	p.pipeline.Release()
}

func dispatchSize(pixels, workgroup uint32) uint32 {
	return (pixels + workgroup - 1) / workgroup
}
