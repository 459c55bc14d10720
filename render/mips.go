package render

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/imgvu/vu/gpu"
)

//go:embed mips.wgsl
var mipsShaderSource string

// must match mips.wgsl
const mipWorkgroupSize = 8

// LevelCount returns the number of mip levels of a full pyramid for
// the given base dimensions, the 1x1 terminal level included.
func LevelCount(width, height uint32) uint32 {
	levels := uint32(1)
	for width > 1 || height > 1 {
		width = halve(width)
		height = halve(height)
		levels++
	}

	return levels
}

// LevelSize returns the dimensions of a mip level. Dimensions shrink
// by a true half per level, rounding up on odd sizes so no texel is
// ever dropped, and collapse to one once reached.
func LevelSize(width, height, level uint32) (uint32, uint32) {
	for range level {
		width = halve(width)
		height = halve(height)
	}

	return width, height
}

func halve(extent uint32) uint32 {
	if extent <= 1 {
		return 1
	}

	return (extent + 1) / 2
}

// axisKernel is the cpu reference of the per-axis reduction kernel in
// mips.wgsl: one tap for a collapsed axis, a half/half box for even
// extents and a triangular three tap filter for odd ones. The tests
// pin the shader's semantics through this function.
func axisKernel(src, dst uint32) (weights [3]float32, taps int) {
	switch {
	case src == 1:
		return [3]float32{1, 0, 0}, 1

	case src%2 == 0:
		return [3]float32{0.5, 0.5, 0}, 2

	default:
		n := float32(dst)
		w := n / (2*n + 1)
		return [3]float32{w, w, 1 - 2*w}, 3
	}
}

// MipGenerator builds the full mip pyramid of a premultiplied base
// texture, one compute dispatch per level transition.
type MipGenerator struct {
	ctx      *gpu.Context
	pipeline *wgpu.ComputePipeline
}

func NewMipGenerator(ctx *gpu.Context) (*MipGenerator, error) {
	shader, err := ctx.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "mips.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: mipsShaderSource},
	})
	if err != nil {
		return nil, fmt.Errorf("compile mip shader: %w", err)
	}

	defer shader.Release()

	pipeline, err := ctx.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Downsample",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: "downsample",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build mip pipeline: %w", err)
	}

	return &MipGenerator{ctx: ctx, pipeline: pipeline}, nil
}

// Generate fills levels 1..N of chain from its level 0. Each level is
// encoded as its own compute pass; the pass boundary is the execution
// barrier that makes level L's writes visible before level L+1 reads
// them. The whole chain is submitted as one command buffer.
func (g *MipGenerator) Generate(chain *gpu.Texture) error {
	levels := chain.MipLevelCount()
	if levels <= 1 {
		return nil
	}

	slog.Debug("Generate mip pyramid",
		slog.Int("width", int(chain.Width())),
		slog.Int("height", int(chain.Height())),
		slog.Int("levels", int(levels)),
	)

	layout := g.pipeline.GetBindGroupLayout(0)
	defer layout.Release()

	encoder, err := g.ctx.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}

	defer encoder.Release()

	for level := uint32(1); level < levels; level++ {
		srcView, err := chain.LevelView(level - 1)
		if err != nil {
			return err
		}

		dstView, err := chain.LevelView(level)
		if err != nil {
			return err
		}

		bindGroup, err := g.ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Downsample.%d", level),
			Layout: layout,
			Entries: []wgpu.BindGroupEntry{
				{
					Binding:     0,
					TextureView: srcView,
				},
				{
					Binding:     1,
					TextureView: dstView,
				},
			},
		})
		if err != nil {
			return fmt.Errorf("create bind group for level %d: %w", level, err)
		}

		width, height := LevelSize(chain.Width(), chain.Height(), level)

		pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{
			Label: fmt.Sprintf("DownsamplePass.%d", level),
		})
		pass.SetPipeline(g.pipeline)
		pass.SetBindGroup(0, bindGroup, nil)
		pass.DispatchWorkgroups(
			dispatchSize(width, mipWorkgroupSize),
			dispatchSize(height, mipWorkgroupSize),
			1,
		)
		if err := pass.End(); err != nil {
			bindGroup.Release()
			return fmt.Errorf("end downsample pass for level %d: %w", level, err)
		}

		pass.Release()
		bindGroup.Release()
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish command encoder: %w", err)
	}

	defer cmd.Release()

	g.ctx.Submit(cmd)

	return nil
}

func (g *MipGenerator) Release() {
	g.pipeline.Release()
}
