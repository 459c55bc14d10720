package app

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestPickSurfaceConfig(t *testing.T) {
	tests := []struct {
		name              string
		caps              wgpu.SurfaceCapabilities
		wantErr           bool
		wantAlphaMode     wgpu.CompositeAlphaMode
		wantSupportsAlpha bool
	}{
		{
			name:    "no formats",
			caps:    wgpu.SurfaceCapabilities{AlphaModes: []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque}},
			wantErr: true,
		},
		{
			name:    "no alpha modes",
			caps:    wgpu.SurfaceCapabilities{Formats: []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb}},
			wantErr: true,
		},
		{
			name: "premultiplied preferred",
			caps: wgpu.SurfaceCapabilities{
				Formats: []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb},
				AlphaModes: []wgpu.CompositeAlphaMode{
					wgpu.CompositeAlphaModeOpaque,
					wgpu.CompositeAlphaModePremultiplied,
				},
			},
			wantAlphaMode:     wgpu.CompositeAlphaModePremultiplied,
			wantSupportsAlpha: true,
		},
		{
			name: "inherit counts as alpha support",
			caps: wgpu.SurfaceCapabilities{
				Formats: []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb},
				AlphaModes: []wgpu.CompositeAlphaMode{
					wgpu.CompositeAlphaModeOpaque,
					wgpu.CompositeAlphaModeInherit,
				},
			},
			wantAlphaMode:     wgpu.CompositeAlphaModeInherit,
			wantSupportsAlpha: true,
		},
		{
			name: "opaque only falls back without alpha",
			caps: wgpu.SurfaceCapabilities{
				Formats:    []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb},
				AlphaModes: []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque},
			},
			wantAlphaMode:     wgpu.CompositeAlphaModeOpaque,
			wantSupportsAlpha: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, supportsAlpha, err := pickSurfaceConfig(tt.caps)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error for degenerate capabilities")
				}
				return
			}

			if err != nil {
				t.Fatalf("pickSurfaceConfig: %v", err)
			}

			if config.AlphaMode != tt.wantAlphaMode {
				t.Errorf("alpha mode = %v, want %v", config.AlphaMode, tt.wantAlphaMode)
			}
			if supportsAlpha != tt.wantSupportsAlpha {
				t.Errorf("supportsAlpha = %v, want %v", supportsAlpha, tt.wantSupportsAlpha)
			}
			if config.Format != tt.caps.Formats[0] {
				t.Errorf("format = %v, want the first supported format", config.Format)
			}
		})
	}
}
