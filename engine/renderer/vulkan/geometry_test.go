package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

func TestVertexInputDescriptions(t *testing.T) {
	binding, attributes, err := VertexInputDescriptions(0, metadata.ModelVertexLayout())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if binding.Stride != 32 {
		t.Errorf("stride = %d, want 32", binding.Stride)
	}
	if binding.InputRate != vk.VertexInputRateVertex {
		t.Errorf("input rate = %v, want per vertex", binding.InputRate)
	}

	want := []struct {
		location uint32
		format   vk.Format
		offset   uint32
	}{
		{0, vk.FormatR32g32b32Sfloat, 0},
		{1, vk.FormatR32g32Sfloat, 12},
		{2, vk.FormatR32g32b32Sfloat, 20},
	}
	if len(attributes) != len(want) {
		t.Fatalf("got %d attributes, want %d", len(attributes), len(want))
	}
	for i, w := range want {
		got := attributes[i]
		if got.Location != w.location || got.Format != w.format || got.Offset != w.offset || got.Binding != 0 {
			t.Errorf("attribute %d = %+v, want location %d format %v offset %d", i, got, w.location, w.format, w.offset)
		}
	}
}

func TestVertexInputDescriptionsInstanceStep(t *testing.T) {
	layout := metadata.VertexBufferLayout{
		ArrayStride: 12,
		StepMode:    metadata.VertexStepModeInstance,
		Attributes:  []metadata.VertexAttribute{{ShaderLocation: 5, Format: metadata.VertexFormatFloat3}},
	}
	binding, attributes, err := VertexInputDescriptions(1, layout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if binding.InputRate != vk.VertexInputRateInstance || binding.Binding != 1 {
		t.Errorf("binding = %+v, want per instance at binding 1", binding)
	}
	if attributes[0].Binding != 1 || attributes[0].Location != 5 {
		t.Errorf("attribute = %+v", attributes[0])
	}
}

func TestVertexInputDescriptionsUnknownFormat(t *testing.T) {
	layout := metadata.VertexBufferLayout{
		Attributes: []metadata.VertexAttribute{{Format: metadata.VertexFormat(42)}},
	}
	if _, _, err := VertexInputDescriptions(0, layout); err == nil {
		t.Fatal("expected an error for an unknown vertex format")
	}
}

func TestTextureFormat(t *testing.T) {
	tests := []struct {
		use  metadata.TextureUse
		srgb bool
		want vk.Format
	}{
		{metadata.TextureUseMapDiffuse, true, vk.FormatR8g8b8a8Srgb},
		{metadata.TextureUseMapDiffuse, false, vk.FormatR8g8b8a8Unorm},
		{metadata.TextureUseMapNormal, true, vk.FormatR8g8b8a8Unorm},
	}
	for _, tt := range tests {
		if got := textureFormat(tt.use, tt.srgb); got != tt.want {
			t.Errorf("textureFormat(%s, %v) = %v, want %v", tt.use, tt.srgb, got, tt.want)
		}
	}
}

func TestSamplerModes(t *testing.T) {
	if samplerFilter(metadata.ParseTextureFilter("nearest")) != vk.FilterNearest {
		t.Error("nearest filter not mapped")
	}
	if samplerFilter(metadata.ParseTextureFilter("linear")) != vk.FilterLinear {
		t.Error("linear filter not mapped")
	}
	modes := map[string]vk.SamplerAddressMode{
		"repeat":          vk.SamplerAddressModeRepeat,
		"mirrored_repeat": vk.SamplerAddressModeMirroredRepeat,
		"clamp_to_edge":   vk.SamplerAddressModeClampToEdge,
		"clamp_to_border": vk.SamplerAddressModeClampToBorder,
	}
	for name, want := range modes {
		if got := samplerAddressMode(metadata.ParseTextureRepeat(name)); got != want {
			t.Errorf("address mode %s = %v, want %v", name, got, want)
		}
	}
}

func TestBufferUsageFlags(t *testing.T) {
	got := vulkanBufferUsage(metadata.BufferUsageVertex | metadata.BufferUsageIndex)
	want := vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit | vk.BufferUsageIndexBufferBit)
	if got != want {
		t.Errorf("usage = 0x%x, want 0x%x", got, want)
	}
	if vulkanBufferUsage(metadata.BufferUsageCopySrc) != vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit) {
		t.Error("copy source usage not mapped")
	}
	if vulkanBufferUsage(metadata.BufferUsageUniform) != vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit) {
		t.Error("uniform usage not mapped")
	}
}

func TestFindFirstZeroInByteArray(t *testing.T) {
	tests := []struct {
		in   []byte
		want int
	}{
		{[]byte("abc\x00def"), 3},
		{[]byte("\x00"), 0},
		{[]byte("abc"), 3},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := FindFirstZeroInByteArray(tt.in); got != tt.want {
			t.Errorf("FindFirstZeroInByteArray(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
