package vulkan

import (
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-models/engine/renderer"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

type hostBuffer struct{}

func (hostBuffer) Destroy()                    {}
func (hostBuffer) Size() uint64                { return 64 }
func (hostBuffer) Usage() metadata.BufferUsage { return metadata.BufferUsageUniform }

func TestCreateResourceGroupRejectsInvalidEntries(t *testing.T) {
	vb := &Backend{context: &VulkanContext{}}
	uniform := &VulkanResourceGroupLayout{Types: []vk.DescriptorType{vk.DescriptorTypeUniformBuffer}}

	tests := []struct {
		name   string
		layout metadata.ResourceGroupLayout
		entry  renderer.ResourceGroupEntry
	}{
		{"foreign layout", struct{}{}, renderer.ResourceGroupEntry{Buffer: hostBuffer{}}},
		{"foreign buffer", uniform, renderer.ResourceGroupEntry{Buffer: hostBuffer{}}},
		{"destroyed buffer", uniform, renderer.ResourceGroupEntry{Buffer: &VulkanBuffer{}}},
		{"missing buffer", uniform, renderer.ResourceGroupEntry{}},
		{"binding out of range", uniform, renderer.ResourceGroupEntry{Binding: 1, Buffer: hostBuffer{}}},
		{
			"unsupported descriptor type",
			&VulkanResourceGroupLayout{Types: []vk.DescriptorType{vk.DescriptorTypeStorageBuffer}},
			renderer.ResourceGroupEntry{Buffer: hostBuffer{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group, err := vb.CreateResourceGroup(&renderer.ResourceGroupDescriptor{
				Label:   tt.name,
				Layout:  tt.layout,
				Entries: []renderer.ResourceGroupEntry{tt.entry},
			})
			if err == nil || group != nil {
				t.Errorf("expected an error, got group %v", group)
			}
		})
	}
}

func TestExternalResourceGroupIsCallerOwned(t *testing.T) {
	// A set allocated outside the backend, only wrapped for binding.
	var storage byte
	external := &VulkanResourceGroup{Label: "camera", Handle: vk.DescriptorSet(unsafe.Pointer(&storage))}
	external.Destroy()
	if external.Handle == nil {
		t.Error("destroy released a descriptor set the group does not own")
	}
}
