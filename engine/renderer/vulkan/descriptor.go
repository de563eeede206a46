package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

/**
 * @brief The descriptor set layout of a resource group together with the
 * descriptor type of every binding, in binding order.
 */
type VulkanResourceGroupLayout struct {
	Handle vk.DescriptorSetLayout
	Types  []vk.DescriptorType
}

/**
 * @brief A descriptor set allocated from the backend pool. A group wrapping a
 * descriptor set allocated elsewhere has no context: it can be bound, but the
 * caller keeps owning the set and Destroy leaves it alone.
 */
type VulkanResourceGroup struct {
	context *VulkanContext
	pool    vk.DescriptorPool
	Label   string
	Handle  vk.DescriptorSet
}

func (rg *VulkanResourceGroup) Destroy() {
	if rg.Handle == nil || rg.context == nil {
		return
	}
	rg.context.Locks.SafeCall(DescriptorManagement, func() error {
		vk.FreeDescriptorSets(rg.context.LogicalDevice, rg.pool, 1, &rg.Handle)
		return nil
	})
	rg.Handle = nil
}

// NewMaterialResourceGroupLayout creates the layout of a material: diffuse
// view and sampler at bindings 0 and 1, normal view and sampler at 2 and 3.
func NewMaterialResourceGroupLayout(context *VulkanContext) (*VulkanResourceGroupLayout, error) {
	types := []vk.DescriptorType{
		metadata.MaterialBindingDiffuseView:    vk.DescriptorTypeSampledImage,
		metadata.MaterialBindingDiffuseSampler: vk.DescriptorTypeSampler,
		metadata.MaterialBindingNormalView:     vk.DescriptorTypeSampledImage,
		metadata.MaterialBindingNormalSampler:  vk.DescriptorTypeSampler,
	}
	return newResourceGroupLayout(context, "material", types, vk.ShaderStageFlags(vk.ShaderStageFragmentBit))
}

// NewUniformResourceGroupLayout creates a layout with one uniform buffer at
// binding 0, visible to the vertex and fragment stages.
func NewUniformResourceGroupLayout(context *VulkanContext) (*VulkanResourceGroupLayout, error) {
	types := []vk.DescriptorType{vk.DescriptorTypeUniformBuffer}
	return newResourceGroupLayout(context, "uniform", types, vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit))
}

func newResourceGroupLayout(context *VulkanContext, name string, types []vk.DescriptorType, stages vk.ShaderStageFlags) (*VulkanResourceGroupLayout, error) {
	bindings := make([]vk.DescriptorSetLayoutBinding, len(types))
	for i, t := range types {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(i),
			DescriptorType:  t,
			DescriptorCount: 1,
			StageFlags:      stages,
		}
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	layout := &VulkanResourceGroupLayout{Types: types}
	err := context.Locks.SafeCall(DescriptorManagement, func() error {
		var handle vk.DescriptorSetLayout
		if res := vk.CreateDescriptorSetLayout(context.LogicalDevice, &layoutInfo, context.Allocator, &handle); res != vk.Success {
			return resultError("create "+name+" descriptor set layout", res)
		}
		layout.Handle = handle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func (l *VulkanResourceGroupLayout) Destroy(context *VulkanContext) {
	if l.Handle == nil {
		return
	}
	context.Locks.SafeCall(DescriptorManagement, func() error {
		vk.DestroyDescriptorSetLayout(context.LogicalDevice, l.Handle, context.Allocator)
		return nil
	})
	l.Handle = nil
}

// newMaterialDescriptorPool sizes a pool for maxSets material groups and as
// many uniform groups. Sets are freed individually when their owner is
// destroyed.
func newMaterialDescriptorPool(context *VulkanContext, maxSets uint32) (vk.DescriptorPool, error) {
	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeSampledImage, DescriptorCount: 2 * maxSets},
		{Type: vk.DescriptorTypeSampler, DescriptorCount: 2 * maxSets},
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: maxSets},
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       2 * maxSets,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}

	var pool vk.DescriptorPool
	err := context.Locks.SafeCall(DescriptorManagement, func() error {
		if res := vk.CreateDescriptorPool(context.LogicalDevice, &poolInfo, context.Allocator, &pool); res != vk.Success {
			return resultError("create material descriptor pool", res)
		}
		return nil
	})
	return pool, err
}

// CreateResourceGroup allocates a descriptor set and writes one image, sampler
// or uniform buffer descriptor per entry.
func (vb *Backend) CreateResourceGroup(desc *renderer.ResourceGroupDescriptor) (metadata.ResourceGroup, error) {
	layout, ok := desc.Layout.(*VulkanResourceGroupLayout)
	if !ok || layout == nil {
		return nil, fmt.Errorf("resource group '%s': layout %T was not created by the vulkan backend", desc.Label, desc.Layout)
	}
	if len(desc.Entries) != len(layout.Types) {
		return nil, fmt.Errorf("resource group '%s': %d entries for a layout of %d bindings", desc.Label, len(desc.Entries), len(layout.Types))
	}

	writes := make([]vk.WriteDescriptorSet, len(desc.Entries))
	for i, entry := range desc.Entries {
		if entry.Binding >= uint32(len(layout.Types)) {
			return nil, fmt.Errorf("resource group '%s': binding %d is out of range", desc.Label, entry.Binding)
		}
		writes[i] = vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstBinding:      entry.Binding,
			DescriptorCount: 1,
			DescriptorType:  layout.Types[entry.Binding],
		}
		switch layout.Types[entry.Binding] {
		case vk.DescriptorTypeSampledImage:
			view, ok := entry.TextureView.(*VulkanTextureView)
			if !ok || view.Image == nil {
				return nil, fmt.Errorf("resource group '%s': binding %d needs a texture view", desc.Label, entry.Binding)
			}
			writes[i].PImageInfo = []vk.DescriptorImageInfo{{
				ImageView:   view.Image.View,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}}
		case vk.DescriptorTypeSampler:
			sampler, ok := entry.Sampler.(*VulkanSampler)
			if !ok || sampler.Handle == nil {
				return nil, fmt.Errorf("resource group '%s': binding %d needs a sampler", desc.Label, entry.Binding)
			}
			writes[i].PImageInfo = []vk.DescriptorImageInfo{{Sampler: sampler.Handle}}
		case vk.DescriptorTypeUniformBuffer:
			buffer, ok := entry.Buffer.(*VulkanBuffer)
			if !ok || buffer.Handle == nil {
				return nil, fmt.Errorf("resource group '%s': binding %d needs a buffer", desc.Label, entry.Binding)
			}
			if buffer.Usage()&metadata.BufferUsageUniform == 0 {
				return nil, fmt.Errorf("resource group '%s': buffer '%s' at binding %d is not a uniform buffer", desc.Label, buffer.Label, entry.Binding)
			}
			writes[i].PBufferInfo = []vk.DescriptorBufferInfo{{
				Buffer: buffer.Handle,
				Range:  vk.DeviceSize(buffer.Size()),
			}}
		default:
			return nil, fmt.Errorf("resource group '%s': unsupported descriptor type %d at binding %d", desc.Label, layout.Types[entry.Binding], entry.Binding)
		}
	}

	group := &VulkanResourceGroup{context: vb.context, pool: vb.descriptorPool, Label: desc.Label}
	err := vb.context.Locks.SafeCall(DescriptorManagement, func() error {
		allocateInfo := vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     vb.descriptorPool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{layout.Handle},
		}
		var set vk.DescriptorSet
		if res := vk.AllocateDescriptorSets(vb.context.LogicalDevice, &allocateInfo, &set); res != vk.Success {
			return resultError("allocate descriptor set", res)
		}
		group.Handle = set

		for i := range writes {
			writes[i].DstSet = set
		}
		vk.UpdateDescriptorSets(vb.context.LogicalDevice, uint32(len(writes)), writes, 0, nil)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resource group '%s': %w", desc.Label, err)
	}
	core.LogDebug("Created resource group '%s'.", desc.Label)
	return group, nil
}
