package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

/**
 * @brief Records draw commands into a command buffer that is inside a render
 * pass with a graphics pipeline bound. Resource groups are bound against
 * PipelineLayout, so the layout must declare the material set layout at the
 * index passed to SetResourceGroup.
 */
type RenderPassEncoder struct {
	CommandBuffer  *VulkanCommandBuffer
	PipelineLayout vk.PipelineLayout
}

func NewRenderPassEncoder(commandBuffer *VulkanCommandBuffer, pipelineLayout vk.PipelineLayout) *RenderPassEncoder {
	return &RenderPassEncoder{
		CommandBuffer:  commandBuffer,
		PipelineLayout: pipelineLayout,
	}
}

func indexType(format renderer.IndexFormat) vk.IndexType {
	if format == renderer.IndexFormatUint16 {
		return vk.IndexTypeUint16
	}
	return vk.IndexTypeUint32
}

func (rp *RenderPassEncoder) SetVertexBuffer(slot uint32, buffer metadata.Buffer) {
	vb, ok := buffer.(*VulkanBuffer)
	if !ok || vb.Handle == nil {
		core.LogError("SetVertexBuffer: buffer %T is not a live vulkan buffer", buffer)
		return
	}
	vk.CmdBindVertexBuffers(rp.CommandBuffer.Handle, slot, 1, []vk.Buffer{vb.Handle}, []vk.DeviceSize{0})
}

func (rp *RenderPassEncoder) SetIndexBuffer(buffer metadata.Buffer, format renderer.IndexFormat) {
	vb, ok := buffer.(*VulkanBuffer)
	if !ok || vb.Handle == nil {
		core.LogError("SetIndexBuffer: buffer %T is not a live vulkan buffer", buffer)
		return
	}
	vk.CmdBindIndexBuffer(rp.CommandBuffer.Handle, vb.Handle, 0, indexType(format))
}

func (rp *RenderPassEncoder) SetResourceGroup(index uint32, group metadata.ResourceGroup) {
	rg, ok := group.(*VulkanResourceGroup)
	if !ok || rg.Handle == nil {
		core.LogError("SetResourceGroup: group %T is not a live vulkan resource group", group)
		return
	}
	vk.CmdBindDescriptorSets(
		rp.CommandBuffer.Handle,
		vk.PipelineBindPointGraphics,
		rp.PipelineLayout,
		index,
		1,
		[]vk.DescriptorSet{rg.Handle},
		0,
		nil,
	)
}

func (rp *RenderPassEncoder) DrawIndexed(indices renderer.Range, baseVertex int32, instances renderer.Range) {
	if indices.Count() == 0 || instances.Count() == 0 {
		return
	}
	vk.CmdDrawIndexed(rp.CommandBuffer.Handle, indices.Count(), instances.Count(), indices.Start, baseVertex, instances.Start)
}
