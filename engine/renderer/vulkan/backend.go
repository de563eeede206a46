package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

/**
 * @brief The Vulkan implementation of renderer.Device and renderer.TextureLoader.
 */
type Backend struct {
	context  *VulkanContext
	textures core.TextureConfig

	descriptorPool vk.DescriptorPool
	materialLayout *VulkanResourceGroupLayout
	uniformLayout  *VulkanResourceGroupLayout
}

// NewBackend creates the material and uniform layouts and the descriptor pool
// resource groups are allocated from.
func NewBackend(context *VulkanContext, textures core.TextureConfig) (*Backend, error) {
	vb := &Backend{
		context:  context,
		textures: textures,
	}

	layout, err := NewMaterialResourceGroupLayout(context)
	if err != nil {
		return nil, err
	}
	vb.materialLayout = layout

	uniformLayout, err := NewUniformResourceGroupLayout(context)
	if err != nil {
		layout.Destroy(context)
		return nil, err
	}
	vb.uniformLayout = uniformLayout

	pool, err := newMaterialDescriptorPool(context, VULKAN_MAX_MATERIAL_COUNT)
	if err != nil {
		uniformLayout.Destroy(context)
		layout.Destroy(context)
		return nil, err
	}
	vb.descriptorPool = pool

	core.LogInfo("Vulkan backend initialized (%d material slots).", VULKAN_MAX_MATERIAL_COUNT)
	return vb, nil
}

func (vb *Backend) Context() *VulkanContext { return vb.context }

// MaterialLayout is the layout to pass to the model loader and to declare in
// pipeline layouts at VULKAN_MATERIAL_SET_INDEX.
func (vb *Backend) MaterialLayout() *VulkanResourceGroupLayout { return vb.materialLayout }

// UniformLayout is the layout of the per-draw uniform group bound at
// VULKAN_UNIFORM_SET_INDEX. Its groups come from CreateResourceGroup with a
// single BufferUsageUniform buffer entry.
func (vb *Backend) UniformLayout() *VulkanResourceGroupLayout { return vb.uniformLayout }

// SubmitUploads submits recorded texture uploads in one batch, waits for them
// to complete and releases their staging buffers. Commands are consumed even
// when the submission fails.
func (vb *Backend) SubmitUploads(cmds []metadata.CommandBuffer) error {
	if len(cmds) == 0 {
		return nil
	}

	defer metadata.DiscardAll(cmds)

	uploads := make([]*UploadCommand, 0, len(cmds))
	handles := make([]vk.CommandBuffer, 0, len(cmds))
	for _, cmd := range cmds {
		upload, ok := cmd.(*UploadCommand)
		if !ok {
			return fmt.Errorf("cannot submit %T with the vulkan backend", cmd)
		}
		if upload.CommandBuffer == nil || upload.CommandBuffer.State != COMMAND_BUFFER_STATE_RECORDING_ENDED {
			return fmt.Errorf("upload of %s was already submitted or discarded", upload.Texture)
		}
		uploads = append(uploads, upload)
		handles = append(handles, upload.CommandBuffer.Handle)
	}

	fence, err := NewFence(vb.context, false)
	if err != nil {
		return err
	}
	defer fence.Destroy(vb.context)

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(handles)),
		PCommandBuffers:    handles,
	}
	err = vb.context.Locks.SafeQueueCall(vb.context.GraphicsQueueIndex, func() error {
		if res := vk.QueueSubmit(vb.context.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle); res != vk.Success {
			return resultError("submit texture uploads", res)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, upload := range uploads {
		upload.CommandBuffer.UpdateSubmitted()
	}

	if err := fence.Wait(vb.context, VULKAN_UPLOAD_TIMEOUT_NS); err != nil {
		// The staging buffers may still be read by the device.
		vk.DeviceWaitIdle(vb.context.LogicalDevice)
		return errors.Join(errors.New("texture uploads did not complete"), err)
	}
	core.LogDebug("Submitted %d texture uploads.", len(uploads))
	return nil
}

// Shutdown releases the descriptor pool and the material layout. Models must
// be destroyed before, their resource groups belong to the pool. The context
// stays alive.
func (vb *Backend) Shutdown() {
	if vb.context == nil || vb.context.LogicalDevice == nil {
		return
	}
	vk.DeviceWaitIdle(vb.context.LogicalDevice)
	if vb.descriptorPool != nil {
		vb.context.Locks.SafeCall(DescriptorManagement, func() error {
			vk.DestroyDescriptorPool(vb.context.LogicalDevice, vb.descriptorPool, vb.context.Allocator)
			return nil
		})
		vb.descriptorPool = nil
	}
	if vb.materialLayout != nil {
		vb.materialLayout.Destroy(vb.context)
		vb.materialLayout = nil
	}
	if vb.uniformLayout != nil {
		vb.uniformLayout.Destroy(vb.context)
		vb.uniformLayout = nil
	}
	core.LogInfo("Vulkan backend shut down.")
}
