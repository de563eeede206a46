package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

/**
 * @brief A buffer with its own device memory allocation.
 */
type VulkanBuffer struct {
	context *VulkanContext
	Label   string
	Handle  vk.Buffer
	Memory  vk.DeviceMemory
	size    uint64
	usage   metadata.BufferUsage
}

func (b *VulkanBuffer) Size() uint64                { return b.size }
func (b *VulkanBuffer) Usage() metadata.BufferUsage { return b.usage }

func (b *VulkanBuffer) Destroy() {
	if b.Handle == nil {
		return
	}
	b.context.Locks.SafeCall(BufferManagement, func() error {
		vk.DestroyBuffer(b.context.LogicalDevice, b.Handle, b.context.Allocator)
		vk.FreeMemory(b.context.LogicalDevice, b.Memory, b.context.Allocator)
		return nil
	})
	b.Handle = nil
	b.Memory = nil
}

func vulkanBufferUsage(usage metadata.BufferUsage) vk.BufferUsageFlags {
	var flags vk.BufferUsageFlagBits
	if usage&metadata.BufferUsageVertex != 0 {
		flags |= vk.BufferUsageVertexBufferBit
	}
	if usage&metadata.BufferUsageIndex != 0 {
		flags |= vk.BufferUsageIndexBufferBit
	}
	if usage&metadata.BufferUsageCopySrc != 0 {
		flags |= vk.BufferUsageTransferSrcBit
	}
	if usage&metadata.BufferUsageUniform != 0 {
		flags |= vk.BufferUsageUniformBufferBit
	}
	return vk.BufferUsageFlags(flags)
}

// NewVulkanBuffer creates a buffer and binds freshly allocated memory with
// the requested properties to it.
func NewVulkanBuffer(context *VulkanContext, label string, size uint64, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	buffer := &VulkanBuffer{context: context, Label: label, size: size}
	err := context.Locks.SafeCall(BufferManagement, func() error {
		var handle vk.Buffer
		if res := vk.CreateBuffer(context.LogicalDevice, &bufferInfo, context.Allocator, &handle); res != vk.Success {
			return resultError("create buffer", res)
		}
		buffer.Handle = handle

		var requirements vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(context.LogicalDevice, handle, &requirements)
		requirements.Deref()

		memoryIndex, err := context.FindMemoryIndex(requirements.MemoryTypeBits, properties)
		if err != nil {
			return err
		}
		allocateInfo := vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  requirements.Size,
			MemoryTypeIndex: memoryIndex,
		}
		var memory vk.DeviceMemory
		if res := vk.AllocateMemory(context.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
			return resultError("allocate buffer memory", res)
		}
		buffer.Memory = memory

		if res := vk.BindBufferMemory(context.LogicalDevice, handle, memory, 0); res != vk.Success {
			return resultError("bind buffer memory", res)
		}
		return nil
	})
	if err != nil {
		if buffer.Handle != nil {
			vk.DestroyBuffer(context.LogicalDevice, buffer.Handle, context.Allocator)
		}
		if buffer.Memory != nil {
			vk.FreeMemory(context.LogicalDevice, buffer.Memory, context.Allocator)
		}
		return nil, fmt.Errorf("buffer '%s': %w", label, err)
	}
	return buffer, nil
}

// LoadData copies data into a host visible buffer.
func (b *VulkanBuffer) LoadData(data []byte) error {
	if uint64(len(data)) > b.size {
		return fmt.Errorf("buffer '%s': %d bytes do not fit into %d", b.Label, len(data), b.size)
	}
	var pData unsafe.Pointer
	if res := vk.MapMemory(b.context.LogicalDevice, b.Memory, 0, vk.DeviceSize(len(data)), 0, &pData); res != vk.Success {
		return resultError("map buffer memory", res)
	}
	vk.Memcopy(pData, data)
	vk.UnmapMemory(b.context.LogicalDevice, b.Memory)
	return nil
}

// CreateBufferInit creates a host visible buffer holding desc.Contents.
func (vb *Backend) CreateBufferInit(desc *renderer.BufferInitDescriptor) (metadata.Buffer, error) {
	if len(desc.Contents) == 0 {
		return nil, fmt.Errorf("buffer '%s' has no contents", desc.Label)
	}
	buffer, err := NewVulkanBuffer(
		vb.context,
		desc.Label,
		uint64(len(desc.Contents)),
		vulkanBufferUsage(desc.Usage),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, err
	}
	buffer.usage = desc.Usage
	if err := buffer.LoadData(desc.Contents); err != nil {
		buffer.Destroy()
		return nil, err
	}
	core.LogDebug("Created buffer '%s' (%d bytes).", desc.Label, buffer.size)
	return buffer, nil
}
