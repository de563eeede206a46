package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type VulkanImage struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Format vk.Format
	Width  uint32
	Height uint32
}

// NewVulkanImage creates a 2D, single mip image backed by device local memory
// together with a color view over it.
func NewVulkanImage(context *VulkanContext, width, height uint32, format vk.Format, usage vk.ImageUsageFlags) (*VulkanImage, error) {
	image := &VulkanImage{Format: format, Width: width, Height: height}

	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	err := context.Locks.SafeCall(ImageManagement, func() error {
		var handle vk.Image
		if res := vk.CreateImage(context.LogicalDevice, &imageInfo, context.Allocator, &handle); res != vk.Success {
			return resultError("create image", res)
		}
		image.Handle = handle

		var requirements vk.MemoryRequirements
		vk.GetImageMemoryRequirements(context.LogicalDevice, handle, &requirements)
		requirements.Deref()

		memoryIndex, err := context.FindMemoryIndex(requirements.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
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
			return resultError("allocate image memory", res)
		}
		image.Memory = memory

		if res := vk.BindImageMemory(context.LogicalDevice, handle, memory, 0); res != vk.Success {
			return resultError("bind image memory", res)
		}

		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    handle,
			ViewType: vk.ImageViewType2d,
			Format:   format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		var view vk.ImageView
		if res := vk.CreateImageView(context.LogicalDevice, &viewInfo, context.Allocator, &view); res != vk.Success {
			return resultError("create image view", res)
		}
		image.View = view
		return nil
	})
	if err != nil {
		image.Destroy(context)
		return nil, err
	}
	return image, nil
}

// TransitionLayout records a layout transition barrier. Only the transitions
// of a texture upload are supported.
func (vi *VulkanImage) TransitionLayout(commandBuffer *VulkanCommandBuffer, oldLayout, newLayout vk.ImageLayout) error {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               vi.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var srcStage, dstStage vk.PipelineStageFlags
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	default:
		return fmt.Errorf("unsupported image layout transition %d -> %d", oldLayout, newLayout)
	}

	vk.CmdPipelineBarrier(commandBuffer.Handle, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	return nil
}

// CopyFromBuffer records a copy of the whole image from a buffer holding
// tightly packed pixels. The image must be in the transfer destination layout.
func (vi *VulkanImage) CopyFromBuffer(commandBuffer *VulkanCommandBuffer, buffer *VulkanBuffer) {
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{
			Width:  vi.Width,
			Height: vi.Height,
			Depth:  1,
		},
	}
	vk.CmdCopyBufferToImage(commandBuffer.Handle, buffer.Handle, vi.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
}

func (vi *VulkanImage) Destroy(context *VulkanContext) {
	context.Locks.SafeCall(ImageManagement, func() error {
		if vi.View != nil {
			vk.DestroyImageView(context.LogicalDevice, vi.View, context.Allocator)
			vi.View = nil
		}
		if vi.Handle != nil {
			vk.DestroyImage(context.LogicalDevice, vi.Handle, context.Allocator)
			vi.Handle = nil
		}
		if vi.Memory != nil {
			vk.FreeMemory(context.LogicalDevice, vi.Memory, context.Allocator)
			vi.Memory = nil
		}
		return nil
	})
}
