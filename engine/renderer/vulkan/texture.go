package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-models/engine/assets/loaders"
	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

/** @brief A sampled texture image. Destroying the view releases the image. */
type VulkanTextureView struct {
	context *VulkanContext
	Image   *VulkanImage
}

func (tv *VulkanTextureView) Destroy() {
	if tv.Image == nil {
		return
	}
	tv.Image.Destroy(tv.context)
	tv.Image = nil
}

type VulkanSampler struct {
	context *VulkanContext
	Handle  vk.Sampler
}

func (s *VulkanSampler) Destroy() {
	if s.Handle == nil {
		return
	}
	s.context.Locks.SafeCall(SamplerManagement, func() error {
		vk.DestroySampler(s.context.LogicalDevice, s.Handle, s.context.Allocator)
		return nil
	})
	s.Handle = nil
}

/**
 * @brief A recorded texture upload: staging buffer to image, including the
 * layout transitions. It must be passed to Backend.SubmitUploads before the
 * texture is sampled, or discarded.
 */
type UploadCommand struct {
	context       *VulkanContext
	Texture       string
	CommandBuffer *VulkanCommandBuffer
	staging       *VulkanBuffer
}

// Discard frees the command buffer and the staging buffer without submitting.
func (uc *UploadCommand) Discard() {
	uc.release()
}

func (uc *UploadCommand) release() {
	if uc.CommandBuffer != nil {
		uc.CommandBuffer.Free(uc.context, uc.context.GraphicsCommandPool)
		uc.CommandBuffer = nil
	}
	if uc.staging != nil {
		uc.staging.Destroy()
		uc.staging = nil
	}
}

func textureFormat(use metadata.TextureUse, srgb bool) vk.Format {
	if use == metadata.TextureUseMapDiffuse && srgb {
		return vk.FormatR8g8b8a8Srgb
	}
	// normal maps hold vectors, not colors
	return vk.FormatR8g8b8a8Unorm
}

func samplerFilter(filter metadata.TextureFilter) vk.Filter {
	if filter == metadata.TextureFilterModeNearest {
		return vk.FilterNearest
	}
	return vk.FilterLinear
}

func samplerAddressMode(repeat metadata.TextureRepeat) vk.SamplerAddressMode {
	switch repeat {
	case metadata.TextureRepeatMirroredRepeat:
		return vk.SamplerAddressModeMirroredRepeat
	case metadata.TextureRepeatClampToEdge:
		return vk.SamplerAddressModeClampToEdge
	case metadata.TextureRepeatClampToBorder:
		return vk.SamplerAddressModeClampToBorder
	default:
		return vk.SamplerAddressModeRepeat
	}
}

func (vb *Backend) createSampler() (*VulkanSampler, error) {
	filter := samplerFilter(metadata.ParseTextureFilter(vb.textures.Filter))
	addressMode := samplerAddressMode(metadata.ParseTextureRepeat(vb.textures.Repeat))

	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               filter,
		MinFilter:               filter,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            addressMode,
		AddressModeV:            addressMode,
		AddressModeW:            addressMode,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}

	sampler := &VulkanSampler{context: vb.context}
	err := vb.context.Locks.SafeCall(SamplerManagement, func() error {
		var handle vk.Sampler
		if res := vk.CreateSampler(vb.context.LogicalDevice, &samplerInfo, vb.context.Allocator, &handle); res != vk.Success {
			return resultError("create sampler", res)
		}
		sampler.Handle = handle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sampler, nil
}

// LoadTexture decodes an image file and records its upload into a device local
// image. Nothing is submitted: the returned *UploadCommand carries the work.
func (vb *Backend) LoadTexture(path string, use metadata.TextureUse) (*metadata.Texture, metadata.CommandBuffer, error) {
	texture, upload, err := vb.loadTexture(path, use)
	if err != nil {
		return nil, nil, &core.TextureLoadError{Path: path, Err: err}
	}
	return texture, upload, nil
}

func (vb *Backend) loadTexture(path string, use metadata.TextureUse) (*metadata.Texture, *UploadCommand, error) {
	img, err := loaders.DecodeImage(path, vb.textures.FlipY)
	if err != nil {
		return nil, nil, err
	}
	if img.Width == 0 || img.Height == 0 {
		return nil, nil, fmt.Errorf("image has no pixels")
	}

	upload := &UploadCommand{context: vb.context, Texture: path}
	completed := false
	texture := &metadata.Texture{
		Name:         path,
		Width:        img.Width,
		Height:       img.Height,
		ChannelCount: img.ChannelCount,
		Use:          use,
	}
	defer func() {
		if !completed {
			upload.release()
			texture.Destroy()
		}
	}()

	upload.staging, err = NewVulkanBuffer(
		vb.context,
		path+" staging",
		uint64(len(img.Pixels)),
		vulkanBufferUsage(metadata.BufferUsageCopySrc),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, nil, err
	}
	if err := upload.staging.LoadData(img.Pixels); err != nil {
		return nil, nil, err
	}

	image, err := NewVulkanImage(
		vb.context,
		img.Width,
		img.Height,
		textureFormat(use, vb.textures.SRGB),
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
	)
	if err != nil {
		return nil, nil, err
	}
	texture.View = &VulkanTextureView{context: vb.context, Image: image}

	sampler, err := vb.createSampler()
	if err != nil {
		return nil, nil, err
	}
	texture.Sampler = sampler

	upload.CommandBuffer, err = AllocateAndBeginSingleUse(vb.context, vb.context.GraphicsCommandPool)
	if err != nil {
		return nil, nil, err
	}
	if err := image.TransitionLayout(upload.CommandBuffer, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		return nil, nil, err
	}
	image.CopyFromBuffer(upload.CommandBuffer, upload.staging)
	if err := image.TransitionLayout(upload.CommandBuffer, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		return nil, nil, err
	}
	if err := upload.CommandBuffer.End(); err != nil {
		return nil, nil, err
	}

	core.LogDebug("Recorded upload of %s texture %s (%dx%d).", use, path, img.Width, img.Height)
	completed = true
	return texture, upload, nil
}
