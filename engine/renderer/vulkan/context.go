package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-models/engine/core"
)

/**
 * @brief The device side state every Vulkan resource is created against.
 * The context either wraps a device created by the caller or owns an
 * offscreen device created by NewOffscreenContext.
 */
type VulkanContext struct {
	Instance       vk.Instance
	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device
	Allocator      *vk.AllocationCallbacks

	GraphicsQueue      vk.Queue
	GraphicsQueueIndex uint32
	// Resettable pool all upload command buffers are allocated from.
	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Memory     vk.PhysicalDeviceMemoryProperties

	Locks *VulkanLockPool

	ownsDevice bool
}

// NewVulkanContext wraps a logical device created elsewhere. It fetches the
// graphics queue of the given family and creates a command pool for it.
func NewVulkanContext(physicalDevice vk.PhysicalDevice, device vk.Device, graphicsQueueIndex uint32) (*VulkanContext, error) {
	context := &VulkanContext{
		PhysicalDevice:     physicalDevice,
		LogicalDevice:      device,
		GraphicsQueueIndex: graphicsQueueIndex,
		Locks:              NewVulkanLockPool(),
	}
	if err := context.init(); err != nil {
		return nil, err
	}
	return context, nil
}

func (vc *VulkanContext) init() error {
	vk.GetPhysicalDeviceProperties(vc.PhysicalDevice, &vc.Properties)
	vc.Properties.Deref()
	vk.GetPhysicalDeviceMemoryProperties(vc.PhysicalDevice, &vc.Memory)
	vc.Memory.Deref()

	var queue vk.Queue
	vk.GetDeviceQueue(vc.LogicalDevice, vc.GraphicsQueueIndex, 0, &queue)
	vc.GraphicsQueue = queue
	vc.Locks.SetQueueFamily(vc.GraphicsQueueIndex)

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: vc.GraphicsQueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(vc.LogicalDevice, &poolCreateInfo, vc.Allocator, &pool); res != vk.Success {
		return resultError("create graphics command pool", res)
	}
	vc.GraphicsCommandPool = pool
	core.LogInfo("Graphics command pool created.")
	return nil
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < vc.Memory.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		vc.Memory.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (vc.Memory.MemoryTypes[i].PropertyFlags&propertyFlags) == propertyFlags {
			return i, nil
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return 0, fmt.Errorf("no memory type matches filter 0x%x with properties 0x%x", typeFilter, propertyFlags)
}

// Destroy releases the command pool and, for an offscreen context, the device
// and the instance.
func (vc *VulkanContext) Destroy() {
	if vc.LogicalDevice == nil {
		return
	}
	vk.DeviceWaitIdle(vc.LogicalDevice)

	core.LogInfo("Destroying command pools...")
	vk.DestroyCommandPool(vc.LogicalDevice, vc.GraphicsCommandPool, vc.Allocator)
	vc.GraphicsCommandPool = nil
	vc.GraphicsQueue = nil

	if vc.ownsDevice {
		core.LogInfo("Destroying logical device...")
		vk.DestroyDevice(vc.LogicalDevice, vc.Allocator)
		if vc.Instance != nil {
			vk.DestroyInstance(vc.Instance, vc.Allocator)
			vc.Instance = nil
		}
	}
	vc.LogicalDevice = nil
	vc.PhysicalDevice = nil
}
