package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-models/engine/core"
)

type VulkanPhysicalDeviceRequirements struct {
	Graphics          bool
	Transfer          bool
	SamplerAnisotropy bool
	DiscreteGPU       bool
}

// NewOffscreenContext creates an instance and a logical device without any
// surface, enough to create buffers and textures and record draws into
// secondary targets. The Vulkan loader is resolved from the system library.
func NewOffscreenContext(appName string) (*VulkanContext, error) {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, fmt.Errorf("failed to locate the Vulkan loader: %w", err)
	}
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize vk: %w", err)
	}

	context := &VulkanContext{
		Locks:      NewVulkanLockPool(),
		ownsDevice: true,
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Anima Engine"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}
	if runtime.GOOS == "darwin" {
		extensions := VulkanSafeStrings([]string{"VK_KHR_portability_enumeration", "VK_KHR_get_physical_device_properties2"})
		createInfo.EnabledExtensionCount = uint32(len(extensions))
		createInfo.PpEnabledExtensionNames = extensions
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, context.Allocator, &instance); res != vk.Success {
		return nil, resultError("create instance", res)
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, context.Allocator)
		return nil, err
	}
	context.Instance = instance
	core.LogInfo("Vulkan Instance created.")

	requirements := VulkanPhysicalDeviceRequirements{
		Graphics:    true,
		Transfer:    true,
		DiscreteGPU: runtime.GOOS != "darwin",
	}
	if err := selectPhysicalDevice(context, &requirements); err != nil {
		requirements.DiscreteGPU = false
		if err := selectPhysicalDevice(context, &requirements); err != nil {
			vk.DestroyInstance(instance, context.Allocator)
			return nil, err
		}
	}

	if err := createLogicalDevice(context); err != nil {
		vk.DestroyInstance(instance, context.Allocator)
		return nil, err
	}
	if err := context.init(); err != nil {
		context.Destroy()
		return nil, err
	}
	return context, nil
}

func selectPhysicalDevice(context *VulkanContext, requirements *VulkanPhysicalDeviceRequirements) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return resultError("enumerate physical devices", res)
	}
	if physicalDeviceCount == 0 {
		return fmt.Errorf("no devices which support Vulkan were found")
	}
	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return resultError("enumerate physical devices", res)
	}

	for _, device := range physicalDevices {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(device, &properties)
		properties.Deref()

		var features vk.PhysicalDeviceFeatures
		vk.GetPhysicalDeviceFeatures(device, &features)
		features.Deref()

		queueIndex, ok := physicalDeviceMeetsRequirements(device, &properties, &features, requirements)
		if !ok {
			continue
		}

		name := string(properties.DeviceName[:FindFirstZeroInByteArray(properties.DeviceName[:])])
		core.LogInfo("Selected device: '%s'.", name)
		core.LogInfo(
			"Vulkan API version: %d.%d.%d",
			vk.Version(properties.ApiVersion).Major(),
			vk.Version(properties.ApiVersion).Minor(),
			vk.Version(properties.ApiVersion).Patch(),
		)
		context.PhysicalDevice = device
		context.GraphicsQueueIndex = queueIndex
		return nil
	}
	return fmt.Errorf("no physical devices were found which meet the requirements")
}

// physicalDeviceMeetsRequirements returns the first queue family supporting
// graphics and transfer work.
func physicalDeviceMeetsRequirements(device vk.PhysicalDevice, properties *vk.PhysicalDeviceProperties, features *vk.PhysicalDeviceFeatures, requirements *VulkanPhysicalDeviceRequirements) (uint32, bool) {
	if requirements.DiscreteGPU && properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu {
		core.LogInfo("Device is not a discrete GPU, and one is required. Skipping.")
		return 0, false
	}
	if requirements.SamplerAnisotropy && features.SamplerAnisotropy == vk.False {
		core.LogInfo("Device does not support samplerAnisotropy, skipping.")
		return 0, false
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	for i := range queueFamilies {
		queueFamilies[i].Deref()
		flags := vk.QueueFlagBits(queueFamilies[i].QueueFlags)
		if requirements.Graphics && flags&vk.QueueGraphicsBit == 0 {
			continue
		}
		// graphics queues implicitly support transfer
		if requirements.Transfer && flags&(vk.QueueGraphicsBit|vk.QueueTransferBit) == 0 {
			continue
		}
		core.LogDebug("Graphics Family Index: %d", i)
		return uint32(i), true
	}
	return 0, false
}

func createLogicalDevice(context *VulkanContext) error {
	core.LogInfo("Creating logical device...")

	queueCreateInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: context.GraphicsQueueIndex,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(context.PhysicalDevice, &features)
	features.Deref()
	deviceFeatures := vk.PhysicalDeviceFeatures{SamplerAnisotropy: features.SamplerAnisotropy}

	var extensionNames []string
	if portabilitySubsetAvailable(context.PhysicalDevice) {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = VulkanSafeStrings([]string{"VK_KHR_portability_subset"})
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: extensionNames,
	}

	var device vk.Device
	if res := vk.CreateDevice(context.PhysicalDevice, &deviceCreateInfo, context.Allocator, &device); res != vk.Success {
		return resultError("create logical device", res)
	}
	context.LogicalDevice = device
	core.LogInfo("Logical device created.")
	return nil
}

func portabilitySubsetAvailable(device vk.PhysicalDevice) bool {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, nil); res != vk.Success || count == 0 {
		return false
	}
	extensions := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, extensions); res != vk.Success {
		return false
	}
	for i := range extensions {
		extensions[i].Deref()
		name := extensions[i].ExtensionName[:]
		if string(name[:FindFirstZeroInByteArray(name)]) == "VK_KHR_portability_subset" {
			return true
		}
	}
	return false
}
