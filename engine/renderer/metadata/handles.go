package metadata

/** @brief Anything holding GPU memory or a GPU object that must be released explicitly. */
type Destroyer interface {
	Destroy()
}

type BufferUsage uint32

const (
	/** @brief The buffer is bound as a vertex buffer. */
	BufferUsageVertex BufferUsage = 0x1
	/** @brief The buffer is bound as an index buffer. */
	BufferUsageIndex BufferUsage = 0x2
	/** @brief The buffer is the source of a copy command. */
	BufferUsageCopySrc BufferUsage = 0x4
	/** @brief The buffer is bound as a uniform buffer in a resource group. */
	BufferUsageUniform BufferUsage = 0x8
)

/**
 * @brief A device-resident buffer created by a renderer backend.
 */
type Buffer interface {
	Destroyer
	/** @brief The size of the buffer in bytes. */
	Size() uint64
	Usage() BufferUsage
}

/** @brief A view over a texture image which shaders can sample. */
type TextureView interface {
	Destroyer
}

type Sampler interface {
	Destroyer
}

/**
 * @brief An opaque, pre-bound set of GPU-visible resources consumed atomically
 * by a draw call (a descriptor set in Vulkan terms).
 */
type ResourceGroup interface {
	Destroyer
}

/** @brief The backend specific description of the slots of a ResourceGroup. */
type ResourceGroupLayout interface{}

/**
 * @brief A recorded but not yet submitted command, typically a texture upload.
 * The owner must submit it before the resources it writes are sampled, or
 * discard it when the resources are never going to be used.
 */
type CommandBuffer interface {
	/** @brief Releases the command without executing it. No-op once submitted or discarded. */
	Discard()
}

// DiscardAll discards every command, skipping nil entries.
func DiscardAll(commands []CommandBuffer) {
	for _, cmd := range commands {
		if cmd != nil {
			cmd.Discard()
		}
	}
}
