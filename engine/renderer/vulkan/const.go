package vulkan

import "github.com/spaghettifunk/anima-models/engine/renderer"

/**
 * @brief Max number of material resource groups alive at once.
 * @todo TODO: make configurable through core.Config once the descriptor pool can grow.
 */
const VULKAN_MAX_MATERIAL_COUNT uint32 = 1024

/** @brief The descriptor set index materials are bound to. */
const VULKAN_MATERIAL_SET_INDEX uint32 = renderer.MaterialResourceGroupIndex

/** @brief How long SubmitUploads waits for the upload fence, in nanoseconds. */
const VULKAN_UPLOAD_TIMEOUT_NS uint64 = 10_000_000_000

/** @brief The descriptor set index per-draw uniforms are bound to. */
const VULKAN_UNIFORM_SET_INDEX uint32 = renderer.UniformResourceGroupIndex
