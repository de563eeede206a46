package renderer

import "github.com/spaghettifunk/anima-models/engine/renderer/metadata"

/**
 * @brief Describes a buffer created with its initial contents.
 */
type BufferInitDescriptor struct {
	/** @brief A debug label for the buffer. */
	Label    string
	Contents []byte
	Usage    metadata.BufferUsage
}

/**
 * @brief One slot of a resource group. Exactly one of TextureView, Sampler
 * and Buffer is set. Buffers must be created with BufferUsageUniform.
 */
type ResourceGroupEntry struct {
	Binding     uint32
	TextureView metadata.TextureView
	Sampler     metadata.Sampler
	Buffer      metadata.Buffer
}

type ResourceGroupDescriptor struct {
	Label   string
	Layout  metadata.ResourceGroupLayout
	Entries []ResourceGroupEntry
}

/**
 * @brief The resource-creation side of a rendering backend.
 */
type Device interface {
	CreateBufferInit(desc *BufferInitDescriptor) (metadata.Buffer, error)
	CreateResourceGroup(desc *ResourceGroupDescriptor) (metadata.ResourceGroup, error)
}

/**
 * @brief Loads an image file into a device texture. The returned command
 * performs the actual upload and must be submitted by the caller before the
 * texture is sampled. Failures are reported as *core.TextureLoadError.
 */
type TextureLoader interface {
	LoadTexture(path string, use metadata.TextureUse) (*metadata.Texture, metadata.CommandBuffer, error)
}

type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// Range is the half-open interval [Start, End).
type Range struct {
	Start uint32
	End   uint32
}

func (r Range) Count() uint32 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

/**
 * @brief A recording context for draw commands. Implementations follow the
 * threading rules of the underlying command buffer: one recorder per goroutine.
 */
type RenderPass interface {
	SetVertexBuffer(slot uint32, buffer metadata.Buffer)
	SetIndexBuffer(buffer metadata.Buffer, format IndexFormat)
	SetResourceGroup(index uint32, group metadata.ResourceGroup)
	DrawIndexed(indices Range, baseVertex int32, instances Range)
}
