package metadata

import (
	"github.com/spaghettifunk/anima-models/engine/math"
)

type Mesh struct {
	Name         string
	VertexBuffer Buffer
	IndexBuffer  Buffer
	/** @brief The number of indices in IndexBuffer. */
	ElementCount uint32
	VertexCount  uint32
	/** @brief Index into the owning model's materials. */
	MaterialIndex uint32
	/** @brief The center of the mesh in local coordinates. */
	Center math.Vec3
	/** @brief The extents of the mesh in local coordinates. */
	Extents math.Extents3D
}

func (m *Mesh) Destroy() {
	if m.VertexBuffer != nil {
		m.VertexBuffer.Destroy()
		m.VertexBuffer = nil
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Destroy()
		m.IndexBuffer = nil
	}
}
