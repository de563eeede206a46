package metadata

import (
	"path/filepath"

	"github.com/google/uuid"
)

/**
 * @brief A loaded model. It exclusively owns its meshes, its materials and
 * every GPU resource they reference.
 */
type Model struct {
	ID        uuid.UUID
	Name      string
	Meshes    []*Mesh
	Materials []*Material
	/** @brief The files besides the OBJ the model was built from: material libraries and textures. */
	Sources []string
}

// DependsOn reports whether the file at path is one of the model's sources.
func (m *Model) DependsOn(path string) bool {
	path = filepath.Clean(path)
	for _, source := range m.Sources {
		if filepath.Clean(source) == path {
			return true
		}
	}
	return false
}

// Destroy releases every buffer, texture and resource group of the model.
// Calling it more than once is harmless.
func (m *Model) Destroy() {
	for _, mesh := range m.Meshes {
		mesh.Destroy()
	}
	m.Meshes = nil
	for _, material := range m.Materials {
		material.Destroy()
	}
	m.Materials = nil
}

// MaterialFor returns the material a mesh draws with.
func (m *Model) MaterialFor(mesh *Mesh) *Material {
	return m.Materials[mesh.MaterialIndex]
}

func (m *Model) ElementCount() uint64 {
	var count uint64
	for _, mesh := range m.Meshes {
		count += uint64(mesh.ElementCount)
	}
	return count
}
