package renderer

import "github.com/spaghettifunk/anima-models/engine/renderer/metadata"

/** @brief Resource group slots used by ModelDrawer. Pipeline layouts must match. */
const (
	MaterialResourceGroupIndex uint32 = 0
	UniformResourceGroupIndex  uint32 = 1
)

// SingleInstance draws instance 0 only.
var SingleInstance = Range{Start: 0, End: 1}

// ModelDrawer records model draws into a RenderPass. It keeps no binding state:
// every mesh binds its own buffers and groups, even when they repeat.
type ModelDrawer struct {
	pass RenderPass
}

func NewModelDrawer(pass RenderPass) *ModelDrawer {
	return &ModelDrawer{pass: pass}
}

func (d *ModelDrawer) DrawMesh(mesh *metadata.Mesh, material *metadata.Material, uniforms metadata.ResourceGroup) {
	d.DrawMeshInstanced(mesh, material, SingleInstance, uniforms)
}

// DrawMeshInstanced binds the mesh geometry, the material group at slot 0 and
// uniforms at slot 1, then draws every index of the mesh for each instance.
func (d *ModelDrawer) DrawMeshInstanced(mesh *metadata.Mesh, material *metadata.Material, instances Range, uniforms metadata.ResourceGroup) {
	d.pass.SetVertexBuffer(0, mesh.VertexBuffer)
	d.pass.SetIndexBuffer(mesh.IndexBuffer, IndexFormatUint32)
	d.pass.SetResourceGroup(MaterialResourceGroupIndex, material.ResourceGroup)
	d.pass.SetResourceGroup(UniformResourceGroupIndex, uniforms)
	d.pass.DrawIndexed(Range{Start: 0, End: mesh.ElementCount}, 0, instances)
}

func (d *ModelDrawer) DrawModel(model *metadata.Model, uniforms metadata.ResourceGroup) {
	d.DrawModelInstanced(model, SingleInstance, uniforms)
}

func (d *ModelDrawer) DrawModelInstanced(model *metadata.Model, instances Range, uniforms metadata.ResourceGroup) {
	for _, mesh := range model.Meshes {
		d.DrawMeshInstanced(mesh, model.MaterialFor(mesh), instances, uniforms)
	}
}
