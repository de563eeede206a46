package renderer_test

import (
	"testing"

	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer"
	"github.com/spaghettifunk/anima-models/engine/renderer/headless"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

type testScene struct {
	model    *metadata.Model
	uniforms metadata.ResourceGroup
}

// newTestScene builds a model with three meshes; the last two share material 1.
func newTestScene(t *testing.T) *testScene {
	t.Helper()
	device := headless.NewDevice(core.DefaultConfig().Textures)

	buffer := func(label string, usage metadata.BufferUsage) metadata.Buffer {
		b, err := device.CreateBufferInit(&renderer.BufferInitDescriptor{Label: label, Contents: make([]byte, 12), Usage: usage})
		if err != nil {
			t.Fatalf("CreateBufferInit failed: %v", err)
		}
		return b
	}
	group := func(label string) metadata.ResourceGroup {
		g, err := device.CreateResourceGroup(&renderer.ResourceGroupDescriptor{Label: label})
		if err != nil {
			t.Fatalf("CreateResourceGroup failed: %v", err)
		}
		return g
	}

	model := &metadata.Model{Name: "scene"}
	for _, name := range []string{"stone", "wood"} {
		model.Materials = append(model.Materials, &metadata.Material{Name: name, ResourceGroup: group(name)})
	}
	for _, m := range []struct {
		name     string
		elements uint32
		material uint32
	}{{"floor", 6, 0}, {"table", 36, 1}, {"chair", 24, 1}} {
		model.Meshes = append(model.Meshes, &metadata.Mesh{
			Name:          m.name,
			VertexBuffer:  buffer(m.name+" vertices", metadata.BufferUsageVertex),
			IndexBuffer:   buffer(m.name+" indices", metadata.BufferUsageIndex),
			ElementCount:  m.elements,
			MaterialIndex: m.material,
		})
	}
	return &testScene{model: model, uniforms: group("camera")}
}

func TestDrawMeshInstancedBindingOrder(t *testing.T) {
	scene := newTestScene(t)
	pass := &headless.RenderPass{}
	drawer := renderer.NewModelDrawer(pass)

	mesh := scene.model.Meshes[1]
	material := scene.model.MaterialFor(mesh)
	drawer.DrawMeshInstanced(mesh, material, renderer.Range{Start: 2, End: 5}, scene.uniforms)

	want := []headless.Command{
		{Kind: headless.CommandSetVertexBuffer, Slot: 0, Buffer: mesh.VertexBuffer},
		{Kind: headless.CommandSetIndexBuffer, Buffer: mesh.IndexBuffer, IndexFormat: renderer.IndexFormatUint32},
		{Kind: headless.CommandSetResourceGroup, Slot: renderer.MaterialResourceGroupIndex, Group: material.ResourceGroup},
		{Kind: headless.CommandSetResourceGroup, Slot: renderer.UniformResourceGroupIndex, Group: scene.uniforms},
		{Kind: headless.CommandDrawIndexed, Indices: renderer.Range{Start: 0, End: 36}, Instances: renderer.Range{Start: 2, End: 5}},
	}
	if len(pass.Commands) != len(want) {
		t.Fatalf("recorded %d commands, want %d", len(pass.Commands), len(want))
	}
	for i := range want {
		if pass.Commands[i] != want[i] {
			t.Errorf("command %d = %+v, want %+v", i, pass.Commands[i], want[i])
		}
	}
}

func TestDrawMeshSingleInstance(t *testing.T) {
	scene := newTestScene(t)
	pass := &headless.RenderPass{}
	mesh := scene.model.Meshes[0]

	renderer.NewModelDrawer(pass).DrawMesh(mesh, scene.model.MaterialFor(mesh), scene.uniforms)

	draws := pass.Draws()
	if len(draws) != 1 {
		t.Fatalf("recorded %d draws, want 1", len(draws))
	}
	if draws[0].Instances != renderer.SingleInstance || draws[0].Indices.Count() != 6 {
		t.Errorf("unexpected draw %+v", draws[0])
	}
}

func TestDrawModel(t *testing.T) {
	tests := []struct {
		name      string
		instances renderer.Range
		draw      func(d *renderer.ModelDrawer, s *testScene)
	}{
		{
			name:      "single instance",
			instances: renderer.SingleInstance,
			draw: func(d *renderer.ModelDrawer, s *testScene) {
				d.DrawModel(s.model, s.uniforms)
			},
		},
		{
			name:      "instanced",
			instances: renderer.Range{Start: 0, End: 128},
			draw: func(d *renderer.ModelDrawer, s *testScene) {
				d.DrawModelInstanced(s.model, renderer.Range{Start: 0, End: 128}, s.uniforms)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene := newTestScene(t)
			pass := &headless.RenderPass{}
			tt.draw(renderer.NewModelDrawer(pass), scene)

			if got := len(pass.Draws()); got != len(scene.model.Meshes) {
				t.Fatalf("recorded %d draws, want one per mesh (%d)", got, len(scene.model.Meshes))
			}

			// each mesh: vertex buffer, index buffer, material, uniforms, draw
			for i, mesh := range scene.model.Meshes {
				cmds := pass.Commands[i*5 : i*5+5]
				if cmds[0].Buffer != mesh.VertexBuffer {
					t.Errorf("mesh %d: wrong vertex buffer", i)
				}
				if cmds[2].Group != scene.model.Materials[mesh.MaterialIndex].ResourceGroup {
					t.Errorf("mesh %d: wrong material group", i)
				}
				if cmds[3].Group != scene.uniforms {
					t.Errorf("mesh %d: wrong uniforms group", i)
				}
				if cmds[4].Indices.Count() != mesh.ElementCount || cmds[4].Instances != tt.instances {
					t.Errorf("mesh %d: unexpected draw %+v", i, cmds[4])
				}
			}
		})
	}
}

func TestDrawEmptyModel(t *testing.T) {
	pass := &headless.RenderPass{}
	renderer.NewModelDrawer(pass).DrawModel(&metadata.Model{}, nil)
	if len(pass.Commands) != 0 {
		t.Errorf("recorded %d commands for an empty model", len(pass.Commands))
	}
}

func TestRangeCount(t *testing.T) {
	tests := []struct {
		r    renderer.Range
		want uint32
	}{
		{renderer.Range{Start: 0, End: 1}, 1},
		{renderer.Range{Start: 3, End: 3}, 0},
		{renderer.Range{Start: 4, End: 10}, 6},
		{renderer.Range{Start: 5, End: 2}, 0},
	}
	for _, tt := range tests {
		if got := tt.r.Count(); got != tt.want {
			t.Errorf("%+v.Count() = %d, want %d", tt.r, got, tt.want)
		}
	}
}
