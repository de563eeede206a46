package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/math"
	"github.com/spaghettifunk/anima-models/engine/renderer"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

/**
 * @brief Everything the model loader needs from the renderer.
 */
type ModelLoadParams struct {
	Device   renderer.Device
	Textures renderer.TextureLoader
	/** @brief The 4-slot material layout: diffuse view, diffuse sampler, normal view, normal sampler. */
	Layout metadata.ResourceGroupLayout
}

type ModelLoader struct {
	/** @brief Used when Load is called without parameters. */
	Params *ModelLoadParams
}

func (ml *ModelLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	p, ok := params.(*ModelLoadParams)
	if !ok || p == nil {
		p = ml.Params
	}
	if p == nil {
		return nil, fmt.Errorf("model loader: no load parameters for %s", path)
	}

	model, commands, err := LoadModel(p.Device, p.Textures, p.Layout, path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     model.Name,
		FullPath: path,
		DataSize: uint64(len(model.Meshes)),
		Data: &metadata.ModelResourceData{
			Model:    model,
			Commands: commands,
		},
	}, nil
}

func (ml *ModelLoader) Unload(resource *metadata.Resource) error {
	data, ok := resource.Data.(*metadata.ModelResourceData)
	if !ok {
		return fmt.Errorf("model loader: resource %s does not hold a model", resource.FullPath)
	}
	metadata.DiscardAll(data.Commands)
	data.Commands = nil
	data.Model.Destroy()
	return nil
}

// LoadModel parses an OBJ file, loads and binds the textures of its materials
// and uploads the geometry of its meshes. Texture files are resolved relative
// to the directory of the OBJ file. The returned commands upload the textures
// and must be submitted before the model is drawn.
//
// Loading is all-or-nothing: on error every resource created so far is
// released, every recorded upload is discarded and no model is returned.
func LoadModel(device renderer.Device, textures renderer.TextureLoader, layout metadata.ResourceGroupLayout, path string) (*metadata.Model, []metadata.CommandBuffer, error) {
	objModels, objMaterials, err := ParseObj(path)
	if err != nil {
		return nil, nil, err
	}
	if len(objModels) > 0 && len(objMaterials) == 0 {
		return nil, nil, core.NewParseError(path, 0, "model has meshes but no materials")
	}

	// We're assuming that the texture files are stored with the obj file
	containingFolder := filepath.Dir(path)

	model := &metadata.Model{
		ID:   uuid.New(),
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
	var commands []metadata.CommandBuffer
	completed := false
	defer func() {
		if !completed {
			metadata.DiscardAll(commands)
			model.Destroy()
		}
	}()

	for _, mat := range objMaterials {
		material, cmds, err := loadMaterial(device, textures, layout, containingFolder, model.ID, mat)
		if err != nil {
			return nil, nil, err
		}
		model.Materials = append(model.Materials, material)
		commands = append(commands, cmds...)
		model.Sources = appendSource(model.Sources, mat.Library, material.DiffuseTexture.Name, material.NormalTexture.Name)
	}

	for _, m := range objModels {
		mesh, err := uploadMesh(device, model, path, m)
		if err != nil {
			return nil, nil, err
		}
		model.Meshes = append(model.Meshes, mesh)
	}

	core.LogInfo("Loaded model '%s' (%d meshes, %d materials, %d texture uploads).", model.Name, len(model.Meshes), len(model.Materials), len(commands))
	completed = true
	return model, commands, nil
}

func appendSource(sources []string, paths ...string) []string {
	for _, p := range paths {
		if p != "" && !slices.Contains(sources, p) {
			sources = append(sources, p)
		}
	}
	return sources
}

// resolveNormalMap returns the normal map named by the material. Modeling tools
// disagree on the key, so an empty normal map falls back to "map_Bump".
func resolveNormalMap(mat *ObjMaterial) (string, error) {
	if mat.NormalTexture != "" {
		return mat.NormalTexture, nil
	}
	if p, ok := mat.UnknownParams[metadata.NormalMapFallbackKey]; ok && p != "" {
		return p, nil
	}
	return "", &core.MissingNormalMapError{Material: mat.Name}
}

func loadMaterial(device renderer.Device, textures renderer.TextureLoader, layout metadata.ResourceGroupLayout, folder string, modelID uuid.UUID, mat *ObjMaterial) (*metadata.Material, []metadata.CommandBuffer, error) {
	normalPath, err := resolveNormalMap(mat)
	if err != nil {
		return nil, nil, err
	}

	material := &metadata.Material{Name: mat.Name}
	commands := make([]metadata.CommandBuffer, 0, 2)
	completed := false
	defer func() {
		if !completed {
			metadata.DiscardAll(commands)
			material.Destroy()
		}
	}()

	diffuse, cmd, err := textures.LoadTexture(filepath.Join(folder, mat.DiffuseTexture), metadata.TextureUseMapDiffuse)
	if err != nil {
		return nil, nil, err
	}
	material.DiffuseTexture = diffuse
	commands = append(commands, cmd)

	normal, cmd, err := textures.LoadTexture(filepath.Join(folder, normalPath), metadata.TextureUseMapNormal)
	if err != nil {
		return nil, nil, err
	}
	material.NormalTexture = normal
	commands = append(commands, cmd)

	group, err := device.CreateResourceGroup(&renderer.ResourceGroupDescriptor{
		Label:  fmt.Sprintf("%s/%s material", modelID, mat.Name),
		Layout: layout,
		Entries: []renderer.ResourceGroupEntry{
			{Binding: metadata.MaterialBindingDiffuseView, TextureView: diffuse.View},
			{Binding: metadata.MaterialBindingDiffuseSampler, Sampler: diffuse.Sampler},
			{Binding: metadata.MaterialBindingNormalView, TextureView: normal.View},
			{Binding: metadata.MaterialBindingNormalSampler, Sampler: normal.Sampler},
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource group for material '%s': %w", mat.Name, err)
	}
	material.ResourceGroup = group

	core.LogDebug("Loaded material '%s' (diffuse: %s, normal: %s).", mat.Name, mat.DiffuseTexture, normalPath)
	completed = true
	return material, commands, nil
}

// InterleaveVertices builds one vertex per position from the flat attribute
// arrays: position i is read at [3i, 3i+3), texture coordinate i at [2i, 2i+2)
// and normal i at [3i, 3i+3). Arrays of mismatched length are rejected.
func InterleaveVertices(positions, texcoords, normals []float32) ([]math.Vertex3D, error) {
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("position array length %d is not a multiple of 3", len(positions))
	}
	count := len(positions) / 3
	if len(texcoords) != count*2 {
		return nil, fmt.Errorf("expected %d texture coordinate values for %d vertices, got %d", count*2, count, len(texcoords))
	}
	if len(normals) != count*3 {
		return nil, fmt.Errorf("expected %d normal values for %d vertices, got %d", count*3, count, len(normals))
	}

	vertices := make([]math.Vertex3D, count)
	for i := 0; i < count; i++ {
		vertices[i] = math.Vertex3D{
			Position: math.NewVec3(positions[i*3], positions[i*3+1], positions[i*3+2]),
			Texcoord: math.NewVec2(texcoords[i*2], texcoords[i*2+1]),
			Normal:   math.NewVec3(normals[i*3], normals[i*3+1], normals[i*3+2]),
		}
	}
	return vertices, nil
}

func uploadMesh(device renderer.Device, model *metadata.Model, path string, m *ObjModel) (*metadata.Mesh, error) {
	vertices, err := InterleaveVertices(m.Mesh.Positions, m.Mesh.Texcoords, m.Mesh.Normals)
	if err != nil {
		return nil, core.NewParseError(path, 0, "mesh '%s': %v", m.Name, err)
	}
	for _, idx := range m.Mesh.Indices {
		if int(idx) >= len(vertices) {
			return nil, core.NewParseError(path, 0, "mesh '%s': index %d out of range (%d vertices)", m.Name, idx, len(vertices))
		}
	}

	mesh := &metadata.Mesh{
		Name:         m.Name,
		ElementCount: uint32(len(m.Mesh.Indices)),
		VertexCount:  uint32(len(vertices)),
	}
	if m.Mesh.MaterialID != nil && *m.Mesh.MaterialID < len(model.Materials) {
		mesh.MaterialIndex = uint32(*m.Mesh.MaterialID)
	}
	mesh.Extents, mesh.Center = math.VerticesExtents(vertices)

	vertexBuffer, err := device.CreateBufferInit(&renderer.BufferInitDescriptor{
		Label:    fmt.Sprintf("%s/%s vertex buffer", model.ID, m.Name),
		Contents: metadata.ToBytes(vertices),
		Usage:    metadata.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer for mesh '%s': %w", m.Name, err)
	}
	mesh.VertexBuffer = vertexBuffer

	indexBuffer, err := device.CreateBufferInit(&renderer.BufferInitDescriptor{
		Label:    fmt.Sprintf("%s/%s index buffer", model.ID, m.Name),
		Contents: metadata.ToBytes(m.Mesh.Indices),
		Usage:    metadata.BufferUsageIndex,
	})
	if err != nil {
		mesh.Destroy()
		return nil, fmt.Errorf("failed to create index buffer for mesh '%s': %w", m.Name, err)
	}
	mesh.IndexBuffer = indexBuffer

	core.LogDebug("Uploaded mesh '%s' (%d vertices, %d indices, material %d).", m.Name, mesh.VertexCount, mesh.ElementCount, mesh.MaterialIndex)
	return mesh, nil
}
