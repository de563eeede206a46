package loaders

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

func TestMaterialLibraryLoader(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "scene.mtl", `
newmtl Stone
Kd 0.5 0.5 0.5
map_Kd stone.png
norm stone_n.png

newmtl Wood
Ns 12
map_Kd wood.png
map_Bump wood_n.png
`)

	loader := &MaterialLibraryLoader{}
	resource, err := loader.Load(path, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	materials, ok := resource.Data.([]*ObjMaterial)
	if !ok {
		t.Fatalf("resource data is %T", resource.Data)
	}
	if len(materials) != 2 || resource.DataSize != 2 {
		t.Fatalf("got %d materials (size %d), want 2", len(materials), resource.DataSize)
	}
	if resource.Name != "scene.mtl" || resource.FullPath != path {
		t.Errorf("resource = %s at %s", resource.Name, resource.FullPath)
	}
	if err := loader.Unload(resource); err != nil {
		t.Errorf("unload: %v", err)
	}
}

func TestMaterialLibraryLoaderValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"colour out of range", "newmtl a\nKd 1.5 0 0\nmap_Kd a.png\nnorm n.png\n"},
		{"negative shininess", "newmtl a\nNs -1\nmap_Kd a.png\nnorm n.png\n"},
		{"dissolve out of range", "newmtl a\nd 2\nmap_Kd a.png\nnorm n.png\n"},
		{"missing diffuse map", "newmtl a\nnorm n.png\n"},
		{"missing normal map", "newmtl a\nmap_Kd a.png\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, t.TempDir(), "bad.mtl", tt.content)
			_, err := (&MaterialLibraryLoader{}).Load(path, metadata.ResourceTypeMaterial, nil)
			var parseErr *core.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *core.ParseError, got %v", err)
			}
		})
	}
}

func TestMaterialLibraryLoaderMissingFile(t *testing.T) {
	_, err := (&MaterialLibraryLoader{}).Load(filepath.Join(t.TempDir(), "nope.mtl"), metadata.ResourceTypeMaterial, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
}
