package loaders

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spaghettifunk/anima-models/engine/core"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

const quadObj = `# a textured quad
mtllib quad.mtl
o Quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl Brick
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
`

const quadMtl = `newmtl Brick
Kd 0.8 0.5 0.2
map_Kd brick.png
norm brick_n.png
`

func TestParseObjQuad(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "quad.mtl", quadMtl)
	path := writeFixture(t, dir, "quad.obj", quadObj)

	models, materials, err := ParseObj(path)
	if err != nil {
		t.Fatalf("ParseObj failed: %v", err)
	}
	if len(models) != 1 || len(materials) != 1 {
		t.Fatalf("got %d models and %d materials, want 1 and 1", len(models), len(materials))
	}

	m := models[0]
	if m.Name != "Quad" {
		t.Errorf("name = %q, want Quad", m.Name)
	}
	if want := []uint32{0, 1, 2, 0, 2, 3}; !reflect.DeepEqual(m.Mesh.Indices, want) {
		t.Errorf("indices = %v, want %v", m.Mesh.Indices, want)
	}
	if got := len(m.Mesh.Positions); got != 12 {
		t.Errorf("positions has %d values, want 12", got)
	}
	if want := []float32{0, 0, 1, 0, 1, 1, 0, 1}; !reflect.DeepEqual(m.Mesh.Texcoords, want) {
		t.Errorf("texcoords = %v, want %v", m.Mesh.Texcoords, want)
	}
	if got := len(m.Mesh.Normals); got != 12 {
		t.Errorf("normals has %d values, want 12", got)
	}
	if m.Mesh.MaterialID == nil || *m.Mesh.MaterialID != 0 {
		t.Errorf("material id = %v, want 0", m.Mesh.MaterialID)
	}
}

func TestParseObjSplitsMeshesByMaterial(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "two.mtl", "newmtl A\nmap_Kd a.png\nnewmtl B\nmap_Kd b.png\n")
	path := writeFixture(t, dir, "two.obj", `mtllib two.mtl
v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
vt 0 0
vn 0 0 1
o Box
usemtl A
f 1/1/1 2/1/1 3/1/1
usemtl B
f 2/1/1 4/1/1 3/1/1
`)

	models, materials, err := ParseObj(path)
	if err != nil {
		t.Fatalf("ParseObj failed: %v", err)
	}
	if len(materials) != 2 {
		t.Fatalf("got %d materials, want 2", len(materials))
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	for i, m := range models {
		if m.Name != "Box" {
			t.Errorf("model %d name = %q, want Box", i, m.Name)
		}
		if m.Mesh.MaterialID == nil || *m.Mesh.MaterialID != i {
			t.Errorf("model %d material id = %v, want %d", i, m.Mesh.MaterialID, i)
		}
	}
	if want := []float32{1, 0, 0, 1, 1, 0, 0, 1, 0}; !reflect.DeepEqual(models[1].Mesh.Positions, want) {
		t.Errorf("second mesh positions = %v, want %v", models[1].Mesh.Positions, want)
	}
}

func TestParseObjNegativeIndices(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n")

	models, materials, err := ParseObj(path)
	if err != nil {
		t.Fatalf("ParseObj failed: %v", err)
	}
	if len(materials) != 0 {
		t.Errorf("got %d materials, want 0", len(materials))
	}
	if len(models) != 1 {
		t.Fatalf("got %d models, want 1", len(models))
	}
	m := models[0]
	if m.Name != "unnamed_object" {
		t.Errorf("name = %q, want unnamed_object", m.Name)
	}
	if want := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}; !reflect.DeepEqual(m.Mesh.Positions, want) {
		t.Errorf("positions = %v, want %v", m.Mesh.Positions, want)
	}
	if len(m.Mesh.Texcoords) != 0 || len(m.Mesh.Normals) != 0 {
		t.Errorf("expected no texcoords and normals, got %d and %d values", len(m.Mesh.Texcoords), len(m.Mesh.Normals))
	}
	if m.Mesh.MaterialID != nil {
		t.Errorf("material id = %d, want nil", *m.Mesh.MaterialID)
	}
}

func TestParseObjDeduplicatesSharedVertices(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "strip.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 3\nf 2 4 3\n")

	models, _, err := ParseObj(path)
	if err != nil {
		t.Fatalf("ParseObj failed: %v", err)
	}
	m := models[0]
	if got := len(m.Mesh.Positions) / 3; got != 4 {
		t.Errorf("got %d vertices, want 4", got)
	}
	if want := []uint32{0, 1, 2, 1, 3, 2}; !reflect.DeepEqual(m.Mesh.Indices, want) {
		t.Errorf("indices = %v, want %v", m.Mesh.Indices, want)
	}
}

func TestParseObjErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 5\n", 4},
		{"too few position values", "v 0 0\n", 1},
		{"not a number", "v 0 a 0\n", 1},
		{"degenerate face", "v 0 0 0\nv 1 0 0\nf 1 2\n", 3},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4},
		{"missing material library", "mtllib nowhere.mtl\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, t.TempDir(), "bad.obj", tt.content)
			_, _, err := ParseObj(path)
			if !errors.Is(err, core.ErrParse) {
				t.Fatalf("expected a parse error, got %v", err)
			}
			var pe *core.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *core.ParseError, got %T", err)
			}
			if pe.Line != tt.line {
				t.Errorf("line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}

func TestParseObjMissingFile(t *testing.T) {
	_, _, err := ParseObj(filepath.Join(t.TempDir(), "missing.obj"))
	if !errors.Is(err, core.ErrParse) {
		t.Fatalf("expected a parse error, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the cause to be kept, got %v", err)
	}
}

func TestParseMtl(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "materials.mtl", `# exported
newmtl Brick
Ka 0.1 0.1 0.1
Kd 0.8 0.5 0.2
Ns 32
illum 2
map_Kd textures/brick diffuse.png
map_Bump brick_n.png

newmtl Glass
d 0.25
norm	glass_n.png
`)

	materials, err := ParseMtl(path)
	if err != nil {
		t.Fatalf("ParseMtl failed: %v", err)
	}
	if len(materials) != 2 {
		t.Fatalf("got %d materials, want 2", len(materials))
	}

	brick := materials[0]
	if brick.Name != "Brick" {
		t.Errorf("name = %q, want Brick", brick.Name)
	}
	if want := [3]float32{0.8, 0.5, 0.2}; brick.Diffuse != want {
		t.Errorf("diffuse = %v, want %v", brick.Diffuse, want)
	}
	if brick.Shininess != 32 || brick.Illumination != 2 {
		t.Errorf("shininess/illum = %v/%v, want 32/2", brick.Shininess, brick.Illumination)
	}
	if brick.Dissolve != 1 {
		t.Errorf("dissolve = %v, want the default 1", brick.Dissolve)
	}
	if brick.DiffuseTexture != "textures/brick diffuse.png" {
		t.Errorf("diffuse texture = %q", brick.DiffuseTexture)
	}
	if brick.NormalTexture != "" {
		t.Errorf("normal texture = %q, want empty", brick.NormalTexture)
	}
	if got := brick.UnknownParams["map_Bump"]; got != "brick_n.png" {
		t.Errorf("map_Bump = %q, want brick_n.png", got)
	}

	glass := materials[1]
	if glass.Dissolve != 0.25 {
		t.Errorf("dissolve = %v, want 0.25", glass.Dissolve)
	}
	if glass.NormalTexture != "glass_n.png" {
		t.Errorf("normal texture = %q, want glass_n.png", glass.NormalTexture)
	}
}

func TestParseMtlErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"statement before newmtl", "Kd 1 1 1\n"},
		{"short colour", "newmtl A\nKd 1 1\n"},
		{"bad shininess", "newmtl A\nNs shiny\n"},
		{"bad illum", "newmtl A\nillum 2.5\n"},
		{"unnamed material", "newmtl\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, t.TempDir(), "bad.mtl", tt.content)
			if _, err := ParseMtl(path); !errors.Is(err, core.ErrParse) {
				t.Fatalf("expected a parse error, got %v", err)
			}
		})
	}
}

func TestResolveNormalMap(t *testing.T) {
	tests := []struct {
		name    string
		mat     *ObjMaterial
		want    string
		missing bool
	}{
		{"normal map", &ObjMaterial{Name: "a", NormalTexture: "n.png", UnknownParams: map[string]string{"map_Bump": "b.png"}}, "n.png", false},
		{"bump fallback", &ObjMaterial{Name: "b", UnknownParams: map[string]string{"map_Bump": "b.png"}}, "b.png", false},
		{"neither", &ObjMaterial{Name: "c", UnknownParams: map[string]string{"bump": "x.png"}}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveNormalMap(tt.mat)
			if tt.missing {
				if !errors.Is(err, core.ErrMissingNormalMap) {
					t.Fatalf("expected a missing normal map error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
