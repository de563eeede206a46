package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-models/engine/core"
)

/**
 * @brief Geometry of one OBJ object (or one material segment of it) with a
 * single index per vertex. Positions and Normals hold 3 floats per vertex,
 * Texcoords 2.
 */
type ObjMesh struct {
	Positions []float32
	Texcoords []float32
	Normals   []float32
	Indices   []uint32
	/** @brief Index into the material list, nil when no known material is used. */
	MaterialID *int
}

type ObjModel struct {
	Name string
	Mesh ObjMesh
}

/**
 * @brief A material record of an MTL library. Keys the parser does not know
 * are kept verbatim in UnknownParams.
 */
type ObjMaterial struct {
	Name string
	/** @brief The path of the MTL file the material was read from. */
	Library          string
	Ambient          [3]float32
	Diffuse          [3]float32
	Specular         [3]float32
	Shininess        float32
	Dissolve         float32
	Illumination     int
	AmbientTexture   string
	DiffuseTexture   string
	SpecularTexture  string
	NormalTexture    string
	ShininessTexture string
	DissolveTexture  string
	UnknownParams    map[string]string
}

// objVertex references a position, texcoord and normal; -1 marks an absent element.
type objVertex [3]int

type objBuilder struct {
	path      string
	positions [][3]float32
	texcoords [][2]float32
	normals   [][3]float32

	name         string
	materialName string
	faces        [][]objVertex

	models    []*ObjModel
	materials []*ObjMaterial
}

// ParseObj reads an OBJ file and the MTL libraries it references. Material
// libraries are resolved relative to the OBJ file. Every failure is returned
// as a *core.ParseError.
func ParseObj(path string) ([]*ObjModel, []*ObjMaterial, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, &core.ParseError{Path: path, Err: err}
	}
	defer file.Close()

	b := &objBuilder{path: path, name: "unnamed_object"}
	if err := b.parse(file); err != nil {
		return nil, nil, err
	}
	b.flush()

	return b.models, b.materials, nil
}

func (b *objBuilder) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return core.NewParseError(b.path, lineNo, "invalid position: %v", err)
			}
			b.positions = append(b.positions, [3]float32{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 1)
			if err != nil {
				return core.NewParseError(b.path, lineNo, "invalid texture coordinate: %v", err)
			}
			tc := [2]float32{v[0], 0}
			if len(v) > 1 {
				tc[1] = v[1]
			}
			b.texcoords = append(b.texcoords, tc)
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return core.NewParseError(b.path, lineNo, "invalid normal: %v", err)
			}
			b.normals = append(b.normals, [3]float32{v[0], v[1], v[2]})
		case "f":
			if len(fields) < 4 {
				return core.NewParseError(b.path, lineNo, "face needs at least 3 vertices, got %d", len(fields)-1)
			}
			face := make([]objVertex, 0, len(fields)-1)
			for _, token := range fields[1:] {
				v, err := b.parseFaceVertex(token)
				if err != nil {
					return core.NewParseError(b.path, lineNo, "invalid face vertex '%s': %v", token, err)
				}
				face = append(face, v)
			}
			b.faces = append(b.faces, face)
		case "o", "g":
			b.flush()
			if len(fields) > 1 {
				b.name = strings.Join(fields[1:], " ")
			}
		case "usemtl":
			if len(fields) < 2 {
				return core.NewParseError(b.path, lineNo, "usemtl without a material name")
			}
			name := strings.Join(fields[1:], " ")
			if name != b.materialName {
				b.flush()
				b.materialName = name
			}
		case "mtllib":
			if len(fields) < 2 {
				return core.NewParseError(b.path, lineNo, "mtllib without a file name")
			}
			for _, lib := range fields[1:] {
				mats, err := ParseMtl(filepath.Join(filepath.Dir(b.path), lib))
				if err != nil {
					return err
				}
				b.materials = append(b.materials, mats...)
			}
		case "s", "l", "p":
			// smoothing groups, lines and points carry nothing the renderer uses
		default:
			core.LogWarn("Unknown statement '%s' found in %s:%d. Skipping...", fields[0], b.path, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return &core.ParseError{Path: b.path, Line: lineNo, Err: err}
	}
	return nil
}

// parseFaceVertex handles "v", "v/vt", "v//vn" and "v/vt/vn", with negative
// indices counting back from the last element read so far.
func (b *objBuilder) parseFaceVertex(token string) (objVertex, error) {
	v := objVertex{-1, -1, -1}
	parts := strings.Split(token, "/")
	if len(parts) > 3 {
		return v, strconv.ErrSyntax
	}
	counts := [3]int{len(b.positions), len(b.texcoords), len(b.normals)}
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return v, strconv.ErrSyntax
			}
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			return v, err
		}
		resolved, err := resolveIndex(idx, counts[i])
		if err != nil {
			return v, err
		}
		v[i] = resolved
	}
	return v, nil
}

func resolveIndex(idx, count int) (int, error) {
	switch {
	case idx > 0 && idx <= count:
		return idx - 1, nil
	case idx < 0 && -idx <= count:
		return count + idx, nil
	default:
		return 0, fmt.Errorf("index %d out of range (%d elements)", idx, count)
	}
}

// flush turns the faces collected so far into a model with unified indices.
func (b *objBuilder) flush() {
	if len(b.faces) == 0 {
		return
	}

	mesh := ObjMesh{}
	seen := make(map[objVertex]uint32)
	emit := func(v objVertex) {
		if idx, ok := seen[v]; ok {
			mesh.Indices = append(mesh.Indices, idx)
			return
		}
		idx := uint32(len(mesh.Positions) / 3)
		p := b.positions[v[0]]
		mesh.Positions = append(mesh.Positions, p[0], p[1], p[2])
		if v[1] >= 0 {
			tc := b.texcoords[v[1]]
			mesh.Texcoords = append(mesh.Texcoords, tc[0], tc[1])
		}
		if v[2] >= 0 {
			n := b.normals[v[2]]
			mesh.Normals = append(mesh.Normals, n[0], n[1], n[2])
		}
		seen[v] = idx
		mesh.Indices = append(mesh.Indices, idx)
	}

	for _, face := range b.faces {
		// fan triangulation
		for i := 1; i+1 < len(face); i++ {
			emit(face[0])
			emit(face[i])
			emit(face[i+1])
		}
	}

	if b.materialName != "" {
		id := slices.IndexFunc(b.materials, func(m *ObjMaterial) bool { return m.Name == b.materialName })
		if id >= 0 {
			mesh.MaterialID = &id
		} else {
			core.LogWarn("Material '%s' used by '%s' is not defined in any material library.", b.materialName, b.name)
		}
	}

	b.models = append(b.models, &ObjModel{Name: b.name, Mesh: mesh})
	b.faces = nil
}

// ParseMtl reads a material library.
func ParseMtl(path string) ([]*ObjMaterial, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &core.ParseError{Path: path, Err: err}
	}
	defer file.Close()

	var materials []*ObjMaterial
	var current *ObjMaterial

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		key := strings.Fields(line)[0]
		value := strings.TrimSpace(line[len(key):])

		if key == "newmtl" {
			if value == "" {
				return nil, core.NewParseError(path, lineNo, "newmtl without a material name")
			}
			current = &ObjMaterial{
				Name:          value,
				Library:       path,
				Dissolve:      1,
				UnknownParams: make(map[string]string),
			}
			materials = append(materials, current)
			continue
		}
		if current == nil {
			return nil, core.NewParseError(path, lineNo, "'%s' found before any newmtl", key)
		}

		switch key {
		case "Ka", "Kd", "Ks":
			v, err := parseFloats(strings.Fields(value), 3)
			if err != nil {
				return nil, core.NewParseError(path, lineNo, "invalid %s: %v", key, err)
			}
			colour := [3]float32{v[0], v[1], v[2]}
			switch key {
			case "Ka":
				current.Ambient = colour
			case "Kd":
				current.Diffuse = colour
			case "Ks":
				current.Specular = colour
			}
		case "Ns", "d":
			v, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return nil, core.NewParseError(path, lineNo, "invalid %s: %v", key, err)
			}
			if key == "Ns" {
				current.Shininess = float32(v)
			} else {
				current.Dissolve = float32(v)
			}
		case "illum":
			v, err := strconv.Atoi(value)
			if err != nil {
				return nil, core.NewParseError(path, lineNo, "invalid illum: %v", err)
			}
			current.Illumination = v
		case "map_Ka":
			current.AmbientTexture = value
		case "map_Kd":
			current.DiffuseTexture = value
		case "map_Ks":
			current.SpecularTexture = value
		case "map_Ns":
			current.ShininessTexture = value
		case "map_d":
			current.DissolveTexture = value
		case "norm":
			current.NormalTexture = value
		default:
			current.UnknownParams[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &core.ParseError{Path: path, Line: lineNo, Err: err}
	}
	return materials, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// parseFloats parses at least min values.
func parseFloats(fields []string, min int) ([]float32, error) {
	if len(fields) < min {
		return nil, fmt.Errorf("expected at least %d values, got %d", min, len(fields))
	}
	out := make([]float32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, float32(v))
	}
	return out, nil
}
