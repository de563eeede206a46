package loaders

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

/**
 * @brief Loads a standalone MTL library. Textures are not touched: the
 * resource only describes the materials, ready to be checked before a model
 * referencing them is loaded.
 */
type MaterialLibraryLoader struct{}

func (ml *MaterialLibraryLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	materials, err := ParseMtl(path)
	if err != nil {
		return nil, err
	}
	for i, material := range materials {
		if err := validateMaterial(material); err != nil {
			return nil, &core.ParseError{Path: path, Err: fmt.Errorf("material %d (%s): %w", i, material.Name, err)}
		}
	}
	return &metadata.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(materials)),
		Data:     materials,
	}, nil
}

func validateMaterial(material *ObjMaterial) error {
	// Check that colour values are within [0.0, 1.0] range
	for name, colour := range map[string][3]float32{"Ka": material.Ambient, "Kd": material.Diffuse, "Ks": material.Specular} {
		if !isValidColour(colour) {
			return fmt.Errorf("%s values must be between 0.0 and 1.0", name)
		}
	}
	if material.Shininess < 0 {
		return fmt.Errorf("shininess must be a non-negative value")
	}
	if !inRange(material.Dissolve) {
		return fmt.Errorf("dissolve must be between 0.0 and 1.0")
	}
	if material.DiffuseTexture == "" {
		return fmt.Errorf("diffuse map is required")
	}
	if _, err := resolveNormalMap(material); err != nil {
		return err
	}
	return nil
}

func isValidColour(v [3]float32) bool {
	return inRange(v[0]) && inRange(v[1]) && inRange(v[2])
}

func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}

func (ml *MaterialLibraryLoader) Unload(*metadata.Resource) error {
	return nil
}
