package metadata

/** @brief The key modeling tools use for bump/normal maps in MTL files. */
const NormalMapFallbackKey string = "map_Bump"

/** @brief Slots of a material resource group. Pipelines must declare the same layout. */
const (
	MaterialBindingDiffuseView    uint32 = 0
	MaterialBindingDiffuseSampler uint32 = 1
	MaterialBindingNormalView     uint32 = 2
	MaterialBindingNormalSampler  uint32 = 3
	MaterialBindingCount          uint32 = 4
)

/**
 * @brief A material of a loaded model: a diffuse and a normal map bound
 * together into one resource group.
 */
type Material struct {
	/** @brief The material name. */
	Name string
	/** @brief The diffuse texture map. */
	DiffuseTexture *Texture
	/** @brief The normal texture map. */
	NormalTexture *Texture
	/** @brief The group binding both textures, consumed by the draw dispatcher. */
	ResourceGroup ResourceGroup
}

func (m *Material) Destroy() {
	if m.ResourceGroup != nil {
		m.ResourceGroup.Destroy()
		m.ResourceGroup = nil
	}
	m.DiffuseTexture.Destroy()
	m.DiffuseTexture = nil
	m.NormalTexture.Destroy()
	m.NormalTexture = nil
}
