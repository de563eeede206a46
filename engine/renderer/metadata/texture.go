package metadata

/** @brief A collection of texture uses */
type TextureUse int

const (
	/** @brief An unknown use. This is default, but should never actually be used. */
	TextureUseUnknown TextureUse = 0x00
	/** @brief The texture is used as a diffuse map. */
	TextureUseMapDiffuse TextureUse = 0x01
	/** @brief The texture is used as a normal map. */
	TextureUseMapNormal TextureUse = 0x03
)

func (u TextureUse) String() string {
	switch u {
	case TextureUseMapDiffuse:
		return "diffuse"
	case TextureUseMapNormal:
		return "normal"
	default:
		return "unknown"
	}
}

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

type TextureRepeat int

const (
	TextureRepeatRepeat         TextureRepeat = 0x1
	TextureRepeatMirroredRepeat TextureRepeat = 0x2
	TextureRepeatClampToEdge    TextureRepeat = 0x3
	TextureRepeatClampToBorder  TextureRepeat = 0x4
)

func ParseTextureFilter(s string) TextureFilter {
	if s == "nearest" {
		return TextureFilterModeNearest
	}
	return TextureFilterModeLinear
}

func ParseTextureRepeat(s string) TextureRepeat {
	switch s {
	case "mirrored_repeat":
		return TextureRepeatMirroredRepeat
	case "clamp_to_edge":
		return TextureRepeatClampToEdge
	case "clamp_to_border":
		return TextureRepeatClampToBorder
	default:
		return TextureRepeatRepeat
	}
}

/**
 * @brief Represents a texture resident on the device, together with the view
 * and the sampler shaders use to read it. The owning material releases it.
 */
type Texture struct {
	/** @brief The texture Name, usually the path it was loaded from. */
	Name string
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	Use          TextureUse
	View         TextureView
	Sampler      Sampler
}

func (t *Texture) Destroy() {
	if t == nil {
		return
	}
	if t.Sampler != nil {
		t.Sampler.Destroy()
		t.Sampler = nil
	}
	if t.View != nil {
		t.View.Destroy()
		t.View = nil
	}
}
