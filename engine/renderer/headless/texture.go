package headless

import (
	"github.com/spaghettifunk/anima-models/engine/assets/loaders"
	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

type TextureView struct {
	device    *Device
	Name      string
	Pixels    []uint8
	destroyed bool
}

func (v *TextureView) Destroyed() bool { return v.destroyed }

func (v *TextureView) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	v.device.release()
}

type Sampler struct {
	device    *Device
	Filter    metadata.TextureFilter
	Repeat    metadata.TextureRepeat
	destroyed bool
}

func (s *Sampler) Destroyed() bool { return s.destroyed }

func (s *Sampler) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.device.release()
}

/**
 * @brief A deferred texture upload. It only records what a GPU backend would
 * copy until the device submits or discards it.
 */
type UploadCommand struct {
	device    *Device
	Texture   string
	Size      uint64
	Submitted bool
	Discarded bool
}

func (c *UploadCommand) Discard() {
	c.device.mu.Lock()
	defer c.device.mu.Unlock()
	if c.Submitted || c.Discarded {
		return
	}
	c.Discarded = true
	c.device.discarded++
}

// LoadTexture decodes the image at path and creates a view and a sampler for
// it. Decoding failures are reported as *core.TextureLoadError.
func (d *Device) LoadTexture(path string, use metadata.TextureUse) (*metadata.Texture, metadata.CommandBuffer, error) {
	img, err := loaders.DecodeImage(path, d.Textures.FlipY)
	if err != nil {
		return nil, nil, &core.TextureLoadError{Path: path, Err: err}
	}

	view := &TextureView{device: d, Name: path, Pixels: img.Pixels}
	sampler := &Sampler{
		device: d,
		Filter: metadata.ParseTextureFilter(d.Textures.Filter),
		Repeat: metadata.ParseTextureRepeat(d.Textures.Repeat),
	}
	d.mu.Lock()
	d.live += 2
	d.recorded++
	d.mu.Unlock()

	core.LogDebug("Decoded %s texture %s (%dx%d).", use, path, img.Width, img.Height)

	texture := &metadata.Texture{
		Name:         path,
		Width:        img.Width,
		Height:       img.Height,
		ChannelCount: img.ChannelCount,
		Use:          use,
		View:         view,
		Sampler:      sampler,
	}
	return texture, &UploadCommand{device: d, Texture: path, Size: uint64(len(img.Pixels))}, nil
}
