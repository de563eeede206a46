package headless

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-models/engine/core"
	"github.com/spaghettifunk/anima-models/engine/renderer"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

/**
 * @brief A renderer backend without a GPU. Buffers keep their contents in
 * memory and every live resource is counted, which makes it the device of
 * choice for tools and tests.
 */
type Device struct {
	mu sync.Mutex

	live      int
	buffers   []*Buffer
	groups    []*ResourceGroup
	recorded  int
	submitted int
	discarded int

	Textures core.TextureConfig

	/** @brief When set, buffer creation fails whenever it returns an error. */
	FailBuffer func(desc *renderer.BufferInitDescriptor) error
	/** @brief When set, resource group creation fails whenever it returns an error. */
	FailResourceGroup func(desc *renderer.ResourceGroupDescriptor) error
}

func NewDevice(textures core.TextureConfig) *Device {
	return &Device{Textures: textures}
}

/**
 * @brief The layout of a resource group: the number of slots it expects.
 */
type Layout struct {
	Bindings uint32
}

func NewMaterialLayout() *Layout {
	return &Layout{Bindings: metadata.MaterialBindingCount}
}

/** @brief A layout with a single uniform buffer slot. */
func NewUniformLayout() *Layout {
	return &Layout{Bindings: 1}
}

type Buffer struct {
	device    *Device
	Label     string
	Contents  []byte
	usage     metadata.BufferUsage
	destroyed bool
}

func (b *Buffer) Size() uint64                { return uint64(len(b.Contents)) }
func (b *Buffer) Usage() metadata.BufferUsage { return b.usage }
func (b *Buffer) Destroyed() bool             { return b.destroyed }

func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.device.release()
}

type ResourceGroup struct {
	device    *Device
	Label     string
	Entries   []renderer.ResourceGroupEntry
	destroyed bool
}

func (g *ResourceGroup) Destroyed() bool { return g.destroyed }

func (g *ResourceGroup) Destroy() {
	if g.destroyed {
		return
	}
	g.destroyed = true
	g.device.release()
}

func (d *Device) CreateBufferInit(desc *renderer.BufferInitDescriptor) (metadata.Buffer, error) {
	if d.FailBuffer != nil {
		if err := d.FailBuffer(desc); err != nil {
			return nil, err
		}
	}
	if len(desc.Contents) == 0 {
		return nil, fmt.Errorf("buffer '%s' has no contents", desc.Label)
	}

	contents := make([]byte, len(desc.Contents))
	copy(contents, desc.Contents)
	buffer := &Buffer{
		device:   d,
		Label:    desc.Label,
		Contents: contents,
		usage:    desc.Usage,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.live++
	d.buffers = append(d.buffers, buffer)
	return buffer, nil
}

// CreateResourceGroup checks the entries against the layout: bindings must be
// consecutive from 0 and each entry must hold one of a view, a sampler and a
// uniform buffer.
func (d *Device) CreateResourceGroup(desc *renderer.ResourceGroupDescriptor) (metadata.ResourceGroup, error) {
	if d.FailResourceGroup != nil {
		if err := d.FailResourceGroup(desc); err != nil {
			return nil, err
		}
	}
	if layout, ok := desc.Layout.(*Layout); ok && uint32(len(desc.Entries)) != layout.Bindings {
		return nil, fmt.Errorf("resource group '%s': layout expects %d entries, got %d", desc.Label, layout.Bindings, len(desc.Entries))
	}
	for i, entry := range desc.Entries {
		if entry.Binding != uint32(i) {
			return nil, fmt.Errorf("resource group '%s': entry %d has binding %d", desc.Label, i, entry.Binding)
		}
		set := 0
		for _, present := range []bool{entry.TextureView != nil, entry.Sampler != nil, entry.Buffer != nil} {
			if present {
				set++
			}
		}
		if set != 1 {
			return nil, fmt.Errorf("resource group '%s': binding %d must hold exactly one of view, sampler and buffer", desc.Label, entry.Binding)
		}
		if entry.Buffer != nil && entry.Buffer.Usage()&metadata.BufferUsageUniform == 0 {
			return nil, fmt.Errorf("resource group '%s': buffer at binding %d is not a uniform buffer", desc.Label, entry.Binding)
		}
	}

	entries := make([]renderer.ResourceGroupEntry, len(desc.Entries))
	copy(entries, desc.Entries)
	group := &ResourceGroup{
		device:  d,
		Label:   desc.Label,
		Entries: entries,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.live++
	d.groups = append(d.groups, group)
	return group, nil
}

// SubmitUploads marks the upload commands as executed.
func (d *Device) SubmitUploads(commands []metadata.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range commands {
		cmd, ok := c.(*UploadCommand)
		if !ok {
			return fmt.Errorf("headless device cannot submit %T", c)
		}
		if cmd.Submitted {
			return fmt.Errorf("upload of %s was already submitted", cmd.Texture)
		}
		if cmd.Discarded {
			return fmt.Errorf("upload of %s was discarded", cmd.Texture)
		}
		cmd.Submitted = true
		d.submitted++
	}
	return nil
}

/** @brief The number of created resources which have not been destroyed yet. */
func (d *Device) LiveResources() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

func (d *Device) SubmittedUploads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitted
}

/** @brief The number of recorded uploads which were neither submitted nor discarded. */
func (d *Device) PendingUploads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recorded - d.submitted - d.discarded
}

/** @brief Every buffer created so far, destroyed ones included, in creation order. */
func (d *Device) Buffers() []*Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Buffer(nil), d.buffers...)
}

func (d *Device) ResourceGroups() []*ResourceGroup {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*ResourceGroup(nil), d.groups...)
}

func (d *Device) release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live--
}
