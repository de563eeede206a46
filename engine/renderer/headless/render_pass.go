package headless

import (
	"github.com/spaghettifunk/anima-models/engine/renderer"
	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

type CommandKind int

const (
	CommandSetVertexBuffer CommandKind = iota
	CommandSetIndexBuffer
	CommandSetResourceGroup
	CommandDrawIndexed
)

func (k CommandKind) String() string {
	switch k {
	case CommandSetVertexBuffer:
		return "set_vertex_buffer"
	case CommandSetIndexBuffer:
		return "set_index_buffer"
	case CommandSetResourceGroup:
		return "set_resource_group"
	case CommandDrawIndexed:
		return "draw_indexed"
	}
	return "unknown"
}

/**
 * @brief One recorded render pass call. Only the fields relevant to Kind are set.
 */
type Command struct {
	Kind        CommandKind
	Slot        uint32
	Buffer      metadata.Buffer
	IndexFormat renderer.IndexFormat
	Group       metadata.ResourceGroup
	Indices     renderer.Range
	BaseVertex  int32
	Instances   renderer.Range
}

// RenderPass records every call in order.
type RenderPass struct {
	Commands []Command
}

func (p *RenderPass) SetVertexBuffer(slot uint32, buffer metadata.Buffer) {
	p.Commands = append(p.Commands, Command{Kind: CommandSetVertexBuffer, Slot: slot, Buffer: buffer})
}

func (p *RenderPass) SetIndexBuffer(buffer metadata.Buffer, format renderer.IndexFormat) {
	p.Commands = append(p.Commands, Command{Kind: CommandSetIndexBuffer, Buffer: buffer, IndexFormat: format})
}

func (p *RenderPass) SetResourceGroup(index uint32, group metadata.ResourceGroup) {
	p.Commands = append(p.Commands, Command{Kind: CommandSetResourceGroup, Slot: index, Group: group})
}

func (p *RenderPass) DrawIndexed(indices renderer.Range, baseVertex int32, instances renderer.Range) {
	p.Commands = append(p.Commands, Command{Kind: CommandDrawIndexed, Indices: indices, BaseVertex: baseVertex, Instances: instances})
}

/** @brief The recorded draw calls, without the bind calls around them. */
func (p *RenderPass) Draws() []Command {
	var draws []Command
	for _, c := range p.Commands {
		if c.Kind == CommandDrawIndexed {
			draws = append(draws, c)
		}
	}
	return draws
}

func (p *RenderPass) Reset() {
	p.Commands = p.Commands[:0]
}
