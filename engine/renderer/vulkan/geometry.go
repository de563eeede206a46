package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-models/engine/renderer/metadata"
)

func vertexFormat(format metadata.VertexFormat) (vk.Format, error) {
	switch format {
	case metadata.VertexFormatFloat2:
		return vk.FormatR32g32Sfloat, nil
	case metadata.VertexFormatFloat3:
		return vk.FormatR32g32b32Sfloat, nil
	default:
		return vk.FormatUndefined, fmt.Errorf("unsupported vertex format %s", format)
	}
}

// VertexInputDescriptions converts a vertex buffer layout into the binding and
// attribute descriptions a graphics pipeline is created with.
func VertexInputDescriptions(binding uint32, layout metadata.VertexBufferLayout) (vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription, error) {
	bindingDescription := vk.VertexInputBindingDescription{
		Binding:   binding,
		Stride:    uint32(layout.ArrayStride),
		InputRate: vk.VertexInputRateVertex, // Move to next data entry for each vertex.
	}
	if layout.StepMode == metadata.VertexStepModeInstance {
		bindingDescription.InputRate = vk.VertexInputRateInstance
	}

	attributes := make([]vk.VertexInputAttributeDescription, len(layout.Attributes))
	for i, attribute := range layout.Attributes {
		format, err := vertexFormat(attribute.Format)
		if err != nil {
			return vk.VertexInputBindingDescription{}, nil, fmt.Errorf("attribute %d: %w", i, err)
		}
		attributes[i] = vk.VertexInputAttributeDescription{
			Location: attribute.ShaderLocation,
			Binding:  binding,
			Format:   format,
			Offset:   uint32(attribute.Offset),
		}
	}
	return bindingDescription, attributes, nil
}
