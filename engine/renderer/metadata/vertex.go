package metadata

import (
	"unsafe"

	"github.com/spaghettifunk/anima-models/engine/math"
)

type VertexFormat int

const (
	VertexFormatFloat2 VertexFormat = iota
	VertexFormatFloat3
)

// Size returns the number of bytes taken by one attribute of the format.
func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFormatFloat2:
		return 2 * uint64(unsafe.Sizeof(float32(0)))
	case VertexFormatFloat3:
		return 3 * uint64(unsafe.Sizeof(float32(0)))
	default:
		return 0
	}
}

func (f VertexFormat) String() string {
	switch f {
	case VertexFormatFloat2:
		return "Float2"
	case VertexFormatFloat3:
		return "Float3"
	default:
		return "Unknown"
	}
}

type VertexStepMode int

const (
	VertexStepModeVertex VertexStepMode = iota
	VertexStepModeInstance
)

type VertexAttribute struct {
	ShaderLocation uint32
	Offset         uint64
	Format         VertexFormat
}

/**
 * @brief Describes how a pipeline reads one vertex buffer.
 */
type VertexBufferLayout struct {
	/** @brief The size of one vertex in bytes. */
	ArrayStride uint64
	StepMode    VertexStepMode
	Attributes  []VertexAttribute
}

/** @brief Implemented by vertex types which can describe their own GPU layout. */
type VertexLayout interface {
	Layout() VertexBufferLayout
}

// ModelVertex is the vertex type produced by the model loader.
type ModelVertex math.Vertex3D

func (ModelVertex) Layout() VertexBufferLayout {
	return ModelVertexLayout()
}

// ModelVertexLayout describes math.Vertex3D: position at location 0, texture
// coordinate at location 1 and normal at location 2.
func ModelVertexLayout() VertexBufferLayout {
	var v math.Vertex3D
	return VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(v)),
		StepMode:    VertexStepModeVertex,
		Attributes: []VertexAttribute{
			{
				ShaderLocation: 0,
				Offset:         uint64(unsafe.Offsetof(v.Position)),
				Format:         VertexFormatFloat3,
			},
			{
				ShaderLocation: 1,
				Offset:         uint64(unsafe.Offsetof(v.Texcoord)),
				Format:         VertexFormatFloat2,
			},
			{
				ShaderLocation: 2,
				Offset:         uint64(unsafe.Offsetof(v.Normal)),
				Format:         VertexFormatFloat3,
			},
		},
	}
}

// ToBytes reinterprets a slice of plain values as its raw memory, ready to be
// copied into a GPU buffer.
func ToBytes[E any](s []E) []byte {
	if len(s) == 0 {
		return nil
	}
	var e E
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(e)))
}
