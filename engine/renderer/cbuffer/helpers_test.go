package cbuffer

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

func constant(name string, t metadata.ConstantType, rows, columns, offset uint32) metadata.ConstantDesc {
	size := rows * columns * t.ScalarSize()
	return metadata.ConstantDesc{
		Name:          name,
		Type:          t,
		Rows:          rows,
		Columns:       columns,
		Elements:      1,
		ElementLength: size,
		TotalLength:   size,
		Offset:        offset,
		Alignment:     t.ScalarSize(),
	}
}

func array(c metadata.ConstantDesc, dims ...uint32) metadata.ConstantDesc {
	c.IsArray = true
	c.ArrayDimensions = dims
	c.Elements = 1
	for _, d := range dims {
		c.Elements *= d
	}
	c.TotalLength = c.ElementLength * c.Elements
	return c
}

func structure(name string, handle metadata.TypeHandle, length, offset uint32) metadata.ConstantDesc {
	return metadata.ConstantDesc{
		Name:          name,
		UDT:           handle,
		IsUDT:         true,
		Elements:      1,
		ElementLength: length,
		TotalLength:   length,
		Offset:        offset,
	}
}

func bufferDesc(name string, length, globalOffset uint32, constants ...metadata.ConstantDesc) metadata.ConstantBufferDesc {
	return metadata.ConstantBufferDesc{
		ConstantTypeDesc: metadata.ConstantTypeDesc{Name: name, Length: length, Constants: constants},
		GlobalOffset:     globalOffset,
		BindVS:           true,
	}
}

func mustLoad(t *testing.T, desc metadata.ConstantBufferDesc, types ...metadata.ConstantTypeDesc) *ConstantBuffer {
	t.Helper()
	cb := New(desc, types, core.LinkerConfig{})
	if err := cb.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cb
}

func floatAt(data []byte, index int) float32 {
	return stdmath.Float32frombits(binary.LittleEndian.Uint32(data[index*4:]))
}

func registerFloats(reg [16]byte) [4]float32 {
	var out [4]float32
	for i := range out {
		out[i] = floatAt(reg[:], i)
	}
	return out
}

func ints(values ...int32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
	}
	return out
}

// lightTypes describes
//
//	struct Light { float3 position; float intensity; float4 color; }
func lightTypes() []metadata.ConstantTypeDesc {
	return []metadata.ConstantTypeDesc{
		{
			Name:      "Light",
			Length:    32,
			Alignment: 4,
			Constants: []metadata.ConstantDesc{
				constant("position", metadata.ConstantTypeFloat, 1, 3, 0),
				constant("intensity", metadata.ConstantTypeFloat, 1, 1, 12),
				constant("color", metadata.ConstantTypeFloat, 1, 4, 16),
			},
		},
	}
}

func lightingDesc() metadata.ConstantBufferDesc {
	lights := structure("lights", 0, 32, 4)
	lights.IsArray = true
	lights.ArrayDimensions = []uint32{2}
	lights.Elements = 2
	lights.TotalLength = 64
	return bufferDesc("cbLighting", 68, 0,
		constant("ambient", metadata.ConstantTypeFloat, 1, 1, 0),
		lights,
	)
}
