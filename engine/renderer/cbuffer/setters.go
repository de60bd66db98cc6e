package cbuffer

import (
	"encoding/binary"
	"fmt"
	stdmath "math"

	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/math"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

// setValue writes the encoded value of a single element into the constant
// named by path.
func (cb *ConstantBuffer) setValue(path string, t metadata.ConstantType, data []byte) error {
	if !cb.loaded {
		return fmt.Errorf("set '%s': %w", path, core.ErrBufferNotLoaded)
	}
	if cb.locked {
		return fmt.Errorf("set '%s': %w", path, core.ErrBufferLocked)
	}
	c, offset, err := cb.ConstantDesc(path)
	if err != nil {
		return err
	}
	if c.IsUDT || c.Type != t {
		return fmt.Errorf("set '%s' with a %s value: %w", path, t, core.ErrConstantTypeMismatch)
	}
	if uint32(len(data)) > c.ElementLength {
		return fmt.Errorf("set '%s': %d bytes into a %d byte element: %w", path, len(data), c.ElementLength, core.ErrOutOfRange)
	}
	if uint64(offset)+uint64(len(data)) > uint64(len(cb.systemBuffer)) {
		return fmt.Errorf("set '%s' at %d: %w", path, offset, core.ErrOutOfRange)
	}
	copy(cb.systemBuffer[offset:], data)
	cb.dirty = true
	return nil
}

func encodeFloats(values ...float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], stdmath.Float32bits(v))
	}
	return out
}

func (cb *ConstantBuffer) SetFloat(name string, v float32) error {
	return cb.setValue(name, metadata.ConstantTypeFloat, encodeFloats(v))
}

func (cb *ConstantBuffer) SetFloats(name string, values []float32) error {
	return cb.setValue(name, metadata.ConstantTypeFloat, encodeFloats(values...))
}

func (cb *ConstantBuffer) SetInt(name string, v int32) error {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, uint32(v))
	return cb.setValue(name, metadata.ConstantTypeInt, out)
}

func (cb *ConstantBuffer) SetUInt(name string, v uint32) error {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return cb.setValue(name, metadata.ConstantTypeUInt, out)
}

func (cb *ConstantBuffer) SetBool(name string, v bool) error {
	out := []byte{0}
	if v {
		out[0] = 1
	}
	return cb.setValue(name, metadata.ConstantTypeBool, out)
}

func (cb *ConstantBuffer) SetVector2(name string, v math.Vec2) error {
	return cb.setValue(name, metadata.ConstantTypeFloat, encodeFloats(v.Elements()...))
}

func (cb *ConstantBuffer) SetVector3(name string, v math.Vec3) error {
	return cb.setValue(name, metadata.ConstantTypeFloat, encodeFloats(v.Elements()...))
}

func (cb *ConstantBuffer) SetVector4(name string, v math.Vec4) error {
	return cb.setValue(name, metadata.ConstantTypeFloat, encodeFloats(v.Elements()...))
}

/**
 * @brief Writes the upper left rows x columns block of a row major matrix into the
 * named matrix constant, keeping the row major layout of system memory.
 */
func (cb *ConstantBuffer) SetMatrix(name string, m math.Mat4) error {
	c, _, err := cb.ConstantDesc(name)
	if err != nil {
		return err
	}
	rows := math.Clamp(c.Rows, 1, 4)
	columns := math.Clamp(c.Columns, 1, 4)
	values := make([]float32, 0, rows*columns)
	for r := uint32(0); r < rows; r++ {
		for col := uint32(0); col < columns; col++ {
			values = append(values, m.Data[r*4+col])
		}
	}
	return cb.setValue(name, metadata.ConstantTypeFloat, encodeFloats(values...))
}
