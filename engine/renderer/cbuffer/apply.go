package cbuffer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

/**
 * @brief Applies the constant data in this buffer to the binder. The register buffer
 * is allocated on first use and rebuilt from system memory only when the data
 * changed since the previous apply.
 *
 * @param binder The receiver of the register data.
 * @return An error if the buffer is not ready or the binder rejects the upload.
 */
func (cb *ConstantBuffer) Apply(binder renderer.ConstantBinder) error {
	if !cb.loaded {
		return fmt.Errorf("apply '%s': %w", cb.desc.Name, core.ErrBufferNotLoaded)
	}
	if cb.locked {
		return fmt.Errorf("apply '%s': %w", cb.desc.Name, core.ErrBufferLocked)
	}
	if cb.layout.RegisterCount == 0 {
		return fmt.Errorf("apply '%s': %w", cb.desc.Name, core.ErrEmptyRegisterFile)
	}

	if cb.registerBuffer == nil {
		cb.registerBuffer = make([]byte, cb.layout.RegisterCount*renderer.RegisterSize)
		cb.dirty = true
	}
	if cb.dirty {
		var transferred uint64
		for i := range cb.transferMap {
			transferred += uint64(executeTransfer(&cb.transferMap[i], cb.registerBuffer, cb.systemBuffer))
		}
		cb.dirty = false
		core.MetricsRecordRebuild(transferred)
	}
	core.MetricsRecordApply()

	start, count := cb.desc.GlobalOffset, cb.layout.RegisterCount
	if cb.desc.BindVS {
		if err := binder.SetVertexShaderConstantF(start, cb.registerBuffer, count); err != nil {
			return fmt.Errorf("apply '%s' to vertex stage: %w", cb.desc.Name, err)
		}
		core.MetricsRecordBind()
	}
	if cb.desc.BindPS {
		if err := binder.SetPixelShaderConstantF(start, cb.registerBuffer, count); err != nil {
			return fmt.Errorf("apply '%s' to pixel stage: %w", cb.desc.Name, err)
		}
		core.MetricsRecordBind()
	}
	return nil
}

// executeTransfer performs a single transfer and returns the number of bytes
// written to dst.
func executeTransfer(item *TransferItem, dst, src []byte) uint32 {
	out := dst[item.DestinationOffset:]
	in := src[item.SourceOffset:]

	switch {
	case !item.TransposeData && !item.ConvertType:
		copy(out[:item.Size], in[:item.Size])
		return item.Size

	case item.ConvertType && !item.TransposeData:
		scalar := item.BaseType.ScalarSize()
		count := item.Size / scalar
		for i := uint32(0); i < count; i++ {
			putFloat(out, i, scalarToFloat(item.BaseType, in, i))
		}
		return count * 4

	case item.TransposeData && !item.ConvertType:
		for y := uint32(0); y < item.Rows; y++ {
			for x := uint32(0); x < item.Columns; x++ {
				s := y + x*item.Rows
				binary.LittleEndian.PutUint32(out[(x+y*item.Columns)*4:], binary.LittleEndian.Uint32(in[s*4:]))
			}
		}
		return item.Rows * item.Columns * 4

	default:
		for y := uint32(0); y < item.Rows; y++ {
			for x := uint32(0); x < item.Columns; x++ {
				putFloat(out, x+y*item.Columns, scalarToFloat(item.BaseType, in, y+x*item.Rows))
			}
		}
		return item.Rows * item.Columns * 4
	}
}

// scalarToFloat reads the index'th scalar of type t from data as a float.
func scalarToFloat(t metadata.ConstantType, data []byte, index uint32) float32 {
	switch t {
	case metadata.ConstantTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(data[index*4:]))
	case metadata.ConstantTypeInt:
		return float32(int32(binary.LittleEndian.Uint32(data[index*4:])))
	case metadata.ConstantTypeUInt:
		return float32(binary.LittleEndian.Uint32(data[index*4:]))
	case metadata.ConstantTypeBool:
		if data[index] != 0 {
			return 1.0
		}
		return 0.0
	}
	panic(fmt.Sprintf("cbuffer: unknown constant type %d in transfer", t))
}

func putFloat(data []byte, index uint32, v float32) {
	binary.LittleEndian.PutUint32(data[index*4:], math.Float32bits(v))
}
