package cbuffer

import (
	"github.com/spaghettifunk/regfile/engine/renderer/linker"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

/**
 * @brief A single step that moves data from the system memory buffer into the
 * register buffer. Offsets and sizes are in bytes.
 */
type TransferItem struct {
	SourceOffset      uint32
	DestinationOffset uint32
	Size              uint32
	/** @brief The source is a row major matrix that must be transposed. */
	TransposeData bool
	Rows          uint32
	Columns       uint32
	/** @brief Each scalar must be converted to a 32-bit float. */
	ConvertType bool
	BaseType    metadata.ConstantType
}

type transferCompiler struct {
	types  []metadata.ConstantTypeDesc
	layout *linker.Layout
	items  []TransferItem
}

// compileTransferMap builds the ordered list of transfers that produce the
// register image of a buffer from its system memory image.
func compileTransferMap(catalog *metadata.Catalog, layout *linker.Layout, bufferIndex int, length uint32) []TransferItem {
	desc := &catalog.Buffers[bufferIndex]
	bl := layout.Buffers[bufferIndex]

	tc := &transferCompiler{
		types:  catalog.Types,
		layout: layout,
	}
	tc.compile(desc.Constants, bl.Constants, length, bl.RegisterCount, 1, 0, 0)
	return tc.items
}

func (tc *transferCompiler) compile(constants []metadata.ConstantDesc, mappings []linker.RegisterMapping, containerLength, containerRegisterCount, elements, sourceBase, destinationRegister uint32) {
	for e := uint32(0); e < elements; e++ {
		elementBase := sourceBase + e*containerLength
		for i := range constants {
			c := &constants[i]
			m := &mappings[i]

			if c.IsUDT {
				child := &tc.types[c.UDT]
				tl, ok := tc.layout.Type(c.UDT)
				if !ok {
					panic("cbuffer: structure '" + child.Name + "' has no register layout")
				}
				// The element stride comes from the constant; a type may leave its
				// own length unset.
				tc.compile(child.Constants, tl.Constants, c.ElementLength, tl.RegisterCount, c.Elements, elementBase+c.Offset, destinationRegister+m.Offset)
				continue
			}

			src := elementBase + c.Offset
			var dst uint32
			if m.Packed {
				dst = ((destinationRegister+m.Offset)*4 + uint32(m.Component)) * 4
			} else {
				dst = (destinationRegister + m.Offset) * 16
			}

			if blockTransferable(c) {
				size := c.ElementLength * c.Elements
				if m.Packed {
					size = c.Columns * 4
				}
				if n := len(tc.items); n > 0 {
					prev := &tc.items[n-1]
					if !prev.TransposeData && !prev.ConvertType &&
						src == prev.SourceOffset+prev.Size &&
						dst == prev.DestinationOffset+prev.Size {
						prev.Size += size
						continue
					}
				}
				tc.items = append(tc.items, TransferItem{
					SourceOffset:      src,
					DestinationOffset: dst,
					Size:              size,
					BaseType:          c.Type,
				})
				continue
			}

			// Every element starts on a new register regardless of its width.
			for j := uint32(0); j < c.Elements; j++ {
				tc.items = append(tc.items, TransferItem{
					SourceOffset:      src + j*c.ElementLength,
					DestinationOffset: dst + j*c.Rows*16,
					Size:              c.ElementLength,
					TransposeData:     c.Rows > 1 && c.Columns > 1,
					Rows:              c.Rows,
					Columns:           c.Columns,
					ConvertType:       c.Type != metadata.ConstantTypeFloat,
					BaseType:          c.Type,
				})
			}
		}
		destinationRegister += containerRegisterCount
	}
}

// blockTransferable reports whether a constant can be copied into the
// register buffer unchanged: float single-row data that is either not an
// array or fills whole registers per element.
func blockTransferable(c *metadata.ConstantDesc) bool {
	if c.Type != metadata.ConstantTypeFloat || c.Rows != 1 {
		return false
	}
	return !c.IsArray || c.Columns == 4
}
