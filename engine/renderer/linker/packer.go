package linker

import (
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

const registerComponents = 4

// packBufferRegisters maps the constants of a single buffer onto registers.
// Small row vectors and scalars of the same base type share a register where
// they fit; everything else starts on a fresh register. The scan is greedy
// and forward-only: once a register is closed it is never revisited.
func packBufferRegisters(buffer *metadata.ConstantBufferDesc, layout *Layout) *BufferLayout {
	constants := buffer.Constants
	mappings := make([]*RegisterMapping, len(constants))

	var registerCount uint32
	for i := range constants {
		if mappings[i] != nil {
			continue
		}

		c := &constants[i]
		if !c.CanPack() {
			count := registersFor(c, layout)
			mappings[i] = &RegisterMapping{
				Offset: registerCount,
				Count:  count,
			}
			registerCount += count
			continue
		}

		// Fill the current register with this constant and any later
		// candidates of the same base type that still fit.
		var component uint32
		for j := i; j < len(constants); j++ {
			candidate := &constants[j]
			if mappings[j] != nil || !candidate.CanPack() || candidate.Type != c.Type {
				continue
			}
			if candidate.Columns > registerComponents-component {
				continue
			}
			mappings[j] = &RegisterMapping{
				Offset:    registerCount,
				Count:     1,
				Component: uint8(component),
				Packed:    true,
			}
			component += candidate.Columns
			if component == registerComponents {
				break
			}
		}
		registerCount++
	}

	bl := &BufferLayout{
		Name:          buffer.Name,
		GlobalOffset:  buffer.GlobalOffset,
		RegisterCount: registerCount,
		Constants:     make([]RegisterMapping, len(constants)),
	}
	for i, m := range mappings {
		bl.Constants[i] = *m
	}
	return bl
}
