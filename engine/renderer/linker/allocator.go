package linker

import (
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

// allocateTypeRegisters assigns registers to the members of every referenced
// type. Types are visited children first so that a member's child type has
// always been sized before it is needed. Members of a structure are never
// packed together.
func allocateTypeRegisters(catalog *metadata.Catalog, layout *Layout) {
	for _, handle := range layout.Referenced {
		t := &catalog.Types[handle]
		tl := &TypeLayout{
			Handle:    handle,
			Constants: make([]RegisterMapping, len(t.Constants)),
		}

		var registerCount uint32
		for i := range t.Constants {
			c := &t.Constants[i]
			count := registersFor(c, layout)
			tl.Constants[i] = RegisterMapping{
				Offset: registerCount,
				Count:  count,
			}
			registerCount += count
		}
		tl.RegisterCount = registerCount
		layout.types[handle] = tl
	}
}

// registersFor returns the number of whole registers an unpacked constant
// consumes.
func registersFor(c *metadata.ConstantDesc, layout *Layout) uint32 {
	if c.IsUDT {
		child, ok := layout.types[c.UDT]
		if !ok {
			panic("linker: structure member references a type that has not been allocated")
		}
		return child.RegisterCount * c.Elements
	}
	return c.Rows * c.Elements
}
