package linker

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

// packingSwizzles is indexed by [Columns-1][Component]. Empty entries are
// positions a packed constant of that width can never occupy.
var packingSwizzles = [4][4]string{
	{"x", "y", "z", "w"},
	{"xy", "yz", "zw", ""},
	{"xyz", "yzw", "", ""},
	{"xyzw", "", "", ""},
}

/**
 * @brief Generates shader source declarations for every user defined type referenced
 * by the linked buffers, followed by the register bound declarations of the
 * requested buffers. Links the catalog first if that has not happened yet.
 *
 * @param bufferRefs Indices of the buffers to declare, in output order.
 * @return The declaration text.
 */
func (l *Linker) GenerateBufferDeclarations(bufferRefs []int) (string, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	layout, err := l.link()
	if err != nil {
		return "", err
	}
	for _, ref := range bufferRefs {
		if _, ok := layout.Buffer(ref); !ok {
			return "", fmt.Errorf("buffer reference %d in catalog '%s': %w", ref, l.catalog.Name, core.ErrUnknownBuffer)
		}
	}

	var out strings.Builder
	for _, handle := range layout.Referenced {
		code, ok := l.cachedCode[handle]
		if !ok {
			code = typeDeclaration(&l.catalog.Types[handle], l.catalog.Types)
			l.cachedCode[handle] = code
		}
		out.WriteString(code)
		out.WriteString("\n")
	}

	for _, ref := range bufferRefs {
		l.writeBufferDeclaration(&out, &l.catalog.Buffers[ref], layout.Buffers[ref])
	}
	return out.String(), nil
}

func (l *Linker) writeBufferDeclaration(out *strings.Builder, desc *metadata.ConstantBufferDesc, bl *BufferLayout) {
	debug := l.config.DebugDeclarations
	if debug {
		out.WriteString("\n////////////////////////////////\n")
		fmt.Fprintf(out, "// cbuffer %s\n", desc.Name)
		out.WriteString("////////////////////////////////\n")
		out.WriteString("// Unpacked constants\n")
	}

	// Unpacked constants are declared as-is; packed ones only record which
	// shared register (and its base type) they need.
	packingRegisters := make(map[uint32]metadata.ConstantType)
	for i := range desc.Constants {
		c := &desc.Constants[i]
		m := &bl.Constants[i]
		register := m.Offset + desc.GlobalOffset
		if m.Packed {
			packingRegisters[register] = c.Type
			continue
		}
		out.WriteString(c.TypeName(l.catalog.Types))
		out.WriteString(dimensionSuffix(c))
		out.WriteString(" ")
		out.WriteString(c.Name)
		out.WriteString(arraySuffix(c))
		fmt.Fprintf(out, " : register(c%d);\n", register)
	}

	if debug {
		out.WriteString("\n// Packing constant registers\n")
	}
	registers := make([]uint32, 0, len(packingRegisters))
	for r := range packingRegisters {
		registers = append(registers, r)
	}
	slices.Sort(registers)
	for _, r := range registers {
		fmt.Fprintf(out, "%s4 _phwc%d : register(c%d);\n", packingRegisters[r], r, r)
	}

	if debug {
		out.WriteString("\n// Packed constant definitions\n")
	}
	for i := range desc.Constants {
		c := &desc.Constants[i]
		m := &bl.Constants[i]
		if !m.Packed {
			continue
		}
		swizzle := packingSwizzles[c.Columns-1][m.Component]
		if swizzle == "" {
			panic(fmt.Sprintf("linker: %d wide constant '%s' packed at component %d", c.Columns, c.Name, m.Component))
		}
		fmt.Fprintf(out, "#define %s (_phwc%d.%s)\n", c.Name, m.Offset+desc.GlobalOffset, swizzle)
	}

	if debug {
		fmt.Fprintf(out, "\n// Registers consumed = %d\n", bl.RegisterCount)
		out.WriteString("////////////////////////////////\n")
	}
}

func typeDeclaration(t *metadata.ConstantTypeDesc, types []metadata.ConstantTypeDesc) string {
	var out strings.Builder
	out.WriteString("struct ")
	out.WriteString(t.Name)
	out.WriteString("{\n")
	for i := range t.Constants {
		c := &t.Constants[i]
		out.WriteString(c.TypeName(types))
		out.WriteString(dimensionSuffix(c))
		out.WriteString(" ")
		out.WriteString(c.Name)
		out.WriteString(arraySuffix(c))
		out.WriteString(";\n")
	}
	out.WriteString("};\n")
	return out.String()
}

// dimensionSuffix returns the row/column part of a primitive type name.
// Shaders are compiled column major, so rows and columns are transposed
// relative to the descriptor.
func dimensionSuffix(c *metadata.ConstantDesc) string {
	switch {
	case c.Columns > 1 && c.Rows > 1:
		return fmt.Sprintf("%dx%d", c.Columns, c.Rows)
	case c.Rows > 1:
		return fmt.Sprintf("1x%d", c.Rows)
	case c.Columns > 1:
		return fmt.Sprintf("%d", c.Columns)
	}
	return ""
}

func arraySuffix(c *metadata.ConstantDesc) string {
	if !c.IsArray {
		return ""
	}
	if len(c.ArrayDimensions) == 0 {
		return fmt.Sprintf("[%d]", c.Elements)
	}
	var b strings.Builder
	for _, d := range c.ArrayDimensions {
		fmt.Fprintf(&b, "[%d]", d)
	}
	return b.String()
}
