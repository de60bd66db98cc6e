package metadata

import (
	"fmt"
)

/** @brief The primitive base type of a constant. */
type ConstantType int

const (
	/** @brief 32-bit IEEE float. */
	ConstantTypeFloat ConstantType = iota
	/** @brief 32-bit signed integer. */
	ConstantTypeInt
	/** @brief 32-bit unsigned integer. */
	ConstantTypeUInt
	/** @brief Single byte boolean. */
	ConstantTypeBool
)

func (t ConstantType) String() string {
	switch t {
	case ConstantTypeFloat:
		return "float"
	case ConstantTypeInt:
		return "int"
	case ConstantTypeUInt:
		return "uint"
	case ConstantTypeBool:
		return "bool"
	}
	return fmt.Sprintf("ConstantType(%d)", int(t))
}

// ScalarSize is the size in bytes of one scalar of this type in system memory.
func (t ConstantType) ScalarSize() uint32 {
	if t == ConstantTypeBool {
		return 1
	}
	return 4
}

func ConstantTypeFromString(s string) (ConstantType, error) {
	switch s {
	case "float":
		return ConstantTypeFloat, nil
	case "int":
		return ConstantTypeInt, nil
	case "uint":
		return ConstantTypeUInt, nil
	case "bool":
		return ConstantTypeBool, nil
	}
	return 0, fmt.Errorf("string %s is not a valid ConstantType", s)
}

/** @brief Index of a user defined type within a catalog's type table. */
type TypeHandle int32

/**
 * @brief Describes a single constant as reflected from shader source. Offsets and
 * lengths describe the natural (CPU aligned) system memory layout.
 */
type ConstantDesc struct {
	/** @brief The identifier of the constant. */
	Name string
	/** @brief Name of the primitive (or structure) type used in declarations. Derived from Type when empty. */
	PrimitiveTypeName string
	/** @brief The primitive base type. Ignored when IsUDT is set. */
	Type ConstantType
	/** @brief The referenced user defined type. Only valid when IsUDT is set. */
	UDT TypeHandle
	/** @brief The constant uses a user defined type. */
	IsUDT bool
	/** @brief The constant was declared as an array. */
	IsArray bool
	/** @brief Size of each declared array dimension, outermost first. */
	ArrayDimensions []uint32
	/** @brief Total number of array elements (1 if not an array). */
	Elements uint32
	/** @brief Size in bytes of a single element. */
	ElementLength uint32
	/** @brief Number of rows (1 for scalars and vectors). */
	Rows uint32
	/** @brief Number of columns (1 for scalars). */
	Columns uint32
	/** @brief Offset in bytes from the start of the owning type or buffer. */
	Offset uint32
	/** @brief Required alignment in bytes. */
	Alignment uint32
	/** @brief Size in bytes of all elements. */
	TotalLength uint32
	/** @brief Optional initial value written into system memory when a buffer is loaded. */
	Default []byte
}

/** @brief A user defined (structure) type. */
type ConstantTypeDesc struct {
	Name string
	/** @brief Size in bytes of one instance in system memory. */
	Length uint32
	/** @brief Required alignment in bytes. */
	Alignment uint32
	/** @brief Members in declaration order. */
	Constants []ConstantDesc
}

/** @brief A block of constants uploaded to the hardware as a group. */
type ConstantBufferDesc struct {
	ConstantTypeDesc
	/** @brief The base register index at which the buffer is bound. */
	GlobalOffset uint32
	/** @brief Bind to the vertex stage when applied. */
	BindVS bool
	/** @brief Bind to the pixel stage when applied. */
	BindPS bool
}

/** @brief The reflected input: every type and buffer known to a shader. */
type Catalog struct {
	Name    string
	Types   []ConstantTypeDesc
	Buffers []ConstantBufferDesc
}

// TypeName returns the text used to declare c in shader code.
func (c *ConstantDesc) TypeName(types []ConstantTypeDesc) string {
	if c.PrimitiveTypeName != "" {
		return c.PrimitiveTypeName
	}
	if c.IsUDT {
		if int(c.UDT) >= 0 && int(c.UDT) < len(types) {
			return types[c.UDT].Name
		}
		return ""
	}
	return c.Type.String()
}

// CanPack reports whether the constant may share a register with others.
func (c *ConstantDesc) CanPack() bool {
	return c.Rows == 1 && c.Columns < 4 && !c.IsArray && !c.IsUDT
}

// Type returns the descriptor for handle.
func (c *Catalog) Type(handle TypeHandle) (*ConstantTypeDesc, bool) {
	if handle < 0 || int(handle) >= len(c.Types) {
		return nil, false
	}
	return &c.Types[handle], true
}

// BufferIndex returns the index of the buffer called name, or -1.
func (c *Catalog) BufferIndex(name string) int {
	for i := range c.Buffers {
		if c.Buffers[i].Name == name {
			return i
		}
	}
	return -1
}
