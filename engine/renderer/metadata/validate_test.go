package metadata

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/regfile/engine/core"
)

func float4(name string, offset uint32) ConstantDesc {
	return ConstantDesc{
		Name:          name,
		Type:          ConstantTypeFloat,
		Rows:          1,
		Columns:       4,
		Elements:      1,
		ElementLength: 16,
		TotalLength:   16,
		Offset:        offset,
	}
}

func member(name string, handle TypeHandle, length uint32) ConstantDesc {
	return ConstantDesc{Name: name, UDT: handle, IsUDT: true, Elements: 1, ElementLength: length, TotalLength: length}
}

func validCatalog() *Catalog {
	return &Catalog{
		Name: "test",
		Types: []ConstantTypeDesc{
			{Name: "Inner", Length: 16, Constants: []ConstantDesc{float4("v", 0)}},
			{Name: "Outer", Length: 16, Constants: []ConstantDesc{member("inner", 0, 16)}},
		},
		Buffers: []ConstantBufferDesc{
			{ConstantTypeDesc: ConstantTypeDesc{Name: "cb", Length: 32, Constants: []ConstantDesc{
				float4("a", 0),
				member("o", 1, 16),
			}}},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Catalog)
		want   error
	}{
		{"valid", func(c *Catalog) {}, nil},
		{"zero element length", func(c *Catalog) { c.Buffers[0].Constants[0].ElementLength = 0 }, core.ErrZeroElementLength},
		{"zero elements", func(c *Catalog) { c.Buffers[0].Constants[0].Elements = 0 }, core.ErrInvalidDimensions},
		{"elements without array", func(c *Catalog) { c.Buffers[0].Constants[0].Elements = 2 }, core.ErrInvalidDimensions},
		{"dimensions mismatch", func(c *Catalog) {
			a := &c.Buffers[0].Constants[0]
			a.IsArray, a.Elements, a.ArrayDimensions = true, 6, []uint32{2, 2}
		}, core.ErrInvalidDimensions},
		{"five columns", func(c *Catalog) { c.Buffers[0].Constants[0].Columns = 5 }, core.ErrInvalidDimensions},
		{"too short", func(c *Catalog) { c.Buffers[0].Constants[0].ElementLength = 8 }, core.ErrInvalidDimensions},
		{"unknown base type", func(c *Catalog) { c.Buffers[0].Constants[0].Type = ConstantType(9) }, core.ErrUnknownType},
		{"unknown handle", func(c *Catalog) { c.Buffers[0].Constants[1].UDT = 7 }, core.ErrUnknownType},
		{"length mismatch", func(c *Catalog) { c.Buffers[0].Constants[1].ElementLength = 32 }, core.ErrInvalidDimensions},
		{"past buffer length", func(c *Catalog) { c.Buffers[0].Constants[0].Offset = 20 }, core.ErrInvalidDimensions},
		{"past type length", func(c *Catalog) { c.Types[0].Constants[0].Offset = 4 }, core.ErrInvalidDimensions},
		{"duplicate type", func(c *Catalog) { c.Types[1].Name = "Inner" }, core.ErrDuplicateDefinition},
		{"duplicate buffer", func(c *Catalog) { c.Buffers = append(c.Buffers, c.Buffers[0]) }, core.ErrDuplicateDefinition},
		{"self reference", func(c *Catalog) { c.Types[0].Constants = append(c.Types[0].Constants, member("self", 0, 16)) }, core.ErrRecursiveType},
		{"mutual reference", func(c *Catalog) { c.Types[0].Constants = append(c.Types[0].Constants, member("outer", 1, 16)) }, core.ErrRecursiveType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCatalog()
			tt.mutate(c)
			err := c.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTypeNameAndPacking(t *testing.T) {
	c := validCatalog()
	a := &c.Buffers[0].Constants[0]
	o := &c.Buffers[0].Constants[1]
	if got := a.TypeName(c.Types); got != "float" {
		t.Errorf("TypeName(a) = %q, want float", got)
	}
	if got := o.TypeName(c.Types); got != "Outer" {
		t.Errorf("TypeName(o) = %q, want Outer", got)
	}
	if a.CanPack() || o.CanPack() {
		t.Errorf("float4 and structures must not pack")
	}
	a.Columns = 3
	if !a.CanPack() {
		t.Errorf("float3 must pack")
	}
	if c.BufferIndex("cb") != 0 || c.BufferIndex("nope") != -1 {
		t.Errorf("BufferIndex mismatch")
	}
}

func TestConstantTypeFromString(t *testing.T) {
	for _, want := range []ConstantType{ConstantTypeFloat, ConstantTypeInt, ConstantTypeUInt, ConstantTypeBool} {
		got, err := ConstantTypeFromString(want.String())
		if err != nil || got != want {
			t.Errorf("ConstantTypeFromString(%q) = %v, %v", want.String(), got, err)
		}
	}
	if _, err := ConstantTypeFromString("half"); err == nil {
		t.Errorf("half accepted")
	}
}

func TestGetAligned(t *testing.T) {
	tests := []struct {
		operand, granularity, want uint64
	}{
		{0, 4, 0}, {1, 4, 4}, {4, 4, 4}, {13, 16, 16}, {17, 16, 32}, {3, 1, 3},
	}
	for _, tt := range tests {
		if got := GetAligned(tt.operand, tt.granularity); got != tt.want {
			t.Errorf("GetAligned(%d, %d) = %d, want %d", tt.operand, tt.granularity, got, tt.want)
		}
	}
	r := GetAlignedRange(6, 10, 8)
	if r.Offset != 8 || r.Size != 16 {
		t.Errorf("GetAlignedRange = %+v, want {8 16}", *r)
	}
}
