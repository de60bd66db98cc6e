package metadata

import (
	"fmt"

	"github.com/spaghettifunk/regfile/engine/core"
)

// Validate checks the preconditions the linker relies on. Any failure means
// the reflection step produced content that cannot be mapped to registers.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Types))
	for i := range c.Types {
		t := &c.Types[i]
		if seen[t.Name] {
			return fmt.Errorf("type '%s': %w", t.Name, core.ErrDuplicateDefinition)
		}
		seen[t.Name] = true
		if err := c.validateConstants(t.Name, t.Length, t.Constants); err != nil {
			return err
		}
	}
	if err := c.validateNesting(); err != nil {
		return err
	}
	seen = make(map[string]bool, len(c.Buffers))
	for i := range c.Buffers {
		b := &c.Buffers[i]
		if seen[b.Name] {
			return fmt.Errorf("buffer '%s': %w", b.Name, core.ErrDuplicateDefinition)
		}
		seen[b.Name] = true
		if err := c.validateConstants(b.Name, b.Length, b.Constants); err != nil {
			return err
		}
	}
	return nil
}

// validateConstants checks every member of owner. A non-zero length bounds
// the members' extents.
func (c *Catalog) validateConstants(owner string, length uint32, constants []ConstantDesc) error {
	for i := range constants {
		cd := &constants[i]
		if err := c.validateConstant(cd); err != nil {
			return fmt.Errorf("%s.%s: %w", owner, cd.Name, err)
		}
		if end := uint64(cd.Offset) + uint64(cd.ElementLength)*uint64(cd.Elements); length != 0 && end > uint64(length) {
			return fmt.Errorf("%s.%s ends at byte %d past length %d: %w", owner, cd.Name, end, length, core.ErrInvalidDimensions)
		}
	}
	return nil
}

func (c *Catalog) validateConstant(cd *ConstantDesc) error {
	if cd.ElementLength == 0 {
		return core.ErrZeroElementLength
	}
	if cd.Elements == 0 {
		return fmt.Errorf("zero elements: %w", core.ErrInvalidDimensions)
	}
	if !cd.IsArray && cd.Elements != 1 {
		return fmt.Errorf("%d elements on a non-array constant: %w", cd.Elements, core.ErrInvalidDimensions)
	}
	if cd.IsArray && len(cd.ArrayDimensions) > 0 {
		count := uint32(1)
		for _, d := range cd.ArrayDimensions {
			count *= d
		}
		if count != cd.Elements {
			return fmt.Errorf("dimensions %v do not multiply to %d elements: %w", cd.ArrayDimensions, cd.Elements, core.ErrInvalidDimensions)
		}
	}
	if cd.IsUDT {
		t, ok := c.Type(cd.UDT)
		if !ok {
			return fmt.Errorf("handle %d: %w", cd.UDT, core.ErrUnknownType)
		}
		if t.Length != 0 && t.Length != cd.ElementLength {
			return fmt.Errorf("element length %d does not match '%s' length %d: %w", cd.ElementLength, t.Name, t.Length, core.ErrInvalidDimensions)
		}
		return nil
	}
	switch cd.Type {
	case ConstantTypeFloat, ConstantTypeInt, ConstantTypeUInt, ConstantTypeBool:
	default:
		return fmt.Errorf("base type %d: %w", cd.Type, core.ErrUnknownType)
	}
	if cd.Rows < 1 || cd.Rows > 4 || cd.Columns < 1 || cd.Columns > 4 {
		return fmt.Errorf("%dx%d: %w", cd.Rows, cd.Columns, core.ErrInvalidDimensions)
	}
	if cd.ElementLength < cd.Rows*cd.Columns*cd.Type.ScalarSize() {
		return fmt.Errorf("element length %d too small for %dx%d %s: %w", cd.ElementLength, cd.Rows, cd.Columns, cd.Type, core.ErrInvalidDimensions)
	}
	return nil
}

// validateNesting rejects structures that contain themselves, directly or
// through another structure. Such a type has no finite register footprint.
func (c *Catalog) validateNesting() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(c.Types))
	var visit func(h TypeHandle) error
	visit = func(h TypeHandle) error {
		switch state[h] {
		case visiting:
			return fmt.Errorf("type '%s': %w", c.Types[h].Name, core.ErrRecursiveType)
		case done:
			return nil
		}
		state[h] = visiting
		for i := range c.Types[h].Constants {
			if c.Types[h].Constants[i].IsUDT {
				if err := visit(c.Types[h].Constants[i].UDT); err != nil {
					return err
				}
			}
		}
		state[h] = done
		return nil
	}
	for i := range c.Types {
		if err := visit(TypeHandle(i)); err != nil {
			return err
		}
	}
	return nil
}
