package cbuffer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

type nameToken struct {
	name       string
	subscripts []uint32
}

// parseConstantName splits a path such as "lights[2].color" or
// "cascades[1][3].split" into its member tokens.
func parseConstantName(path string) ([]nameToken, error) {
	if path == "" {
		return nil, fmt.Errorf("empty name: %w", core.ErrMalformedConstantName)
	}
	parts := strings.Split(path, ".")
	tokens := make([]nameToken, 0, len(parts))
	for _, part := range parts {
		name, rest, _ := strings.Cut(part, "[")
		if name == "" {
			return nil, fmt.Errorf("'%s': %w", path, core.ErrMalformedConstantName)
		}
		token := nameToken{name: name}
		if rest != "" || strings.Contains(part, "[") {
			rest = "[" + rest
			for rest != "" {
				if rest[0] != '[' {
					return nil, fmt.Errorf("'%s': %w", path, core.ErrMalformedConstantName)
				}
				end := strings.IndexByte(rest, ']')
				if end < 0 {
					return nil, fmt.Errorf("'%s': unterminated subscript: %w", path, core.ErrMalformedConstantName)
				}
				index, err := strconv.ParseUint(strings.TrimSpace(rest[1:end]), 10, 32)
				if err != nil {
					return nil, fmt.Errorf("'%s': subscript '%s': %w", path, rest[1:end], core.ErrMalformedConstantName)
				}
				token.subscripts = append(token.subscripts, uint32(index))
				rest = rest[end+1:]
			}
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// resolveConstant walks a parsed name through the buffer and any nested
// structures, returning the addressed constant and its byte offset within
// the system buffer.
func resolveConstant(constants []metadata.ConstantDesc, types []metadata.ConstantTypeDesc, path string) (*metadata.ConstantDesc, uint32, error) {
	tokens, err := parseConstantName(path)
	if err != nil {
		return nil, 0, err
	}

	var offset uint32
	var found *metadata.ConstantDesc
	for n, token := range tokens {
		found = nil
		for i := range constants {
			if constants[i].Name == token.name {
				found = &constants[i]
				break
			}
		}
		if found == nil {
			return nil, 0, fmt.Errorf("'%s': member '%s': %w", path, token.name, core.ErrConstantNotFound)
		}

		last := n == len(tokens)-1
		element, err := flattenSubscripts(found, token.subscripts, last)
		if err != nil {
			return nil, 0, fmt.Errorf("'%s': %w", path, err)
		}
		offset += found.Offset + element*found.ElementLength

		if !last {
			if !found.IsUDT {
				return nil, 0, fmt.Errorf("'%s': '%s' has no members: %w", path, token.name, core.ErrMalformedConstantName)
			}
			constants = types[found.UDT].Constants
		}
	}
	return found, offset, nil
}

// flattenSubscripts converts a multi-dimensional subscript into a row major
// element index. Only the final member of a path may omit its subscript.
func flattenSubscripts(c *metadata.ConstantDesc, subscripts []uint32, last bool) (uint32, error) {
	if !c.IsArray {
		if len(subscripts) > 0 {
			return 0, fmt.Errorf("'%s' is not an array: %w", c.Name, core.ErrMalformedConstantName)
		}
		return 0, nil
	}
	if len(subscripts) == 0 {
		if last {
			return 0, nil
		}
		return 0, fmt.Errorf("'%s' must be subscripted: %w", c.Name, core.ErrMalformedConstantName)
	}

	dims := c.ArrayDimensions
	if len(dims) == 0 {
		dims = []uint32{c.Elements}
	}
	if len(subscripts) != len(dims) {
		return 0, fmt.Errorf("'%s' has %d dimensions, got %d subscripts: %w", c.Name, len(dims), len(subscripts), core.ErrMalformedConstantName)
	}

	var index uint32
	for i, s := range subscripts {
		if s >= dims[i] {
			return 0, fmt.Errorf("'%s' subscript %d exceeds dimension %d: %w", c.Name, s, dims[i], core.ErrOutOfRange)
		}
		index = index*dims[i] + s
	}
	return index, nil
}
