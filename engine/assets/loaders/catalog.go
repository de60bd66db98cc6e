package loaders

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

// CatalogExtension is the file extension of constant catalogs.
const CatalogExtension = ".cbcat"

type constantEntry struct {
	Name       string    `toml:"name"`
	Type       string    `toml:"type"`
	Rows       uint32    `toml:"rows"`
	Columns    uint32    `toml:"columns"`
	Dimensions []uint32  `toml:"dimensions"`
	Default    []float64 `toml:"default"`
}

type typeEntry struct {
	Name      string          `toml:"name"`
	Constants []constantEntry `toml:"constants"`
}

type bufferEntry struct {
	Name         string          `toml:"name"`
	GlobalOffset uint32          `toml:"global_offset"`
	BindVS       bool            `toml:"bind_vs"`
	BindPS       bool            `toml:"bind_ps"`
	Constants    []constantEntry `toml:"constants"`
}

type catalogFile struct {
	Name    string        `toml:"name"`
	Types   []typeEntry   `toml:"types"`
	Buffers []bufferEntry `toml:"buffers"`
}

// CatalogLoader reads .cbcat files: TOML descriptions of the structures and
// constant buffers reflected from a shader.
type CatalogLoader struct{}

func (cl *CatalogLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if assetType != metadata.ResourceTypeConstantCatalog {
		return nil, fmt.Errorf("catalog loader cannot load resource type %d", assetType)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	catalog, err := ParseCatalog(name, data)
	if err != nil {
		return nil, fmt.Errorf("catalog '%s': %w", path, err)
	}
	return &metadata.Resource{
		Name:     catalog.Name,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     catalog,
	}, nil
}

func (cl *CatalogLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

/**
 * @brief Parses a catalog and computes the natural system memory layout of every
 * structure and buffer in it.
 *
 * @param name The catalog name used when the file does not declare one.
 * @param data The TOML source.
 * @return A validated catalog.
 */
func ParseCatalog(name string, data []byte) (*metadata.Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if file.Name != "" {
		name = file.Name
	}

	b := &catalogBuilder{
		file:    &file,
		handles: make(map[string]metadata.TypeHandle, len(file.Types)),
		state:   make([]int, len(file.Types)),
		catalog: &metadata.Catalog{
			Name:    name,
			Types:   make([]metadata.ConstantTypeDesc, len(file.Types)),
			Buffers: make([]metadata.ConstantBufferDesc, len(file.Buffers)),
		},
	}
	for i, t := range file.Types {
		if _, exists := b.handles[t.Name]; exists {
			return nil, fmt.Errorf("type '%s': %w", t.Name, core.ErrDuplicateDefinition)
		}
		b.handles[t.Name] = metadata.TypeHandle(i)
	}
	for i := range file.Types {
		if err := b.buildType(metadata.TypeHandle(i)); err != nil {
			return nil, err
		}
	}
	for i, be := range file.Buffers {
		desc, err := b.buildLayout(be.Name, be.Constants)
		if err != nil {
			return nil, err
		}
		b.catalog.Buffers[i] = metadata.ConstantBufferDesc{
			ConstantTypeDesc: desc,
			GlobalOffset:     be.GlobalOffset,
			BindVS:           be.BindVS,
			BindPS:           be.BindPS,
		}
	}

	if err := b.catalog.Validate(); err != nil {
		return nil, err
	}
	return b.catalog, nil
}

const (
	typePending = iota
	typeBuilding
	typeBuilt
)

type catalogBuilder struct {
	file    *catalogFile
	handles map[string]metadata.TypeHandle
	state   []int
	catalog *metadata.Catalog
}

// buildType lays out a structure, laying out the structures it embeds
// first. A structure reached again while it is being built contains itself.
func (b *catalogBuilder) buildType(handle metadata.TypeHandle) error {
	switch b.state[handle] {
	case typeBuilt:
		return nil
	case typeBuilding:
		return fmt.Errorf("type '%s': %w", b.file.Types[handle].Name, core.ErrRecursiveType)
	}
	b.state[handle] = typeBuilding

	entry := &b.file.Types[handle]
	desc, err := b.buildLayout(entry.Name, entry.Constants)
	if err != nil {
		return err
	}
	b.catalog.Types[handle] = desc
	b.state[handle] = typeBuilt
	return nil
}

func (b *catalogBuilder) buildLayout(owner string, entries []constantEntry) (metadata.ConstantTypeDesc, error) {
	desc := metadata.ConstantTypeDesc{
		Name:      owner,
		Alignment: 1,
		Constants: make([]metadata.ConstantDesc, len(entries)),
	}

	var running uint64
	for i := range entries {
		c, err := b.buildConstant(&entries[i])
		if err != nil {
			return desc, fmt.Errorf("%s.%s: %w", owner, entries[i].Name, err)
		}
		offset := metadata.GetAligned(running, uint64(c.Alignment))
		c.Offset = uint32(offset)
		running = offset + uint64(c.TotalLength)
		if c.Alignment > desc.Alignment {
			desc.Alignment = c.Alignment
		}
		desc.Constants[i] = c
	}
	desc.Length = uint32(metadata.GetAligned(running, uint64(desc.Alignment)))
	return desc, nil
}

func (b *catalogBuilder) buildConstant(e *constantEntry) (metadata.ConstantDesc, error) {
	c := metadata.ConstantDesc{
		Name:     e.Name,
		Rows:     e.Rows,
		Columns:  e.Columns,
		Elements: 1,
	}
	if len(e.Dimensions) > 0 {
		c.IsArray = true
		c.ArrayDimensions = append([]uint32(nil), e.Dimensions...)
		for _, d := range e.Dimensions {
			c.Elements *= d
		}
	}

	if handle, ok := b.handles[e.Type]; ok {
		if err := b.buildType(handle); err != nil {
			return c, err
		}
		if len(e.Default) > 0 {
			return c, fmt.Errorf("structure constants cannot declare defaults: %w", core.ErrInvalidDimensions)
		}
		t := &b.catalog.Types[handle]
		c.IsUDT = true
		c.UDT = handle
		c.Alignment = t.Alignment
		c.ElementLength = t.Length
		c.TotalLength = c.ElementLength * c.Elements
		return c, nil
	}

	base, rows, columns, ok := parsePrimitive(e.Type)
	if !ok {
		return c, fmt.Errorf("type '%s': %w", e.Type, core.ErrUnknownType)
	}
	c.Type = base
	if c.Rows == 0 {
		c.Rows = rows
	}
	if c.Columns == 0 {
		c.Columns = columns
	}
	scalar := base.ScalarSize()
	c.Alignment = scalar
	c.ElementLength = c.Rows * c.Columns * scalar
	c.TotalLength = c.ElementLength * c.Elements

	if len(e.Default) > 0 {
		scalars := c.TotalLength / scalar
		if uint32(len(e.Default)) > scalars {
			return c, fmt.Errorf("%d default values for %d scalars: %w", len(e.Default), scalars, core.ErrInvalidDimensions)
		}
		c.Default = encodeDefault(base, e.Default)
	}
	return c, nil
}

// parsePrimitive accepts "float", "float3" and "float4x4" style names.
func parsePrimitive(name string) (metadata.ConstantType, uint32, uint32, bool) {
	for _, base := range []metadata.ConstantType{
		metadata.ConstantTypeFloat,
		metadata.ConstantTypeUInt,
		metadata.ConstantTypeInt,
		metadata.ConstantTypeBool,
	} {
		prefix := base.String()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		suffix := name[len(prefix):]
		if suffix == "" {
			return base, 1, 1, true
		}
		r, c, found := strings.Cut(suffix, "x")
		if !found {
			columns, err := strconv.ParseUint(suffix, 10, 32)
			if err != nil {
				return base, 0, 0, false
			}
			return base, 1, uint32(columns), true
		}
		rows, err := strconv.ParseUint(r, 10, 32)
		if err != nil {
			return base, 0, 0, false
		}
		columns, err := strconv.ParseUint(c, 10, 32)
		if err != nil {
			return base, 0, 0, false
		}
		return base, uint32(rows), uint32(columns), true
	}
	return 0, 0, 0, false
}

func encodeDefault(base metadata.ConstantType, values []float64) []byte {
	scalar := base.ScalarSize()
	out := make([]byte, uint32(len(values))*scalar)
	for i, v := range values {
		switch base {
		case metadata.ConstantTypeFloat:
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(v)))
		case metadata.ConstantTypeInt:
			binary.LittleEndian.PutUint32(out[i*4:], uint32(int32(v)))
		case metadata.ConstantTypeUInt:
			binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
		case metadata.ConstantTypeBool:
			if v != 0 {
				out[i] = 1
			}
		}
	}
	return out
}
