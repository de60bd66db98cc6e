package linker

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

/**
 * @brief The hardware register assigned to a single constant. Offsets are
 * relative to the owning type or buffer.
 */
type RegisterMapping struct {
	/** @brief First register consumed, relative to the parent. */
	Offset uint32
	/** @brief Number of registers consumed. */
	Count uint32
	/** @brief Starting register component (x=0, y=1, z=2 or w=3). */
	Component uint8
	/** @brief The constant shares its register with other constants. */
	Packed bool
}

/** @brief Register layout of a user defined type. */
type TypeLayout struct {
	Handle        metadata.TypeHandle
	RegisterCount uint32
	/** @brief One mapping per member, in declaration order. */
	Constants []RegisterMapping
}

/** @brief Register layout of a constant buffer. */
type BufferLayout struct {
	Name          string
	GlobalOffset  uint32
	RegisterCount uint32
	/** @brief One mapping per constant, in declaration order. */
	Constants []RegisterMapping
}

// Layout is the resolved output of a link. It is keyed by the same handles
// and indices as the catalog it was produced from and is read-only once
// returned.
type Layout struct {
	types map[metadata.TypeHandle]*TypeLayout
	// Referenced lists every type reachable from the buffers, children first.
	Referenced []metadata.TypeHandle
	Buffers    []*BufferLayout
}

func (l *Layout) Type(handle metadata.TypeHandle) (*TypeLayout, bool) {
	t, ok := l.types[handle]
	return t, ok
}

func (l *Layout) Buffer(index int) (*BufferLayout, bool) {
	if index < 0 || index >= len(l.Buffers) {
		return nil, false
	}
	return l.Buffers[index], true
}

// Linker maps a catalog's buffers onto the register file. Register mappings
// are generated once; the declaration cache is filled as declarations are
// requested.
type Linker struct {
	config  core.LinkerConfig
	catalog *metadata.Catalog

	mutex      sync.Mutex
	layout     *Layout
	cachedCode map[metadata.TypeHandle]string
}

func NewLinker(config core.LinkerConfig, catalog *metadata.Catalog) *Linker {
	return &Linker{
		config:     config,
		catalog:    catalog,
		cachedCode: make(map[metadata.TypeHandle]string),
	}
}

func (l *Linker) Catalog() *metadata.Catalog {
	return l.catalog
}

// BufferIndex returns the index of the named buffer within the linked set.
func (l *Linker) BufferIndex(name string) (int, error) {
	idx := l.catalog.BufferIndex(name)
	if idx < 0 {
		return -1, fmt.Errorf("buffer '%s' in catalog '%s': %w", name, l.catalog.Name, core.ErrUnknownBuffer)
	}
	return idx, nil
}

// Linked reports whether register mappings have been generated.
func (l *Linker) Linked() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.layout != nil
}

/**
 * @brief Generates mappings between the constants as they exist within the system
 * memory constant buffers and the hardware registers into which they will be
 * mapped. Runs once; later calls return the same layout.
 *
 * @return The resolved layout, or an error if the catalog is malformed.
 */
func (l *Linker) Link() (*Layout, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.link()
}

func (l *Linker) link() (*Layout, error) {
	if l.layout != nil {
		return l.layout, nil
	}
	if err := l.catalog.Validate(); err != nil {
		err = fmt.Errorf("catalog '%s': %w", l.catalog.Name, err)
		core.LogError("%s", err)
		return nil, err
	}

	layout := &Layout{
		types:      make(map[metadata.TypeHandle]*TypeLayout),
		Referenced: collectReferencedTypes(l.catalog),
	}
	allocateTypeRegisters(l.catalog, layout)
	layout.Buffers = make([]*BufferLayout, len(l.catalog.Buffers))
	for i := range l.catalog.Buffers {
		layout.Buffers[i] = packBufferRegisters(&l.catalog.Buffers[i], layout)
	}
	l.layout = layout

	core.LogDebug("catalog '%s' linked: %d buffers, %d referenced types", l.catalog.Name, len(layout.Buffers), len(layout.Referenced))
	return layout, nil
}
