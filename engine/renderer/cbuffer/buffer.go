package cbuffer

import (
	"fmt"

	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer/linker"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

// ConstantBuffer is a single instance of a constant buffer. It owns the
// system memory copy of the data, the transfer plan that maps it onto
// registers and the register image handed to the binder. An instance must
// not be used from more than one goroutine at a time.
type ConstantBuffer struct {
	linker      *linker.Linker
	shared      bool
	bufferIndex int
	desc        *metadata.ConstantBufferDesc

	layout         *linker.BufferLayout
	systemBuffer   []byte
	registerBuffer []byte
	transferMap    []TransferItem

	loaded bool
	locked bool
	dirty  bool
}

/**
 * @brief Creates a buffer instance with its own private linker.
 *
 * @param desc The buffer description.
 * @param types The user defined types the buffer may reference.
 * @param config The linker configuration.
 * @return A new unloaded buffer.
 */
func New(desc metadata.ConstantBufferDesc, types []metadata.ConstantTypeDesc, config core.LinkerConfig) *ConstantBuffer {
	catalog := &metadata.Catalog{
		Name:    desc.Name,
		Types:   types,
		Buffers: []metadata.ConstantBufferDesc{desc},
	}
	return &ConstantBuffer{
		linker:      linker.NewLinker(config, catalog),
		bufferIndex: 0,
		desc:        &catalog.Buffers[0],
	}
}

/**
 * @brief Creates a buffer instance for one of the buffers known to a shared linker.
 * Every instance created from the same linker shares one register layout.
 *
 * @param l The shared linker.
 * @param bufferName The name of the buffer within the linker's catalog.
 * @return A new unloaded buffer, or an error if the buffer is unknown.
 */
func NewShared(l *linker.Linker, bufferName string) (*ConstantBuffer, error) {
	idx, err := l.BufferIndex(bufferName)
	if err != nil {
		return nil, err
	}
	return &ConstantBuffer{
		linker:      l,
		shared:      true,
		bufferIndex: idx,
		desc:        &l.Catalog().Buffers[idx],
	}, nil
}

// Load links the buffer (if the linker has not done so already), allocates
// and initialises system memory and compiles the transfer plan.
func (cb *ConstantBuffer) Load() error {
	if cb.loaded {
		return nil
	}

	layout, err := cb.linker.Link()
	if err != nil {
		return fmt.Errorf("load '%s': %w", cb.desc.Name, err)
	}
	cb.layout = layout.Buffers[cb.bufferIndex]

	length := systemLength(cb.desc)
	cb.systemBuffer = make([]byte, length)
	for i := range cb.desc.Constants {
		c := &cb.desc.Constants[i]
		if len(c.Default) == 0 || c.Offset >= length {
			continue
		}
		end := c.Offset + c.TotalLength
		if end > length {
			end = length
		}
		copy(cb.systemBuffer[c.Offset:end], c.Default)
	}

	cb.transferMap = compileTransferMap(cb.linker.Catalog(), layout, cb.bufferIndex, length)
	cb.loaded = true
	cb.dirty = true

	core.LogDebug("constant buffer '%s' loaded: %d bytes, %d registers, %d transfers (shared linker: %t)",
		cb.desc.Name, length, cb.layout.RegisterCount, len(cb.transferMap), cb.shared)
	return nil
}

// Unload releases system memory, the register image and the transfer plan.
// The layout stays with the linker.
func (cb *ConstantBuffer) Unload() {
	cb.systemBuffer = nil
	cb.registerBuffer = nil
	cb.transferMap = nil
	cb.layout = nil
	cb.loaded = false
	cb.locked = false
	cb.dirty = false
}

// systemLength returns the declared length of the buffer, or the extent of
// its constants when no length was declared.
func systemLength(desc *metadata.ConstantBufferDesc) uint32 {
	if desc.Length != 0 {
		return desc.Length
	}
	var length uint32
	for i := range desc.Constants {
		c := &desc.Constants[i]
		if end := c.Offset + c.TotalLength; end > length {
			length = end
		}
	}
	return length
}

/**
 * @brief Locks a region of the system memory buffer for writing. The region is
 * uploaded on the next apply after Unlock.
 *
 * @param offset The byte offset of the region.
 * @param size The size of the region in bytes; 0 locks everything from offset to the end.
 * @return The writable region.
 */
func (cb *ConstantBuffer) Lock(offset, size uint32) ([]byte, error) {
	if !cb.loaded {
		return nil, fmt.Errorf("lock '%s': %w", cb.desc.Name, core.ErrBufferNotLoaded)
	}
	if cb.locked {
		return nil, fmt.Errorf("lock '%s': %w", cb.desc.Name, core.ErrBufferLocked)
	}
	length := uint32(len(cb.systemBuffer))
	if offset > length {
		return nil, fmt.Errorf("lock '%s' at %d: %w", cb.desc.Name, offset, core.ErrOutOfRange)
	}
	if size == 0 {
		size = length - offset
	}
	if uint64(offset)+uint64(size) > uint64(length) {
		return nil, fmt.Errorf("lock '%s' %d bytes at %d: %w", cb.desc.Name, size, offset, core.ErrOutOfRange)
	}
	cb.locked = true
	return cb.systemBuffer[offset : offset+size : offset+size], nil
}

func (cb *ConstantBuffer) Unlock() {
	if !cb.locked {
		return
	}
	cb.locked = false
	cb.dirty = true
}

// UpdateBuffer copies data into system memory at offset.
func (cb *ConstantBuffer) UpdateBuffer(offset uint32, data []byte) error {
	region, err := cb.Lock(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(region, data)
	cb.Unlock()
	return nil
}

/**
 * @brief Finds a constant by its path, e.g. "lights[1].color".
 *
 * @return The constant description and its byte offset in system memory.
 */
func (cb *ConstantBuffer) ConstantDesc(name string) (*metadata.ConstantDesc, uint32, error) {
	c, offset, err := resolveConstant(cb.desc.Constants, cb.linker.Catalog().Types, name)
	if err != nil {
		return nil, 0, fmt.Errorf("buffer '%s': %w", cb.desc.Name, err)
	}
	return c, offset, nil
}

func (cb *ConstantBuffer) Name() string {
	return cb.desc.Name
}

func (cb *ConstantBuffer) Desc() *metadata.ConstantBufferDesc {
	return cb.desc
}

func (cb *ConstantBuffer) Linker() *linker.Linker {
	return cb.linker
}

func (cb *ConstantBuffer) Layout() *linker.BufferLayout {
	return cb.layout
}

func (cb *ConstantBuffer) TransferMap() []TransferItem {
	return cb.transferMap
}

// RegisterBuffer returns the register image, or nil before the first apply.
func (cb *ConstantBuffer) RegisterBuffer() []byte {
	return cb.registerBuffer
}

func (cb *ConstantBuffer) SystemBuffer() []byte {
	return cb.systemBuffer
}

func (cb *ConstantBuffer) IsLoaded() bool {
	return cb.loaded
}

func (cb *ConstantBuffer) IsDirty() bool {
	return cb.dirty
}
