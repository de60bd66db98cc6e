package linker

import (
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

// collectReferencedTypes returns every user defined type reachable from the
// catalog's buffers, ordered so that a type always follows the types it
// embeds.
func collectReferencedTypes(catalog *metadata.Catalog) []metadata.TypeHandle {
	visited := make(map[metadata.TypeHandle]struct{})
	var referenced []metadata.TypeHandle
	for i := range catalog.Buffers {
		for j := range catalog.Buffers[i].Constants {
			c := &catalog.Buffers[i].Constants[j]
			if c.IsUDT {
				referenced = collectReferencedUDTs(catalog, visited, referenced, c.UDT)
			}
		}
	}
	return referenced
}

func collectReferencedUDTs(catalog *metadata.Catalog, visited map[metadata.TypeHandle]struct{}, referenced []metadata.TypeHandle, handle metadata.TypeHandle) []metadata.TypeHandle {
	if _, ok := visited[handle]; ok {
		return referenced
	}
	// Mark before recursing so self or mutually referencing types terminate.
	visited[handle] = struct{}{}

	t := &catalog.Types[handle]
	for i := range t.Constants {
		if t.Constants[i].IsUDT {
			referenced = collectReferencedUDTs(catalog, visited, referenced, t.Constants[i].UDT)
		}
	}
	return append(referenced, handle)
}
