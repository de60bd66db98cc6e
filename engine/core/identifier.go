package core

import (
	"fmt"
	"sync"
)

var (
	identifierMutex sync.Mutex
	owners          []interface{}
)

// IdentifierAquireNewID hands out the lowest free reference id and records
// owner against it.
func IdentifierAquireNewID(owner interface{}) uint32 {
	identifierMutex.Lock()
	defer identifierMutex.Unlock()

	if len(owners) == 0 {
		owners = make([]interface{}, 100)
	}
	for i := range owners {
		// Existing free spot. Take it.
		if owners[i] == nil {
			owners[i] = owner
			return uint32(i)
		}
	}

	// No existing free slots, push one. The id is the new length - 1.
	owners = append(owners, owner)
	return uint32(len(owners) - 1)
}

// IdentifierReleaseID makes id available for reuse.
func IdentifierReleaseID(id uint32) error {
	identifierMutex.Lock()
	defer identifierMutex.Unlock()

	if len(owners) == 0 {
		return fmt.Errorf("IdentifierReleaseID called before IdentifierAquireNewID. Nothing was done")
	}
	if id >= uint32(len(owners)) {
		return fmt.Errorf("IdentifierReleaseID: id '%d' out of range (max=%d). Nothing was done", id, len(owners))
	}

	// Just zero out the entry, making it available for use.
	owners[id] = nil
	return nil
}

// IdentifierOwner returns the owner recorded for id, or nil.
func IdentifierOwner(id uint32) interface{} {
	identifierMutex.Lock()
	defer identifierMutex.Unlock()

	if id >= uint32(len(owners)) {
		return nil
	}
	return owners[id]
}
