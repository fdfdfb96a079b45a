package core

import (
	"fmt"
	"sync"
)

// Identifier allocation for input sources. Ids stay stable while the owner
// remains registered and become available for reuse once released, which is
// the contract input source ids carry across a session.

var identifierMutex sync.Mutex
var owners []interface{}

func IdentifierAcquireNewID(owner interface{}) int {
	identifierMutex.Lock()
	defer identifierMutex.Unlock()

	for i := range owners {
		// Existing free spot. Take it.
		if owners[i] == nil {
			owners[i] = owner
			return i
		}
	}

	// If here, no existing free slots. Need a new id, so push one.
	// This means the id will be length - 1.
	owners = append(owners, owner)
	return len(owners) - 1
}

func IdentifierReleaseID(id int) error {
	identifierMutex.Lock()
	defer identifierMutex.Unlock()

	if id < 0 || id >= len(owners) {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d), nothing was done", id, len(owners))
	}

	// Just zero out the entry, making it available for use.
	owners[id] = nil
	return nil
}
