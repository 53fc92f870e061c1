// Package iocache persists the run ledger of cleaning runs.
package iocache

import (
	"sync"

	"github.com/huangsam/cgmprep/internal/contract"
)

// RunStoreManager holds the RunStore used by the current process.
type RunStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runs         contract.RunStore
}

var _ contract.StoreManager = &RunStoreManager{} // Compile-time check

// GetRunStore returns the run ledger, or nil when tracking is disabled.
func (mgr *RunStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
