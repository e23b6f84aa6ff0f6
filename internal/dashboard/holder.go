// internal/dashboard/holder.go
package dashboard

import (
	"sync"

	"recruitment-analytics/internal/dataset"
)

// Holder guards the current dataset. Datasets are immutable after load, so an
// in-flight render keeps working against the dataset it started with while a
// reload swaps in a new one.
type Holder struct {
	mu sync.RWMutex
	ds *dataset.Dataset
}

// Current returns the loaded dataset, or nil before the first load.
func (h *Holder) Current() *dataset.Dataset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ds
}

// Swap installs a newly loaded dataset and returns the previous one.
func (h *Holder) Swap(ds *dataset.Dataset) *dataset.Dataset {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.ds
	h.ds = ds
	return old
}
