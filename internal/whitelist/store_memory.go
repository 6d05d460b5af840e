package whitelist

import (
	"context"
	"strings"
	"sync"
)

// InMemory keeps the roster in process memory, grouped by cohort the same
// way the registrar hands the lists over.
type InMemory struct {
	mu      sync.RWMutex
	byRegNo map[string]Entry
}

func NewInMemory() *InMemory {
	return &InMemory{byRegNo: make(map[string]Entry)}
}

// Add registers roster entries. Later entries with the same registration
// number overwrite earlier ones.
func (r *InMemory) Add(entries ...Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range entries {
		r.byRegNo[strings.ToLower(entry.RegNo)] = entry
	}
}

func (r *InMemory) Contains(_ context.Context, regNo string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byRegNo[strings.ToLower(regNo)]
	return ok, nil
}
