package i2cbus

import (
	"sort"
	"sync"

	"tinygo.org/x/drivers"

	"rtcclock-go/errcode"
	"rtcclock-go/services/hal/internal/core"
)

type claimKey struct {
	bus  string
	addr uint16
}

// Registry maps bus ids ("i2c0", "/dev/i2c-1", ...) to owners and tracks one
// claimant per (bus, address).
type Registry struct {
	mu     sync.Mutex
	owners map[string]*Owner
	claims map[claimKey]string
}

var _ core.ResourceRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		owners: make(map[string]*Owner),
		claims: make(map[claimKey]string),
	}
}

// Add starts an owner for hw under id. Adding an existing id replaces it.
func (r *Registry) Add(id string, hw drivers.I2C) *Owner {
	o := NewOwner(id, hw)
	r.mu.Lock()
	old := r.owners[id]
	r.owners[id] = o
	r.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return o
}

// IDs lists registered buses in order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.owners))
	for id := range r.owners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) ClaimI2C(devID, busID string, addr uint16) (core.I2COwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.owners[busID]
	if o == nil {
		return nil, errcode.UnknownBus
	}
	k := claimKey{bus: busID, addr: addr}
	if owner, taken := r.claims[k]; taken && owner != devID {
		return nil, errcode.BusInUse
	}
	r.claims[k] = devID
	return o, nil
}

func (r *Registry) ReleaseI2C(devID, busID string, addr uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := claimKey{bus: busID, addr: addr}
	if r.claims[k] == devID {
		delete(r.claims, k)
	}
}

// Close stops every bus worker.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.owners {
		o.Close()
	}
}
