package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultRegistryCapacity is how many carts a Registry keeps in memory.
const DefaultRegistryCapacity = 10000

// Registry hands out one Store per cart id. All carts share a single Storage
// and are kept apart by key. Only the most recently used carts stay in
// memory; an evicted cart is reloaded from storage on its next Get.
type Registry struct {
	storage Storage
	opts    []Option

	mu     sync.Mutex
	stores *lru.Cache
}

// NewRegistry keeps at most capacity carts in memory. A capacity below one
// selects DefaultRegistryCapacity.
func NewRegistry(storage Storage, capacity int, opts ...Option) *Registry {
	if capacity < 1 {
		capacity = DefaultRegistryCapacity
	}
	// lru.New only fails for a non-positive size.
	stores, _ := lru.New(capacity)
	return &Registry{
		storage: storage,
		opts:    opts,
		stores:  stores,
	}
}

// NewID returns a fresh cart id.
func (r *Registry) NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an id issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns the cart for id, loading it from storage on first use. The
// load runs without holding the registry lock, so a slow read only delays
// callers of that one cart.
func (r *Registry) Get(ctx context.Context, id string) *Store {
	if s, ok := r.stores.Get(id); ok {
		return s.(*Store)
	}

	opts := append(append([]Option(nil), r.opts...), WithKey(storageKey(id)))
	loaded := NewStore(ctx, r.storage, opts...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores.Get(id); ok {
		return s.(*Store)
	}
	r.stores.Add(id, loaded)
	return loaded
}

// Len returns the number of carts held in memory.
func (r *Registry) Len() int {
	return r.stores.Len()
}

// Forget drops the in-memory cart for id. Its saved state is kept and will be
// reloaded by the next Get.
func (r *Registry) Forget(id string) {
	r.stores.Remove(id)
}

func storageKey(id string) string {
	return DefaultKey + ":" + id
}
