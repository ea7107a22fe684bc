package factory

import (
	"sync"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
)

// Catalog looks up deployed factories by address. The first registered
// factory is the default.
type Catalog struct {
	mu        sync.RWMutex
	factories map[address.Address]*Factory
	fallback  *Factory
}

func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[address.Address]*Factory)}
}

// Register adds f to the catalog.
func (c *Catalog) Register(f *Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[f.Address()] = f
	if c.fallback == nil {
		c.fallback = f
	}
}

// Resolve returns the factory at addr, or the default one for the zero
// address.
func (c *Catalog) Resolve(addr address.Address) (*Factory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if addr.IsZero() {
		if c.fallback == nil {
			return nil, ErrFactoryNotFound
		}
		return c.fallback, nil
	}
	f, ok := c.factories[addr]
	if !ok {
		return nil, ErrFactoryNotFound
	}
	return f, nil
}
