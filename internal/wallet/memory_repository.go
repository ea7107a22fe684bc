package wallet

import (
	"context"
	"sync"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[address.Address]*Wallet
}

// NewMemoryRepository constructs an in-memory repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[address.Address]*Wallet)}
}

func (r *memoryRepository) Create(_ context.Context, wallet *Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[wallet.Address()]; exists {
		return ErrWalletExists
	}
	r.storage[wallet.Address()] = wallet
	return nil
}

func (r *memoryRepository) Get(_ context.Context, addr address.Address) (*Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallet, ok := r.storage[addr]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}

func (r *memoryRepository) Delete(_ context.Context, addr address.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[addr]; !ok {
		return ErrWalletNotFound
	}
	delete(r.storage, addr)
	return nil
}
