package preference

import (
	"context"
	"sync"
)

// MemoryKV is an in-process KV, used in tests and local development.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// MemoryProfiles keeps one MemoryKV per profile.
type MemoryProfiles struct {
	mu       sync.Mutex
	profiles map[string]*MemoryKV
}

// NewMemoryProfiles returns an empty MemoryProfiles.
func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{profiles: make(map[string]*MemoryKV)}
}

func (p *MemoryProfiles) ForProfile(profileID string) KV {
	p.mu.Lock()
	defer p.mu.Unlock()
	kv, ok := p.profiles[profileID]
	if !ok {
		kv = NewMemoryKV()
		p.profiles[profileID] = kv
	}
	return kv
}
