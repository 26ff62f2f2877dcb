package persist

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryGateway keeps everything in process memory. It is used when no
// database is configured and in tests.
type MemoryGateway struct {
	mu      sync.RWMutex
	docs    map[string]json.RawMessage
	scalars map[string]string

	// FailWrites makes every mutating call return ErrUnavailable.
	FailWrites bool
}

// NewMemoryGateway creates an empty MemoryGateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		docs:    make(map[string]json.RawMessage),
		scalars: make(map[string]string),
	}
}

func (g *MemoryGateway) LoadDocument(ctx context.Context, key string) (json.RawMessage, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	doc, ok := g.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append(json.RawMessage(nil), doc...), true, nil
}

func (g *MemoryGateway) SaveDocument(ctx context.Context, key string, doc json.RawMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailWrites {
		return ErrUnavailable
	}
	g.docs[key] = append(json.RawMessage(nil), doc...)
	return nil
}

func (g *MemoryGateway) RemoveDocument(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailWrites {
		return ErrUnavailable
	}
	delete(g.docs, key)
	return nil
}

func (g *MemoryGateway) ReadScalar(ctx context.Context, key string) (string, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.scalars[key]
	return v, ok, nil
}

func (g *MemoryGateway) WriteScalar(ctx context.Context, key, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailWrites {
		return ErrUnavailable
	}
	g.scalars[key] = value
	return nil
}

func (g *MemoryGateway) RemoveScalar(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailWrites {
		return ErrUnavailable
	}
	delete(g.scalars, key)
	return nil
}
