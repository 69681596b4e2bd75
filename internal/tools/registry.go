package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/tavlaapp/tavla/internal/db"
	"github.com/tavlaapp/tavla/internal/llm"
)

// ErrRegistryUnavailable means the store backing the capabilities cannot be
// reached. Callers should treat it as retryable.
var ErrRegistryUnavailable = errors.New("tool registry unavailable")

// Handler executes one capability against the store.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Capability is one invocable tool: its advertised specification plus the
// function that backs it.
type Capability struct {
	Tool    llm.Tool
	Handler Handler
}

// Registry holds the invocable capabilities over the task board.
type Registry struct {
	store  *db.DB
	caps   []*Capability
	byName map[string]*Capability
}

func NewRegistry(store *db.DB) *Registry {
	r := &Registry{store: store, byName: make(map[string]*Capability)}
	r.registerBoardTools()
	return r
}

// Register adds a capability. Names must be unique within the registry.
func (r *Registry) Register(tool llm.Tool, h Handler) {
	if _, exists := r.byName[tool.Name]; exists {
		panic(fmt.Sprintf("tools: duplicate registration of %q", tool.Name))
	}
	c := &Capability{Tool: tool, Handler: h}
	r.caps = append(r.caps, c)
	r.byName[tool.Name] = c
}

// List returns the advertised tool specifications. It is re-fetched per
// chat turn, so it checks that the store is still reachable rather than
// advertising capabilities that cannot run.
func (r *Registry) List(ctx context.Context) ([]llm.Tool, error) {
	if err := r.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	tools := make([]llm.Tool, len(r.caps))
	for i, c := range r.caps {
		tools[i] = c.Tool
	}
	return tools, nil
}

// Resolve returns the capability registered under name.
func (r *Registry) Resolve(name string) (*Capability, bool) {
	c, ok := r.byName[name]
	return c, ok
}
