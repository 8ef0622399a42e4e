package pdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/matzehuels/protocomposer/pkg/errors"
	"github.com/matzehuels/protocomposer/pkg/host"
)

// Handler runs one entry point on a raw JSON input.
type Handler func(ctx context.Context, h host.Host, input json.RawMessage) (any, error)

// Handle adapts a typed entry point to a Handler. A missing or null input
// decodes to the zero value of In.
func Handle[In, Out any](fn func(context.Context, host.Host, In) (Out, error)) Handler {
	return func(ctx context.Context, h host.Host, raw json.RawMessage) (any, error) {
		var in In
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			if err := json.Unmarshal(trimmed, &in); err != nil {
				if errors.GetCode(err) != "" {
					return nil, err
				}
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode input")
			}
		}
		return fn(ctx, h, in)
	}
}

// Registry maps entry-point names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler.
// Returns an error if the name is invalid or already registered.
func (r *Registry) Register(name string, h Handler) error {
	if err := errors.ValidateFunctionName(name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("function %q already registered", name)
	}
	r.handlers[name] = h
	return nil
}

// Names returns the registered entry points in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call dispatches to the named entry point.
func (r *Registry) Call(ctx context.Context, name string, h host.Host, input json.RawMessage) (any, error) {
	if err := errors.ValidateFunctionName(name); err != nil {
		return nil, err
	}
	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownFunction, "unknown function %q", name)
	}
	return handler(ctx, h, input)
}
