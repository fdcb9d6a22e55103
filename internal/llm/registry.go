package llm

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry holds the configured providers and answers availability and
// fallback-order questions for the orchestrator.
//
// Availability has two layers: a provider is configured when it holds a
// credential (Provider.Available), and alive unless a startup probe failed.
// Probing is optional; providers that never probed count as alive.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	dead      map[string]bool
	logger    *zap.Logger
}

// NewRegistry builds a registry over the given providers. Later providers
// with a duplicate name replace earlier ones.
func NewRegistry(logger *zap.Logger, providers ...Provider) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		providers: make(map[string]Provider, len(providers)),
		dead:      make(map[string]bool),
		logger:    logger,
	}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Available reports whether the named provider is configured and alive.
func (r *Registry) Available(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return ok && p.Available() && !r.dead[name]
}

// AvailableNames returns the names of configured, alive providers in fixed
// priority order.
func (r *Registry) AvailableNames() []string {
	names := make([]string, 0, len(FallbackOrder))
	for _, name := range FallbackOrder {
		if r.Available(name) {
			names = append(names, name)
		}
	}
	return names
}

// PreferenceOrder returns the providers to try for a request, requested
// first and the rest of the priority order after it, restricted to
// configured, alive providers. An empty or unknown requested name yields the
// plain priority order.
func (r *Registry) PreferenceOrder(requested string) []Provider {
	ordered := make([]Provider, 0, len(FallbackOrder))
	seen := make(map[string]bool, len(FallbackOrder))

	appendIfAvailable := func(name string) {
		if seen[name] || !r.Available(name) {
			return
		}
		seen[name] = true
		p, _ := r.Get(name)
		ordered = append(ordered, p)
	}

	if requested != "" {
		appendIfAvailable(requested)
	}
	for _, name := range FallbackOrder {
		appendIfAvailable(name)
	}
	return ordered
}

// ProbeAll probes every configured provider that supports probing. A failed
// probe marks the provider dead; it stays out of fallback chains until the
// process restarts. Unconfigured providers are skipped.
func (r *Registry) ProbeAll(ctx context.Context) {
	r.mu.RLock()
	providers := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, p)
	}
	r.mu.RUnlock()

	for _, p := range providers {
		prober, ok := p.(Prober)
		if !ok || !p.Available() {
			continue
		}
		if err := prober.Probe(ctx); err != nil {
			r.logger.Warn("provider probe failed, excluding from fallback",
				zap.String("provider", p.Name()),
				zap.Error(err))
			r.mu.Lock()
			r.dead[p.Name()] = true
			r.mu.Unlock()
			continue
		}
		r.logger.Info("provider probe succeeded", zap.String("provider", p.Name()))
	}
}
