// Package registry maps (provider, name) pairs to descriptors. A Builder collects
// registrations during startup; Build freezes them into a read-only Registry.
package registry

import (
	"go.uber.org/zap"

	"github.com/taskrouter/taskrouter-api/internal/domain"
)

// Kind selects which not-found error a Registry reports.
type Kind string

const (
	KindTask   Kind = "task"
	KindRouter Kind = "router"
)

// Named is satisfied by every descriptor.
type Named interface {
	Name() string
}

type bucket[D Named] struct {
	order []string
	byKey map[string]D
}

// Builder accumulates registrations. It is not safe for concurrent use.
type Builder[D Named] struct {
	kind    Kind
	log     *zap.SugaredLogger
	buckets map[domain.Provider]*bucket[D]
	order   []domain.Provider
}

func NewBuilder[D Named](kind Kind, log *zap.SugaredLogger) *Builder[D] {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Builder[D]{
		kind:    kind,
		log:     log.Named("registry"),
		buckets: make(map[domain.Provider]*bucket[D]),
	}
}

// Register adds d under provider. A second registration of the same name replaces
// the first one and keeps its position in List.
func (b *Builder[D]) Register(provider domain.Provider, d D) {
	bk, ok := b.buckets[provider]
	if !ok {
		bk = &bucket[D]{byKey: make(map[string]D)}
		b.buckets[provider] = bk
		b.order = append(b.order, provider)
	}
	name := d.Name()
	if _, dup := bk.byKey[name]; dup {
		b.log.Warnw("Duplicate registration replaces earlier descriptor",
			"kind", b.kind, "provider", provider, "name", name)
	} else {
		bk.order = append(bk.order, name)
	}
	bk.byKey[name] = d
}

// Build freezes the registrations. The builder must not be used afterwards.
func (b *Builder[D]) Build() *Registry[D] {
	r := &Registry[D]{
		kind:      b.kind,
		buckets:   make(map[domain.Provider]*bucket[D], len(b.buckets)),
		providers: append([]domain.Provider(nil), b.order...),
	}
	for p, bk := range b.buckets {
		frozen := &bucket[D]{
			order: append([]string(nil), bk.order...),
			byKey: make(map[string]D, len(bk.byKey)),
		}
		for k, v := range bk.byKey {
			frozen.byKey[k] = v
		}
		r.buckets[p] = frozen
	}
	return r
}

// Registry is immutable and needs no locking.
type Registry[D Named] struct {
	kind      Kind
	buckets   map[domain.Provider]*bucket[D]
	providers []domain.Provider
}

// Get returns the descriptor registered under (provider, name).
func (r *Registry[D]) Get(provider domain.Provider, name string) (D, error) {
	var zero D
	bk, ok := r.buckets[provider]
	if !ok || len(bk.order) == 0 {
		return zero, &domain.UnknownProviderError{Provider: string(provider)}
	}
	d, ok := bk.byKey[name]
	if !ok {
		if r.kind == KindRouter {
			return zero, &domain.UnknownRouterError{Provider: provider, Name: name}
		}
		return zero, &domain.UnknownTaskError{Provider: provider, Name: name}
	}
	return d, nil
}

// List returns the names registered for provider in first-registration order.
func (r *Registry[D]) List(provider domain.Provider) []string {
	bk, ok := r.buckets[provider]
	if !ok {
		return []string{}
	}
	return append([]string(nil), bk.order...)
}

// Descriptors returns the descriptors of provider in List order.
func (r *Registry[D]) Descriptors(provider domain.Provider) []D {
	bk, ok := r.buckets[provider]
	if !ok {
		return nil
	}
	out := make([]D, 0, len(bk.order))
	for _, name := range bk.order {
		out = append(out, bk.byKey[name])
	}
	return out
}

// Providers returns the providers that have at least one entry.
func (r *Registry[D]) Providers() []domain.Provider {
	return append([]domain.Provider(nil), r.providers...)
}

// Len returns the total number of entries.
func (r *Registry[D]) Len() int {
	n := 0
	for _, bk := range r.buckets {
		n += len(bk.order)
	}
	return n
}
