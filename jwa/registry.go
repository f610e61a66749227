package jwa

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps algorithm identifiers to implementations. It is read-only
// after construction and safe for concurrent use.
type Registry struct {
	algs map[string]Algorithm
}

// NewRegistry builds a registry. A repeated or empty identifier, or an
// attempt to register "none", is reported as [ErrDuplicateAlgorithm].
func NewRegistry(algs ...Algorithm) (*Registry, error) {
	r := &Registry{algs: make(map[string]Algorithm, len(algs))}
	for _, alg := range algs {
		if alg == nil {
			return nil, fmt.Errorf("%w: nil algorithm", ErrDuplicateAlgorithm)
		}
		id := alg.ID()
		switch id {
		case "":
			return nil, fmt.Errorf("%w: empty identifier", ErrDuplicateAlgorithm)
		case "none":
			return nil, fmt.Errorf("%w: %q cannot be registered", ErrDuplicateAlgorithm, id)
		}
		if _, dup := r.algs[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAlgorithm, id)
		}
		r.algs[id] = alg
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on conflicting identifiers.
func MustRegistry(algs ...Algorithm) *Registry {
	r, err := NewRegistry(algs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the algorithm registered under id.
func (r *Registry) Lookup(id string) (Algorithm, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrAlgorithmNotFound, id)
	}
	alg, ok := r.algs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAlgorithmNotFound, id)
	}
	return alg, nil
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.algs))
	for id := range r.algs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Restrict returns a registry holding only ids. Every id must be present.
func (r *Registry) Restrict(ids ...string) (*Registry, error) {
	algs := make([]Algorithm, 0, len(ids))
	for _, id := range ids {
		alg, err := r.Lookup(id)
		if err != nil {
			return nil, err
		}
		algs = append(algs, alg)
	}
	return NewRegistry(algs...)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry of every supported algorithm.
func Default() *Registry {
	defaultOnce.Do(func() {
		algs := make([]Algorithm, 0, 13)
		for _, width := range []int{256, 384, 512} {
			for _, build := range []func(int) (Algorithm, error){HMAC, RSA, RSAPSS, ECDSA} {
				alg, err := build(width)
				if err != nil {
					panic(err)
				}
				algs = append(algs, alg)
			}
		}
		algs = append(algs, EdDSA())
		defaultRegistry = MustRegistry(algs...)
	})
	return defaultRegistry
}
