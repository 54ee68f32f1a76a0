// Package storeregistry maps backend names ("memory", "localfs", "grpc") to
// constructors for the local fallback store.
//
// Backend packages register themselves from init(), so a binary offers
// exactly the backends it blank-imports:
//
//	import _ "xdao.co/datadao/storage/localfs"
package storeregistry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"xdao.co/datadao/storage"
)

var (
	ErrUnknownBackend = errors.New("storeregistry: unknown backend")
	ErrNotSupported   = errors.New("storeregistry: backend not supported here")
)

// OpenFunc builds a store from backend options. Option keys follow the
// config file, e.g. "localfs-dir". The close function may be nil.
type OpenFunc func(opts map[string]string) (storage.Store, func() error, error)

type Backend struct {
	Name        string
	Description string
	Usage       Usage
	Open        OpenFunc
}

func (b Backend) validate() error {
	switch {
	case b.Name == "":
		return errors.New("storeregistry: backend name is required")
	case b.Open == nil:
		return fmt.Errorf("storeregistry: backend %q has no Open", b.Name)
	case b.Usage == 0:
		return fmt.Errorf("storeregistry: backend %q has no Usage", b.Name)
	}
	return nil
}

type registry struct {
	mu     sync.RWMutex
	byName map[string]Backend
}

var global = &registry{byName: map[string]Backend{}}

func (r *registry) add(b Backend) error {
	if err := b.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[b.Name]; dup {
		return fmt.Errorf("storeregistry: backend %q registered twice", b.Name)
	}
	r.byName[b.Name] = b
	return nil
}

// lookup is the single place that decides whether name is usable for usage.
func (r *registry) lookup(name string, usage Usage) (Backend, error) {
	r.mu.RLock()
	b, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return Backend{}, fmt.Errorf("%w %q", ErrUnknownBackend, name)
	}
	if !b.Usage.allows(usage) {
		return Backend{}, fmt.Errorf("%w: %q", ErrNotSupported, name)
	}
	return b, nil
}

func (r *registry) matching(usage Usage) []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Backend
	for _, b := range r.byName {
		if b.Usage.allows(usage) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func Register(b Backend) error { return global.add(b) }

// MustRegister is for init() hooks; a bad registration is a programming error.
func MustRegister(b Backend) {
	if err := Register(b); err != nil {
		panic(err)
	}
}

// List returns the backends available for usage, sorted by name.
func List(usage Usage) []Backend { return global.matching(usage) }

func Names(usage Usage) []string {
	var names []string
	for _, b := range List(usage) {
		names = append(names, b.Name)
	}
	return names
}

func Known(name string, usage Usage) bool {
	_, err := global.lookup(name, usage)
	return err == nil
}

// Open builds the named backend. A nil opts is treated as empty.
func Open(name string, usage Usage, opts map[string]string) (storage.Store, func() error, error) {
	b, err := global.lookup(name, usage)
	if err != nil {
		return nil, nil, err
	}
	if opts == nil {
		opts = map[string]string{}
	}
	return b.Open(opts)
}
