// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package handler maps configuration properties to the code that acts on
// them and runs that code against the current values.
//
// Dispatch is best-effort: a missing handler or a failing one is logged and
// never stops the remaining handlers from running.
package handler

import (
	"context"

	"zombiezen.com/go/log"
)

// A Func acts on a property's value, typically by changing process state
// such as a feature flag. Returning an error or panicking counts as a failure.
type Func func(ctx context.Context, value string) error

// Key identifies a property.
type Key struct {
	Section string
	Key     string
}

// String returns the key in "[section].key" form.
func (k Key) String() string {
	return "[" + k.Section + "]." + k.Key
}

// Map is a set of handlers keyed by property.
type Map map[Key]Func

// Source is the set of values that handlers are run against.
// *ini.Store implements Source.
type Source interface {
	Get(section, key string) (string, bool)
	Range(f func(section, key, value string) bool)
}

// A Registry holds the handlers for a configuration. The zero value is an
// empty registry. A Registry is not safe for concurrent use.
type Registry struct {
	funcs Map
}

// NewRegistry returns a registry holding a copy of m. Nil entries of m are
// ignored.
func NewRegistry(m Map) *Registry {
	r := new(Registry)
	for k, f := range m {
		if f != nil {
			r.Register(k.Section, k.Key, f)
		}
	}
	return r
}

// Register sets the handler for the given property, replacing any previous
// handler. The property does not need to exist. Register panics if f is nil.
func (r *Registry) Register(section, key string, f Func) {
	if f == nil {
		panic("handler.Registry.Register: nil Func for " + Key{section, key}.String())
	}
	if r.funcs == nil {
		r.funcs = make(Map)
	}
	r.funcs[Key{section, key}] = f
}

// Unregister removes the handler for the given property and reports whether
// there was one.
func (r *Registry) Unregister(section, key string) bool {
	if r == nil {
		return false
	}
	k := Key{section, key}
	if _, ok := r.funcs[k]; !ok {
		return false
	}
	delete(r.funcs, k)
	return true
}

// Lookup returns the handler for the given property.
func (r *Registry) Lookup(section, key string) (Func, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.funcs[Key{section, key}]
	return f, ok
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.funcs)
}

// ApplyAll runs the handler of every property in src with its value, in src's
// order. Properties without a handler are logged as warnings. Failing
// handlers are logged and do not stop the others.
//
// The properties are read from src before any handler runs, so handlers may
// modify src.
func (r *Registry) ApplyAll(ctx context.Context, src Source) {
	var props []property
	src.Range(func(section, key, value string) bool {
		props = append(props, property{Key{section, key}, value})
		return true
	})
	for _, p := range props {
		f, ok := r.Lookup(p.key.Section, p.key.Key)
		if !ok {
			log.Warnf(ctx, "No handler for config %v; skipping", p.key)
			continue
		}
		log.Debugf(ctx, "Applying config %v = %q", p.key, p.value)
		r.run(ctx, p.key, f, p.value)
	}
}

// Apply runs the handler for a single property with its current value in
// src. It does nothing if the property or its handler does not exist.
// A failing handler is logged.
func (r *Registry) Apply(ctx context.Context, src Source, section, key string) {
	value, ok := src.Get(section, key)
	if !ok {
		return
	}
	f, ok := r.Lookup(section, key)
	if !ok {
		return
	}
	k := Key{section, key}
	if r.run(ctx, k, f, value) {
		log.Debugf(ctx, "Applied config %v", k)
	}
}

// run calls f and converts both a returned error and a panic into a log
// entry. It reports whether f succeeded.
func (r *Registry) run(ctx context.Context, k Key, f Func, value string) (ok bool) {
	defer func() {
		if v := recover(); v != nil {
			log.Errorf(ctx, "Failed to apply config %v: panic: %v", k, v)
			ok = false
		}
	}()
	if err := f(ctx, value); err != nil {
		log.Errorf(ctx, "Failed to apply config %v: %v", k, err)
		return false
	}
	return true
}

type property struct {
	key   Key
	value string
}
