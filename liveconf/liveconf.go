// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package liveconf keeps a configuration file's contents live in memory and
// runs registered handlers when its values are loaded or changed.
//
// A Config is backed by one file in the format described by package ini. Open
// reads it and, by default, runs the handler for every property it found.
// Later changes made through Set are only written back when Save is called.
//
// Every operation that can log takes a context.Context: log entries go
// through zombiezen.com/go/log using that context, so callers choose where
// they end up. Nothing blocks on or is canceled by the context.
package liveconf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/yourbase/liveconf/fsutil"
	"github.com/yourbase/liveconf/handler"
	"github.com/yourbase/liveconf/ini"
	"zombiezen.com/go/log"
)

// Options holds optional parameters for Open.
type Options struct {
	// Handlers is the initial set of handlers. It is copied.
	Handlers handler.Map

	// SkipApply stops Open from running the handlers after reading the file.
	SkipApply bool

	// Parse is passed to the parser on Open and Reload.
	Parse *ini.ParseOptions
}

// Config is an in-memory configuration backed by a file. A Config is not safe
// for concurrent use; callers sharing one between goroutines must serialize
// access themselves.
type Config struct {
	path      string
	parseOpts *ini.ParseOptions
	store     *ini.Store
	loadErr   error
	handlers  *handler.Registry
}

// Open reads the configuration file at path, expanding a leading "~" to the
// user's home directory. Nil options are treated identically as passing the
// zero value, which runs every handler once the file is read.
//
// A file that is missing or unreadable is logged and results in an empty
// configuration, so Open always returns a usable Config. LoadErr reports what
// went wrong.
func Open(ctx context.Context, path string, opts *Options) *Config {
	if opts == nil {
		opts = new(Options)
	}
	c := &Config{
		path:      fsutil.ExpandTilde(path),
		parseOpts: opts.Parse,
		store:     new(ini.Store),
		handlers:  handler.NewRegistry(opts.Handlers),
	}
	c.load(ctx)
	if !opts.SkipApply {
		c.ApplyAll(ctx)
	}
	return c
}

func (c *Config) load(ctx context.Context) {
	st, err := ini.ParseFile(ctx, c.path, c.parseOpts)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debugf(ctx, "Config file %s does not exist; starting empty", c.path)
	case err != nil:
		log.Errorf(ctx, "Unable to read config file: %v", err)
	}
	c.store = st
	c.loadErr = err
}

// LoadErr returns the error from the last time the file was read by Open or
// Reload, or nil if it was read completely. The in-memory configuration then
// holds only what was read before the error, so saving it over the file may
// lose properties. An error satisfying errors.Is(err, fs.ErrNotExist) means
// the file did not exist yet.
func (c *Config) LoadErr() error {
	return c.loadErr
}

// Path returns the path of the file backing c.
func (c *Config) Path() string {
	return c.path
}

// Reload discards the in-memory configuration, reads the file again, and
// runs every handler, including those registered after Open.
func (c *Config) Reload(ctx context.Context) {
	c.load(ctx)
	c.ApplyAll(ctx)
}

// Register sets the handler for the given property, replacing any previous
// one. The property does not need to exist yet.
func (c *Config) Register(section, key string, f handler.Func) {
	c.handlers.Register(section, key, f)
}

// Unregister removes the handler for the given property and reports whether
// there was one.
func (c *Config) Unregister(section, key string) bool {
	return c.handlers.Unregister(section, key)
}

// ApplyAll runs the handler of every property with its current value.
// Missing and failing handlers are logged.
func (c *Config) ApplyAll(ctx context.Context) {
	c.handlers.ApplyAll(ctx, c.store)
}

// Apply runs the handler for one property with its current value. It does
// nothing if the property or its handler does not exist.
func (c *Config) Apply(ctx context.Context, section, key string) {
	c.handlers.Apply(ctx, c.store, section, key)
}

// Get returns the value of a property and whether it exists.
func (c *Config) Get(section, key string) (string, bool) {
	return c.store.Get(section, key)
}

// Set changes a property in memory, creating it if needed. No handler runs.
func (c *Config) Set(ctx context.Context, section, key, value string) {
	c.store.Set(section, key, value)
	log.Debugf(ctx, "Set config [%s].%s = %q", section, key, value)
}

// SetAndApply changes a property in memory and then runs its handler.
func (c *Config) SetAndApply(ctx context.Context, section, key, value string) {
	c.Set(ctx, section, key, value)
	c.Apply(ctx, section, key)
}

// Delete removes a property from memory and reports whether it existed.
// Removing the last property of a section removes the section.
func (c *Config) Delete(ctx context.Context, section, key string) bool {
	if !c.store.Delete(section, key) {
		return false
	}
	log.Debugf(ctx, "Removed config [%s].%s", section, key)
	return true
}

// Has reports whether the property exists.
func (c *Config) Has(section, key string) bool {
	return c.store.Has(section, key)
}

// HasSection reports whether the section has any properties.
func (c *Config) HasSection(section string) bool {
	return c.store.HasSection(section)
}

// Sections returns the section names in the order they were first added.
func (c *Config) Sections() []string {
	return c.store.Sections()
}

// Keys returns the keys of a section in the order they were first added.
func (c *Config) Keys(section string) []string {
	return c.store.Keys(section)
}

// IsOn reports whether the property's value is exactly "on".
func (c *Config) IsOn(section, key string) bool {
	return c.store.IsOn(section, key)
}

// Number parses a property of c as a T. See ini.Number for the accepted
// syntax.
func Number[T ini.Numeric](c *Config, section, key string) (T, bool) {
	return ini.Number[T](c.store, section, key)
}

// Snapshot returns a copy of every property keyed by section name.
func (c *Config) Snapshot() map[string]map[string]string {
	return c.store.Map()
}

// MarshalText serializes the in-memory configuration in file format.
func (c *Config) MarshalText() ([]byte, error) {
	return c.store.MarshalText()
}

// Save writes the in-memory configuration to the file it was opened from.
func (c *Config) Save(ctx context.Context) error {
	return c.save(ctx, c.path)
}

// SaveAs writes the in-memory configuration to the given path, expanding a
// leading "~". The file is created if it does not exist and replaced
// otherwise. c keeps reading from its original path.
func (c *Config) SaveAs(ctx context.Context, path string) error {
	return c.save(ctx, fsutil.ExpandTilde(path))
}

func (c *Config) save(ctx context.Context, path string) error {
	if err := c.writeFile(path); err != nil {
		log.Errorf(ctx, "Unable to save config: %v", err)
		return err
	}
	log.Infof(ctx, "Saved config to %s", path)
	return nil
}

func (c *Config) writeFile(path string) (err error) {
	if err := fsutil.CreateIfMissing(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("save config: %w", closeErr)
		}
	}()
	if _, err := c.store.WriteTo(f); err != nil {
		return fmt.Errorf("save config: %s: %w", path, err)
	}
	return nil
}

// Backup copies the configuration file as it is on disk, not the in-memory
// configuration, to dst. An existing file at dst is replaced.
func (c *Config) Backup(ctx context.Context, dst string) error {
	dst = fsutil.ExpandTilde(dst)
	if err := fsutil.CopyFile(dst, c.path); err != nil {
		err = fmt.Errorf("backup config: %w", err)
		log.Errorf(ctx, "%v", err)
		return err
	}
	log.Infof(ctx, "Backed up config to %s", dst)
	return nil
}
