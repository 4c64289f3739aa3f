// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

// A Store is an ordered collection of sections, each holding unique keys.
// The zero value is an empty store. Methods that only read, along with Delete
// and Clear, are safe to call on a nil *Store.
//
// A Store is not safe for concurrent use by multiple goroutines.
type Store struct {
	sections []section
}

type section struct {
	name       string
	properties []property
}

type property struct {
	key   string
	value string
}

func (st *Store) find(name string) *section {
	if st == nil {
		return nil
	}
	for i := range st.sections {
		if st.sections[i].name == name {
			return &st.sections[i]
		}
	}
	return nil
}

func (s *section) find(key string) int {
	for i := range s.properties {
		if s.properties[i].key == key {
			return i
		}
	}
	return -1
}

// Get returns the value associated with the given key in the given section.
// Passing an empty section name searches for properties outside any section.
// The boolean reports whether the property exists.
func (st *Store) Get(sectionName, key string) (_ string, ok bool) {
	s := st.find(sectionName)
	if s == nil {
		return "", false
	}
	i := s.find(key)
	if i == -1 {
		return "", false
	}
	return s.properties[i].value, true
}

// Set sets the property to the given value, creating the section at the end
// of the store if necessary. A new key is added after the existing keys of its
// section; an existing key keeps its position.
func (st *Store) Set(sectionName, key, value string) {
	s := st.find(sectionName)
	if s == nil {
		st.sections = append(st.sections, section{name: sectionName})
		s = &st.sections[len(st.sections)-1]
	}
	if i := s.find(key); i != -1 {
		s.properties[i].value = value
		return
	}
	s.properties = append(s.properties, property{
		key:   key,
		value: value,
	})
}

// Delete removes the property with the given key from the named section and
// reports whether it was present. A section left without properties is
// removed as well.
func (st *Store) Delete(sectionName, key string) bool {
	if st == nil {
		return false
	}
	for i := range st.sections {
		s := &st.sections[i]
		if s.name != sectionName {
			continue
		}
		j := s.find(key)
		if j == -1 {
			return false
		}
		copy(s.properties[j:], s.properties[j+1:])
		// Zero out truncated element for garbage collection.
		s.properties[len(s.properties)-1] = property{}
		s.properties = s.properties[:len(s.properties)-1]
		if len(s.properties) == 0 {
			copy(st.sections[i:], st.sections[i+1:])
			st.sections[len(st.sections)-1] = section{}
			st.sections = st.sections[:len(st.sections)-1]
		}
		return true
	}
	return false
}

// HasSection reports whether the store has at least one property in the
// named section.
func (st *Store) HasSection(name string) bool {
	return st.find(name) != nil
}

// Has reports whether the property exists.
func (st *Store) Has(sectionName, key string) bool {
	_, ok := st.Get(sectionName, key)
	return ok
}

// IsOn reports whether the property's value is exactly "on". Any other value,
// including "On" or "true", and a missing property report false.
func (st *Store) IsOn(sectionName, key string) bool {
	v, ok := st.Get(sectionName, key)
	return ok && v == "on"
}

// Sections returns the names of the sections in the store, in the order they
// were first added. This will include the empty string if there are
// properties set outside a section.
func (st *Store) Sections() []string {
	if st == nil || len(st.sections) == 0 {
		return nil
	}
	names := make([]string, 0, len(st.sections))
	for _, s := range st.sections {
		names = append(names, s.name)
	}
	return names
}

// Keys returns the keys in the named section, in the order they were first
// added. It returns nil if the section does not exist.
func (st *Store) Keys(sectionName string) []string {
	s := st.find(sectionName)
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.properties))
	for _, p := range s.properties {
		keys = append(keys, p.key)
	}
	return keys
}

// Len returns the number of sections in the store.
func (st *Store) Len() int {
	if st == nil {
		return 0
	}
	return len(st.sections)
}

// Clear removes every section from the store.
func (st *Store) Clear() {
	if st == nil {
		return
	}
	for i := range st.sections {
		// Zero out for garbage collection.
		st.sections[i] = section{}
	}
	st.sections = st.sections[:0]
}

// Range calls f for each property in store order. If f returns false, Range
// stops. f must not modify the store.
func (st *Store) Range(f func(section, key, value string) bool) {
	if st == nil {
		return
	}
	for _, s := range st.sections {
		for _, p := range s.properties {
			if !f(s.name, p.key, p.value) {
				return
			}
		}
	}
}

// Section returns a copy of the properties in the named section.
// Section("") returns the global section: the properties set outside any
// section.
func (st *Store) Section(name string) Section {
	s := st.find(name)
	if s == nil {
		return nil
	}
	result := make(Section, len(s.properties))
	for _, p := range s.properties {
		result[p.key] = p.value
	}
	return result
}

// Map returns a copy of the whole store keyed by section name.
func (st *Store) Map() map[string]map[string]string {
	m := make(map[string]map[string]string, st.Len())
	if st == nil {
		return m
	}
	for _, s := range st.sections {
		m[s.name] = st.Section(s.name)
	}
	return m
}

// A Section is a map of keys to values.
type Section map[string]string

// Get returns the value associated with the given key. If there is no value
// associated with the key, Get returns the empty string.
func (sect Section) Get(key string) string {
	return sect[key]
}
