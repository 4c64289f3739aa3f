// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"zombiezen.com/go/log"
)

// ParseOptions holds optional parameters for Parse.
type ParseOptions struct {
	// NormalizeSection is called on each section name to apply text transformations.
	// This can be used to make sections case-insensitive, for instance.
	// If nil, no transformations are made.
	NormalizeSection func(name string) string

	// NormalizeKey is called on each key to apply text transformations.
	// This can be used to make keys case-insensitive, for instance.
	// If nil, no transformations are made.
	NormalizeKey func(section, key string) string
}

// Parse reads a configuration file into a new Store. Nil options are treated
// identically as passing the zero value.
//
// Malformed lines are logged to ctx and skipped. The only error Parse returns
// comes from reading r, in which case the properties read up to that point are
// returned along with the error.
//
// See the Syntax section in the package documentation for the format recognized
// by Parse.
func Parse(ctx context.Context, r io.Reader, opts *ParseOptions) (*Store, error) {
	st := new(Store)
	err := st.parse(ctx, r, opts)
	return st, err
}

func (st *Store) parse(ctx context.Context, r io.Reader, opts *ParseOptions) error {
	s := bufio.NewScanner(r)
	// Lines have no length limit.
	s.Buffer(make([]byte, 0, 64*1024), math.MaxInt)
	currSection := ""
	lineno := 1
	for ; s.Scan(); lineno++ {
		raw := StripComment(s.Text())
		line := trim(raw)
		if line == "" {
			continue
		}
		if len(line) >= 2 && line[0] == '[' && line[len(line)-1] == ']' {
			currSection = trim(line[1 : len(line)-1])
			if opts != nil && opts.NormalizeSection != nil {
				currSection = opts.NormalizeSection(currSection)
			}
			continue
		}
		// Search the untrimmed text so that trailing spaces still count
		// toward the value.
		i := strings.IndexByte(raw, '=')
		if i == -1 {
			log.Warnf(ctx, "config line %d: could not find '=' in %q; skipping", lineno, line)
			continue
		}
		key := trim(raw[:i])
		if opts != nil && opts.NormalizeKey != nil {
			key = opts.NormalizeKey(currSection, key)
		}
		st.Set(currSection, key, cleanValue(raw[i+1:]))
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("parse config: line %d: %w", lineno, err)
	}
	return nil
}

// CleanLine removes the comment from a line along with any leading or trailing
// spaces and tabs. A line with nothing but a comment becomes the empty string.
func CleanLine(line string) string {
	return trim(StripComment(line))
}

// StripComment returns the line up to the first ';' or '#'.
func StripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i != -1 {
		return line[:i]
	}
	return line
}

// cleanValue trims a raw property value. A non-empty value made only of
// spaces collapses to a single space instead of the empty string.
func cleanValue(v string) string {
	if v != "" && strings.Trim(v, " ") == "" {
		return " "
	}
	return trim(v)
}

func trim(s string) string {
	return strings.Trim(s, " \t")
}

// MarshalText serializes the store. Each section is written as a "[name]"
// header followed by one "key = value" line per property and a blank line.
// The global section is written as "[]".
//
// Parsing the result gives back the same properties as long as no key or
// value contains a newline, a comment character, or surrounding spaces or
// tabs (the single-space value is the exception and round-trips).
func (st *Store) MarshalText() ([]byte, error) {
	if st == nil {
		return nil, nil
	}
	var buf []byte
	for _, s := range st.sections {
		buf = append(buf, '[')
		buf = append(buf, s.name...)
		buf = append(buf, "]\n"...)
		for _, prop := range s.properties {
			buf = append(buf, prop.key...)
			if prop.value == "" {
				// "key = " would read back as the single-space value.
				buf = append(buf, " =\n"...)
				continue
			}
			buf = append(buf, " = "...)
			buf = append(buf, prop.value...)
			buf = append(buf, '\n')
		}
		buf = append(buf, '\n')
	}
	return buf, nil
}

// WriteTo writes the serialized store to w.
func (st *Store) WriteTo(w io.Writer) (int64, error) {
	text, err := st.MarshalText()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(text)
	return int64(n), err
}

// UnmarshalText parses the data with default options, replacing any
// properties or sections in st. Malformed lines go to the process-wide logger;
// use Parse to pick the destination.
func (st *Store) UnmarshalText(data []byte) error {
	st.Clear()
	return st.parse(context.Background(), bytes.NewReader(data), nil)
}
