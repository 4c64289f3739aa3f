// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package envvar reads the environment variables that configure the
// liveconf command.
package envvar

import (
	"os"
	"strconv"

	"github.com/yourbase/liveconf/fsutil"
)

// Names of the variables read by the liveconf command.
const (
	// File is the configuration file used when no --file flag is given.
	File = "LIVECONF_FILE"
	// NoColor disables colored output when set to a true value.
	NoColor = "LIVECONF_NO_COLOR"
)

// DefaultFile is the configuration file used when neither the flag nor File
// is set.
const DefaultFile = "~/.liveconf.ini"

// Get returns the value of the given environment variable. If it is empty or
// unset, it returns the default value.
func Get(key string, defaultValue string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	return v
}

// Path returns the value of the given environment variable or the default
// value, with a leading "~" expanded to the user's home directory.
func Path(key string, defaultValue string) string {
	return fsutil.ExpandTilde(Get(key, defaultValue))
}

// Bool returns the value of a boolean environment variable. If it is unset or
// not one of the strings 1, t, T, TRUE, true, or True, then it returns false.
func Bool(key string) bool {
	v := os.Getenv(key)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
