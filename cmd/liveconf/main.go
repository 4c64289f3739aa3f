// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// liveconf reads and edits configuration files in the format of package
// github.com/yourbase/liveconf/ini.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	a := &app{
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	err := newRootCmd(a).ExecuteContext(context.Background())
	var code exitCode
	switch {
	case err == nil:
	case errors.As(err, &code):
		os.Exit(int(code))
	default:
		fmt.Fprintln(os.Stderr, "liveconf:", err)
		os.Exit(1)
	}
}

// exitCode is returned by commands that report their result through the
// exit status alone.
type exitCode int

func (c exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(c))
}
