// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"context"
	"fmt"
	"os"
)

// ParseFile parses the file at the given path. Nil options are treated
// identically as passing the zero value. If the file cannot be opened,
// ParseFile returns an empty store and an error that wraps the one from
// os.Open, so os.IsNotExist and errors.Is work on it.
func ParseFile(ctx context.Context, path string, opts *ParseOptions) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return new(Store), fmt.Errorf("parse config: %w", err)
	}
	defer f.Close() // Close errors irrelevant.
	st, err := Parse(ctx, f, opts)
	if err != nil {
		return st, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}
