// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package fsutil provides the small filesystem helpers that configuration
// files need: home directory expansion, creating a file on first save, and
// copying a file for backup.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces a leading "~" path element with the current user's
// home directory. Other paths, including "~user/...", are returned unchanged,
// as is the original path if the home directory cannot be determined.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// CreateIfMissing creates an empty regular file at path if nothing exists
// there. An existing file is left untouched. Parent directories are not
// created.
func CreateIfMissing(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}

// CopyFile copies the contents of src to dst, replacing dst if it exists.
// A new dst gets src's permission bits.
func CopyFile(dst, src string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	defer in.Close() // Close errors irrelevant for reading.
	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copy %s to %s: source is not a regular file", src, dst)
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return fmt.Errorf("copy %s to %s: same file", src, dst)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("copy %s to %s: %w", src, dst, closeErr)
		}
	}()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}
