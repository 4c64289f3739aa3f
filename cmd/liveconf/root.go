// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/yourbase/liveconf/envvar"
	"github.com/yourbase/liveconf/liveconf"
	"golang.org/x/term"
)

// app holds state shared across commands.
type app struct {
	file   string
	json   bool
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "liveconf",
		Short: "Read and edit sectioned key = value configuration files",
		Long: `liveconf reads and edits configuration files made of [section] headers
and key = value lines. Comments start with '#' or ';'.

The file is taken from --file, then $` + envvar.File + `, then ` + envvar.DefaultFile + `.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	rootCmd.PersistentFlags().StringVarP(&a.file, "file", "f", "", "configuration file (default $"+envvar.File+" or "+envvar.DefaultFile+")")
	rootCmd.PersistentFlags().BoolVar(&a.json, "json", false, "output in JSON format")

	rootCmd.AddCommand(newGetCmd(a))
	rootCmd.AddCommand(newSetCmd(a))
	rootCmd.AddCommand(newUnsetCmd(a))
	rootCmd.AddCommand(newSectionsCmd(a))
	rootCmd.AddCommand(newKeysCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newIsOnCmd(a))
	rootCmd.AddCommand(newBackupCmd(a))
	rootCmd.AddCommand(newFmtCmd(a))
	return rootCmd
}

// open reads the selected configuration file. The command has no handlers,
// so none are applied.
func (a *app) open(ctx context.Context) *liveconf.Config {
	path := a.file
	if path == "" {
		path = envvar.Path(envvar.File, envvar.DefaultFile)
	}
	return liveconf.Open(ctx, path, &liveconf.Options{SkipApply: true})
}

// openForWrite is like open, but fails if the file exists and could not be
// read completely, since saving would overwrite what was not read.
func (a *app) openForWrite(ctx context.Context) (*liveconf.Config, error) {
	c := a.open(ctx)
	if err := c.LoadErr(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("refusing to write %s: %w", c.Path(), err)
	}
	return c, nil
}

// successColor returns s wrapped in green ANSI codes if output is a terminal
// and colors are not disabled.
func (a *app) successColor(s string) string {
	return a.color("\033[32m", s)
}

// warnColor returns s wrapped in orange ANSI codes if output is a terminal
// and colors are not disabled.
func (a *app) warnColor(s string) string {
	return a.color("\033[38;5;214m", s)
}

func (a *app) color(code, s string) string {
	if envvar.Bool(envvar.NoColor) {
		return s
	}
	if f, ok := a.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return code + s + "\033[0m"
	}
	return s
}
