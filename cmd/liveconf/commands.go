// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yourbase/liveconf/handler"
	"gopkg.in/yaml.v3"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <section> <key>",
		Short: "Print a value",
		Long: `Print the value of a key.

Prints the bare value if the key is set, or "[section].key (not set)" if it
is missing. Use "" as the section for keys outside any section.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.open(cmd.Context())
			section, key := args[0], args[1]
			value, ok := c.Get(section, key)
			if a.json {
				return json.NewEncoder(a.out).Encode(map[string]interface{}{
					"section": section,
					"key":     key,
					"value":   value,
					"set":     ok,
				})
			}
			if !ok {
				fmt.Fprintf(a.out, "%v (not set)\n", handler.Key{Section: section, Key: key})
				return nil
			}
			fmt.Fprintln(a.out, value)
			return nil
		},
	}
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <section> <key> <value>",
		Short: "Set a value and save the file",
		Long: `Set a key to a value and save the file, creating it if needed.

Examples:
  liveconf set graphics fullscreen on
  liveconf set "" global 1`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.openForWrite(ctx)
			if err != nil {
				return err
			}
			section, key, value := args[0], args[1], args[2]
			c.Set(ctx, section, key, value)
			if err := c.Save(ctx); err != nil {
				return err
			}
			if a.json {
				return json.NewEncoder(a.out).Encode(map[string]interface{}{
					"section": section,
					"key":     key,
					"value":   value,
				})
			}
			fmt.Fprintf(a.out, "%s %v = %s\n", a.successColor("Set"), handler.Key{Section: section, Key: key}, value)
			return nil
		},
	}
}

func newUnsetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <section> <key>",
		Short: "Remove a key and save the file",
		Long: `Remove a key and save the file. A section left without keys is removed
as well. Unsetting a missing key is not an error.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.openForWrite(ctx)
			if err != nil {
				return err
			}
			k := handler.Key{Section: args[0], Key: args[1]}
			removed := c.Delete(ctx, k.Section, k.Key)
			if removed {
				if err := c.Save(ctx); err != nil {
					return err
				}
			}
			if a.json {
				return json.NewEncoder(a.out).Encode(map[string]interface{}{
					"section": k.Section,
					"key":     k.Key,
					"removed": removed,
				})
			}
			if removed {
				fmt.Fprintf(a.out, "%s %v\n", a.successColor("Removed"), k)
			} else {
				fmt.Fprintf(a.out, "%s %v (not set)\n", a.warnColor("Unchanged"), k)
			}
			return nil
		},
	}
}

func newSectionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printList(a.open(cmd.Context()).Sections())
		},
	}
}

func newKeysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys <section>",
		Short: "List the keys of a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printList(a.open(cmd.Context()).Keys(args[0]))
		},
	}
}

func (a *app) printList(items []string) error {
	if a.json {
		if items == nil {
			items = []string{}
		}
		return json.NewEncoder(a.out).Encode(items)
	}
	for _, item := range items {
		fmt.Fprintln(a.out, item)
	}
	return nil
}

func newShowCmd(a *app) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the whole configuration",
		Long: `Print the whole configuration as it would be saved.

With --json or --yaml, print it as a mapping of sections to mappings of keys
to values instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.open(cmd.Context())
			switch {
			case a.json:
				return json.NewEncoder(a.out).Encode(c.Snapshot())
			case asYAML:
				enc := yaml.NewEncoder(a.out)
				enc.SetIndent(2)
				if err := enc.Encode(c.Snapshot()); err != nil {
					return fmt.Errorf("show: %w", err)
				}
				return enc.Close()
			default:
				text, err := c.MarshalText()
				if err != nil {
					return err
				}
				_, err = a.out.Write(text)
				return err
			}
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "output in YAML format")
	return cmd
}

func newIsOnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "is-on <section> <key>",
		Short: `Check whether a key is exactly "on"`,
		Long: `Print "on" and exit 0 if the key's value is exactly "on". Otherwise print
"off" and exit 1. Values such as "On" or "true" count as off.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			on := a.open(cmd.Context()).IsOn(args[0], args[1])
			if a.json {
				if err := json.NewEncoder(a.out).Encode(on); err != nil {
					return err
				}
			} else if on {
				fmt.Fprintln(a.out, "on")
			} else {
				fmt.Fprintln(a.out, "off")
			}
			if !on {
				return exitCode(1)
			}
			return nil
		},
	}
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <dest>",
		Short: "Copy the configuration file",
		Long:  `Copy the configuration file as it is on disk to dest, replacing dest if it exists.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.open(ctx).Backup(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", a.successColor("Backed up to"), args[0])
			return nil
		},
	}
}

func newFmtCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fmt",
		Short: "Rewrite the configuration file in canonical form",
		Long: `Rewrite the configuration file in canonical form: one header per section,
"key = value" lines, and a blank line after each section. Comments and
malformed lines are dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.openForWrite(ctx)
			if err != nil {
				return err
			}
			if err := c.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", a.successColor("Formatted"), c.Path())
			return nil
		},
	}
}
