// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package liveconf

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/yourbase/liveconf/handler"
	"github.com/yourbase/liveconf/ini"
	"zombiezen.com/go/log/testlog"
)

const sampleConfig = `# Game settings
[graphics]
fullscreen = on
resolution = 1920x1080
fov = 90

[audio]
volume = 0.8   ; percent / 100
muted =
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.ini")
	if err := os.WriteFile(path, []byte(content), 0o666); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpen(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := writeConfig(t, sampleConfig)
	var applied []string
	c := Open(ctx, path, &Options{
		Handlers: handler.Map{
			{Section: "graphics", Key: "fullscreen"}: func(ctx context.Context, value string) error {
				applied = append(applied, "fullscreen="+value)
				return nil
			},
			{Section: "audio", Key: "volume"}: func(ctx context.Context, value string) error {
				applied = append(applied, "volume="+value)
				return nil
			},
		},
	})

	want := map[string]map[string]string{
		"graphics": {
			"fullscreen": "on",
			"resolution": "1920x1080",
			"fov":        "90",
		},
		"audio": {
			"volume": "0.8",
			"muted":  "",
		},
	}
	if diff := cmp.Diff(want, c.Snapshot()); diff != "" {
		t.Errorf("Snapshot() (-want +got):\n%s", diff)
	}
	if err := c.LoadErr(); err != nil {
		t.Errorf("LoadErr() = %v; want <nil>", err)
	}
	if diff := cmp.Diff([]string{"graphics", "audio"}, c.Sections()); diff != "" {
		t.Errorf("Sections() (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"volume", "muted"}, c.Keys("audio")); diff != "" {
		t.Errorf("Keys(\"audio\") (-want +got):\n%s", diff)
	}
	if !c.Has("audio", "muted") || c.Has("audio", "bass") {
		t.Error("Has reports wrong presence for [audio] keys")
	}
	if !c.HasSection("graphics") || c.HasSection("network") {
		t.Error("HasSection reports wrong presence")
	}
	if diff := cmp.Diff([]string{"fullscreen=on", "volume=0.8"}, applied); diff != "" {
		t.Errorf("applied handlers (-want +got):\n%s", diff)
	}
	if got := c.Path(); got != path {
		t.Errorf("Path() = %q; want %q", got, path)
	}
	if !c.IsOn("graphics", "fullscreen") {
		t.Error("IsOn(\"graphics\", \"fullscreen\") = false; want true")
	}
	if fov, ok := Number[int](c, "graphics", "fov"); !ok || fov != 90 {
		t.Errorf("Number[int](c, \"graphics\", \"fov\") = %d, %t; want 90, true", fov, ok)
	}
	if vol, ok := Number[float64](c, "audio", "volume"); !ok || vol != 0.8 {
		t.Errorf("Number[float64](c, \"audio\", \"volume\") = %v, %t; want 0.8, true", vol, ok)
	}
	if _, ok := Number[int](c, "graphics", "resolution"); ok {
		t.Error("Number[int](c, \"graphics\", \"resolution\") succeeded; want false")
	}
}

func TestOpenSkipApply(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := writeConfig(t, sampleConfig)
	called := false
	c := Open(ctx, path, &Options{
		SkipApply: true,
		Handlers: handler.Map{
			{Section: "graphics", Key: "fullscreen"}: func(ctx context.Context, value string) error {
				called = true
				return nil
			},
		},
	})
	if called {
		t.Error("handler ran during Open with SkipApply")
	}
	c.ApplyAll(ctx)
	if !called {
		t.Error("handler did not run during ApplyAll")
	}
}

func TestOpenMissingFile(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := filepath.Join(t.TempDir(), "missing.ini")
	c := Open(ctx, path, nil)
	if got := c.Sections(); len(got) != 0 {
		t.Errorf("Sections() = %q; want empty", got)
	}
	if err := c.LoadErr(); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadErr() = %v; want %v", err, fs.ErrNotExist)
	}

	// The configuration is still usable and can create the file.
	c.Set(ctx, "new", "key", "value")
	if err := c.Save(ctx); err != nil {
		t.Fatal("Save:", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("[new]\nkey = value\n\n", string(got)); diff != "" {
		t.Errorf("saved file (-want +got):\n%s", diff)
	}
	c.Reload(ctx)
	if err := c.LoadErr(); err != nil {
		t.Errorf("after Reload, LoadErr() = %v; want <nil>", err)
	}
}

func TestOpenReadError(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	// Opening a directory succeeds, but reading from it fails.
	c := Open(ctx, t.TempDir(), nil)
	err := c.LoadErr()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadErr() = %v; want read error", err)
	}
	if got := c.Sections(); len(got) != 0 {
		t.Errorf("Sections() = %q; want empty", got)
	}
}

func TestSaveKeepsLongLines(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	long := strings.Repeat("x", 70000)
	path := writeConfig(t, "[a]\nbig = "+long+"\n[b]\nk = v\n")
	c := Open(ctx, path, &Options{SkipApply: true})
	if err := c.LoadErr(); err != nil {
		t.Fatal("LoadErr:", err)
	}
	c.Set(ctx, "a", "new", "1")
	if err := c.Save(ctx); err != nil {
		t.Fatal("Save:", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "[a]\nbig = " + long + "\nnew = 1\n\n[b]\nk = v\n\n"
	if string(got) != want {
		t.Errorf("saved file is %d bytes; want %d bytes with every property kept", len(got), len(want))
	}
}

func TestOpenMalformedLine(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := writeConfig(t, "[sec]\nk=v\nthis is not a property\n")
	c := Open(ctx, path, &Options{SkipApply: true})
	want := map[string]map[string]string{
		"sec": {"k": "v"},
	}
	if diff := cmp.Diff(want, c.Snapshot()); diff != "" {
		t.Errorf("Snapshot() (-want +got):\n%s", diff)
	}
}

func TestOpenParseOptions(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := writeConfig(t, "[Graphics]\nFOV = 90\n")
	c := Open(ctx, path, &Options{
		SkipApply: true,
		Parse: &ini.ParseOptions{
			NormalizeSection: func(name string) string { return "graphics" },
		},
	})
	if got, ok := c.Get("graphics", "FOV"); !ok || got != "90" {
		t.Errorf("Get(\"graphics\", \"FOV\") = %q, %t; want \"90\", true", got, ok)
	}
}

func TestOpenExpandsTilde(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, "app.ini"), []byte("[s]\nk = v\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	c := Open(ctx, "~/app.ini", nil)
	if got, want := c.Path(), filepath.Join(home, "app.ini"); got != want {
		t.Errorf("Path() = %q; want %q", got, want)
	}
	if got, _ := c.Get("s", "k"); got != "v" {
		t.Errorf("Get(\"s\", \"k\") = %q; want \"v\"", got)
	}
}

func TestReload(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := writeConfig(t, "[s]\nk = 1\n")
	c := Open(ctx, path, nil)

	// In-memory changes are discarded.
	c.Set(ctx, "s", "k", "changed")
	c.Set(ctx, "s", "extra", "x")

	// Handlers registered after Open run on Reload.
	var applied []string
	c.Register("s", "k", func(ctx context.Context, value string) error {
		applied = append(applied, value)
		return nil
	})
	c.Reload(ctx)
	first := c.Snapshot()
	c.Reload(ctx)
	second := c.Snapshot()

	want := map[string]map[string]string{"s": {"k": "1"}}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("after Reload (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second Reload changed the configuration (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "1"}, applied); diff != "" {
		t.Errorf("applied values (-want +got):\n%s", diff)
	}

	t.Run("FileChanged", func(t *testing.T) {
		if err := os.WriteFile(path, []byte("[s]\nk = 2\n"), 0o666); err != nil {
			t.Fatal(err)
		}
		c.Reload(ctx)
		if got, _ := c.Get("s", "k"); got != "2" {
			t.Errorf("Get(\"s\", \"k\") = %q; want \"2\"", got)
		}
	})
}

func TestSetAndApply(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	c := Open(ctx, filepath.Join(t.TempDir(), "none.ini"), nil)
	var applied []string
	c.Register("ui", "theme", func(ctx context.Context, value string) error {
		applied = append(applied, value)
		return nil
	})

	c.Set(ctx, "ui", "theme", "light")
	if len(applied) != 0 {
		t.Errorf("Set ran handler: %q", applied)
	}
	c.SetAndApply(ctx, "ui", "theme", "dark")
	if diff := cmp.Diff([]string{"dark"}, applied); diff != "" {
		t.Errorf("applied values (-want +got):\n%s", diff)
	}
	if got, _ := c.Get("ui", "theme"); got != "dark" {
		t.Errorf("Get(\"ui\", \"theme\") = %q; want \"dark\"", got)
	}

	// A property without a handler is still set.
	c.SetAndApply(ctx, "ui", "font", "mono")
	if !c.Has("ui", "font") {
		t.Error("Has(\"ui\", \"font\") = false after SetAndApply")
	}
}

func TestApplyFailingHandler(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := writeConfig(t, "[a]\nfirst = 1\n[b]\nsecond = 2\n")
	var applied []string
	c := Open(ctx, path, &Options{
		Handlers: handler.Map{
			{Section: "a", Key: "first"}: func(ctx context.Context, value string) error {
				panic("bork")
			},
			{Section: "b", Key: "second"}: func(ctx context.Context, value string) error {
				applied = append(applied, value)
				return nil
			},
		},
	})
	if diff := cmp.Diff([]string{"2"}, applied); diff != "" {
		t.Errorf("applied values (-want +got):\n%s", diff)
	}

	// Apply and SetAndApply swallow the failure too.
	c.Apply(ctx, "a", "first")
	c.SetAndApply(ctx, "a", "first", "3")
	c.Unregister("a", "first")
	c.Apply(ctx, "a", "first")
}

func TestDelete(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := writeConfig(t, "[solo]\nonly = 1\n[pair]\na = 1\nb = 2\n")
	c := Open(ctx, path, &Options{SkipApply: true})

	if c.Delete(ctx, "pair", "missing") {
		t.Error("Delete(\"pair\", \"missing\") = true; want false")
	}
	if c.Delete(ctx, "missing", "a") {
		t.Error("Delete(\"missing\", \"a\") = true; want false")
	}
	if !c.Delete(ctx, "solo", "only") {
		t.Error("Delete(\"solo\", \"only\") = false; want true")
	}
	if c.HasSection("solo") {
		t.Error("HasSection(\"solo\") = true after deleting its only key")
	}
	if diff := cmp.Diff([]string{"pair"}, c.Sections()); diff != "" {
		t.Errorf("Sections() (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, c.Keys("pair")); diff != "" {
		t.Errorf("Keys(\"pair\") (-want +got):\n%s", diff)
	}
}

func TestSave(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := writeConfig(t, sampleConfig)
	c := Open(ctx, path, &Options{SkipApply: true})
	c.Set(ctx, "graphics", "fov", "100")
	c.Delete(ctx, "graphics", "resolution")
	if err := c.Save(ctx); err != nil {
		t.Fatal("Save:", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "[graphics]\n" +
		"fullscreen = on\n" +
		"fov = 100\n" +
		"\n" +
		"[audio]\n" +
		"volume = 0.8\n" +
		"muted =\n" +
		"\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("saved file (-want +got):\n%s", diff)
	}

	// Reading the saved file gives back the same configuration.
	reopened := Open(ctx, path, &Options{SkipApply: true})
	if diff := cmp.Diff(c.Snapshot(), reopened.Snapshot()); diff != "" {
		t.Errorf("reopened (-saved +reopened):\n%s", diff)
	}
}

func TestSaveAs(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := writeConfig(t, "[s]\nk = v\n")
	c := Open(ctx, path, &Options{SkipApply: true})
	c.Set(ctx, "s", "k", "new")

	other := filepath.Join(t.TempDir(), "other.ini")
	if err := c.SaveAs(ctx, other); err != nil {
		t.Fatal("SaveAs:", err)
	}
	got, err := os.ReadFile(other)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("[s]\nk = new\n\n", string(got)); diff != "" {
		t.Errorf("saved file (-want +got):\n%s", diff)
	}
	orig, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(orig) != "[s]\nk = v\n" {
		t.Errorf("original file = %q; want unchanged", orig)
	}
	if c.Path() != path {
		t.Errorf("Path() = %q after SaveAs; want %q", c.Path(), path)
	}
}

func TestSaveError(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	c := Open(ctx, filepath.Join(t.TempDir(), "x.ini"), nil)
	c.Set(ctx, "s", "k", "v")
	err := c.SaveAs(ctx, filepath.Join(t.TempDir(), "no", "such", "dir.ini"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("SaveAs(...) = %v; want not exist", err)
	}
}

func TestBackup(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := writeConfig(t, "[s]\nk = on disk\n")
	c := Open(ctx, path, &Options{SkipApply: true})
	c.Set(ctx, "s", "k", "in memory")

	dst := filepath.Join(t.TempDir(), "settings.ini.bak")
	if err := os.WriteFile(dst, []byte("stale"), 0o666); err != nil {
		t.Fatal(err)
	}
	if err := c.Backup(ctx, dst); err != nil {
		t.Fatal("Backup:", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("[s]\nk = on disk\n", string(got)); diff != "" {
		t.Errorf("backup (-want +got):\n%s", diff)
	}
}

func TestBackupMissingSource(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	dir := t.TempDir()
	c := Open(ctx, filepath.Join(dir, "missing.ini"), nil)
	err := c.Backup(ctx, filepath.Join(dir, "backup.ini"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Backup(...) = %v; want not exist", err)
	}
}

func TestEmptySectionRoundTrip(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	path := writeConfig(t, "top = 1\n[s]\nk = v\n")
	c := Open(ctx, path, &Options{SkipApply: true})
	if err := c.Save(ctx); err != nil {
		t.Fatal("Save:", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("[]\ntop = 1\n\n[s]\nk = v\n\n", string(got)); diff != "" {
		t.Errorf("saved file (-want +got):\n%s", diff)
	}
	c.Reload(ctx)
	if diff := cmp.Diff([]string{"", "s"}, c.Sections(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Sections() after reload (-want +got):\n%s", diff)
	}
}

func TestMain(m *testing.M) {
	testlog.Main(nil)
	os.Exit(m.Run())
}
