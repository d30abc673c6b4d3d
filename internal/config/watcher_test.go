// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string) <-chan *Config {
	t.Helper()
	t.Setenv("STREAMCHAT_MODEL", "") // reloads must reflect the file only
	reloads := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloads <- cfg })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)
	return reloads
}

func awaitReload(t *testing.T, reloads <-chan *Config) *Config {
	t.Helper()
	select {
	case cfg := <-reloads:
		return cfg
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
		return nil
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`model = "first"`), 0o644))

	reloads := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte(`model = "second"`), 0o644))
	require.Equal(t, "second", awaitReload(t, reloads).Model)
}

func TestWatcherSurvivesEditorReplace(t *testing.T) {
	// Editors save by writing a temp file and renaming it over the
	// config, replacing the inode. The directory watch must still see
	// the change.
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`model = "first"`), 0o644))

	reloads := startWatcher(t, path)

	tmp := filepath.Join(dir, "config.toml.swap")
	require.NoError(t, os.WriteFile(tmp, []byte(`model = "replaced"`), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	require.Equal(t, "replaced", awaitReload(t, reloads).Model)
}

func TestWatcherKeepsLastGoodOnParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`model = "good"`), 0o644))

	reloads := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte(`model = [broken`), 0o644))

	// Past the debounce window, the malformed file must not have
	// produced a reload.
	select {
	case cfg := <-reloads:
		t.Fatalf("reload fired on malformed config: %+v", cfg)
	case <-time.After(800 * time.Millisecond):
	}

	// A good write afterwards still gets through.
	require.NoError(t, os.WriteFile(path, []byte(`model = "recovered"`), 0o644))
	require.Equal(t, "recovered", awaitReload(t, reloads).Model)
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`model = "first"`), 0o644))

	reloads := startWatcher(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case cfg := <-reloads:
		t.Fatalf("reload fired on an unrelated file: %+v", cfg)
	case <-time.After(800 * time.Millisecond):
	}
}
