package workdir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveDataDir_HonorsEnvOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom-bones-home")
	t.Setenv(EnvDataDir, dir)

	got, err := ResolveDataDir()
	if err != nil {
		t.Fatalf("ResolveDataDir: %v", err)
	}
	if got != filepath.Clean(dir) {
		t.Fatalf("expected %q, got %q", dir, got)
	}
}

func TestResolveDataDir_DefaultsUnderHome(t *testing.T) {
	t.Setenv(EnvDataDir, "")

	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ResolveDataDir()
	if err != nil {
		t.Fatalf("ResolveDataDir: %v", err)
	}
	want := filepath.Join(home, defaultDirName)
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolveDataDir_CleansTrailingSlash(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir+string(os.PathSeparator))

	got, err := ResolveDataDir()
	if err != nil {
		t.Fatalf("ResolveDataDir: %v", err)
	}
	if got != filepath.Clean(dir) {
		t.Fatalf("expected %q, got %q", filepath.Clean(dir), got)
	}
}
