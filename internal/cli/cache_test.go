package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, "corank"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", home)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, ".cache", "corank"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestLocalCacheDirPrefersConfig(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.Config.Cache.Dir = "/tmp/corank-cache"

	dir, err := c.localCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/corank-cache" {
		t.Errorf("localCacheDir() = %q, want the configured dir", dir)
	}
}
