package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(custom, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := newCache(false)
	if err != nil {
		t.Fatalf("newCache(false) error: %v", err)
	}
	if _, ok := c.(interface{ Dir() string }); !ok {
		t.Errorf("newCache(false) = %T, want a file cache", c)
	}

	c, err = newCache(true)
	if err != nil {
		t.Fatalf("newCache(true) error: %v", err)
	}
	if _, ok := c.(interface{ Dir() string }); ok {
		t.Error("newCache(true) should disable caching")
	}
}
