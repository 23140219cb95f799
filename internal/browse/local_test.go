package browse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLocalProviderList verifies dotfile skipping and directories-first
// ordering against a real temp directory.
func TestLocalProviderList(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"beta.txt", "alpha.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"sub", ".git"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	p := NewLocalProvider(dir)
	entries, err := p.List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	// ReadDir sorts by name; dirs lead.
	want := []string{"sub", "alpha.txt", "beta.txt"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if !entries[0].IsDir {
		t.Error("sub should be a directory entry")
	}
	if entries[1].Path != filepath.Join(dir, "alpha.txt") {
		t.Errorf("Path = %q, want %q", entries[1].Path, filepath.Join(dir, "alpha.txt"))
	}
}

// TestLocalProviderListMissing maps a missing directory to ErrNotFound.
func TestLocalProviderListMissing(t *testing.T) {
	p := NewLocalProvider(t.TempDir())
	if _, err := p.List(filepath.Join(p.Root(), "nope")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("List error = %v, want ErrNotFound", err)
	}
}

// TestLocalProviderParentClamp verifies Parent never climbs above the root.
func TestLocalProviderParentClamp(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	p := NewLocalProvider(dir)

	if got := p.Parent(sub); got != dir {
		t.Errorf("Parent(%q) = %q, want %q", sub, got, dir)
	}
	if got := p.Parent(dir); got != dir {
		t.Errorf("Parent(root) = %q, want root %q", got, dir)
	}
}

// TestLocalProviderDefaultRoot verifies the home-directory fallback.
func TestLocalProviderDefaultRoot(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	p := NewLocalProvider("")
	if p.Root() != filepath.Clean(home) {
		t.Errorf("Root() = %q, want %q", p.Root(), home)
	}
}
