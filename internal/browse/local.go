package browse

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider lists the local filesystem. Dotfiles are skipped.
type LocalProvider struct {
	root string
}

// NewLocalProvider creates a provider rooted at root. An empty root falls
// back to the user's home directory, then to "/".
func NewLocalProvider(root string) *LocalProvider {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = string(filepath.Separator)
		}
		root = home
	}
	return &LocalProvider{root: filepath.Clean(root)}
}

// Root returns the provider root.
func (p *LocalProvider) Root() string { return p.root }

// Parent returns the parent directory, clamped at the root.
func (p *LocalProvider) Parent(path string) string {
	if path == p.root {
		return p.root
	}
	return filepath.Dir(path)
}

// Join appends a child name using the OS separator.
func (p *LocalProvider) Join(path, name string) string {
	return filepath.Join(path, name)
}

// List returns the visible entries of a local directory, directories first.
func (p *LocalProvider) List(path string) ([]Entry, error) {
	items, err := os.ReadDir(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, ErrNotFound
		case errors.Is(err, fs.ErrPermission):
			return nil, ErrPermissionDenied
		default:
			return nil, err
		}
	}

	var dirs, files []Entry
	for _, item := range items {
		if strings.HasPrefix(item.Name(), ".") {
			continue
		}
		e := Entry{
			Name:  item.Name(),
			Path:  filepath.Join(path, item.Name()),
			IsDir: item.IsDir(),
		}
		if e.IsDir {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}
	return append(dirs, files...), nil
}
