// Package browse implements the interactive navigation-and-selection engine.
//
// A Provider lists the children of a path on some storage backend (the local
// filesystem or an rclone remote). The Navigator walks that listing with a
// compact range/list selection syntax until the user confirms a path or a
// set of entries, or aborts.
package browse

import "errors"

// Listing errors surfaced by providers. The navigator reports them and
// keeps browsing at the prior path; they are never fatal.
var (
	// ErrNotFound indicates the listed path does not exist.
	ErrNotFound = errors.New("path not found")

	// ErrPermissionDenied indicates the backend refused to list the path.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrBackendUnavailable indicates the backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Entry is one listed item. Entries are produced fresh on every listing
// call and do not outlive it.
type Entry struct {
	// Name is the display name, without any path prefix.
	Name string

	// Path is the fully qualified, backend-relative path of the entry.
	Path string

	// IsDir reports whether the entry is a directory.
	IsDir bool
}

// Provider abstracts "list the children of a path" over a storage backend.
type Provider interface {
	// List returns the entries directly under path, directories first.
	List(path string) ([]Entry, error)

	// Root returns the provider's root path (navigation never goes above it).
	Root() string

	// Parent returns the parent of path, clamped at Root.
	Parent(path string) string

	// Join appends a child name to a path using the backend's separator.
	Join(path, name string) string
}
