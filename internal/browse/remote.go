package browse

import (
	"strings"
)

// RemoteLister is the slice of the rclone client the remote provider needs.
type RemoteLister interface {
	// Lsf returns the raw child names of a remote path, directories
	// carrying a trailing slash (the `rclone lsf` contract).
	Lsf(path string) ([]string, error)
}

// RemoteProvider lists an rclone remote. Paths are in "remote:dir/sub/"
// form; the provider root is "remote:".
type RemoteProvider struct {
	remote string
	lister RemoteLister
}

// NewRemoteProvider creates a provider for the named remote.
func NewRemoteProvider(remote string, lister RemoteLister) *RemoteProvider {
	return &RemoteProvider{
		remote: strings.TrimSuffix(remote, ":"),
		lister: lister,
	}
}

// Root returns "remote:".
func (p *RemoteProvider) Root() string { return p.remote + ":" }

// Parent strips the last path element, clamped at the remote root.
func (p *RemoteProvider) Parent(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	if trimmed == p.Root() || !strings.Contains(trimmed, "/") {
		return p.Root()
	}
	return trimmed[:strings.LastIndex(trimmed, "/")+1]
}

// Join appends a child name with a "/" separator.
func (p *RemoteProvider) Join(path, name string) string {
	if strings.HasSuffix(path, ":") || strings.HasSuffix(path, "/") {
		return path + name
	}
	return path + "/" + name
}

// List returns the entries under a remote path, directories first.
func (p *RemoteProvider) List(path string) ([]Entry, error) {
	names, err := p.lister.Lsf(path)
	if err != nil {
		return nil, err
	}

	var dirs, files []Entry
	for _, name := range names {
		if name == "" {
			continue
		}
		if isDir := strings.HasSuffix(name, "/"); isDir {
			dirs = append(dirs, Entry{
				Name:  strings.TrimSuffix(name, "/"),
				Path:  p.Join(path, name),
				IsDir: true,
			})
		} else {
			files = append(files, Entry{
				Name:  name,
				Path:  p.Join(path, name),
				IsDir: false,
			})
		}
	}
	return append(dirs, files...), nil
}
