package browse

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

// fakeProvider serves a fixed tree keyed by path. Paths use "/" with a
// "/root" top level.
type fakeProvider struct {
	tree   map[string][]Entry
	broken map[string]error
}

func (p *fakeProvider) Root() string { return "/root" }

func (p *fakeProvider) Parent(path string) string {
	if path == "/root" {
		return "/root"
	}
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return "/root"
	}
	return path[:i]
}

func (p *fakeProvider) Join(path, name string) string {
	return path + "/" + name
}

func (p *fakeProvider) List(path string) ([]Entry, error) {
	if err, ok := p.broken[path]; ok {
		return nil, err
	}
	entries, ok := p.tree[path]
	if !ok {
		return nil, ErrNotFound
	}
	return entries, nil
}

// newFakeProvider builds a small tree:
//
//	/root
//	  docs/        (dir)
//	    a.txt
//	    b.txt
//	    notes/     (dir)
//	  img.png
//	  readme.md
func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		tree: map[string][]Entry{
			"/root": {
				{Name: "img.png", Path: "/root/img.png"},
				{Name: "docs", Path: "/root/docs", IsDir: true},
				{Name: "readme.md", Path: "/root/readme.md"},
			},
			"/root/docs": {
				{Name: "a.txt", Path: "/root/docs/a.txt"},
				{Name: "notes", Path: "/root/docs/notes", IsDir: true},
				{Name: "b.txt", Path: "/root/docs/b.txt"},
			},
			"/root/docs/notes": {},
		},
		broken: map[string]error{},
	}
}

// scriptReader replays a fixed list of input lines, then EOF.
type scriptReader struct {
	lines []string
	pos   int
}

func (r *scriptReader) ReadLine(prompt string) (string, error) {
	if r.pos >= len(r.lines) {
		return "", io.EOF
	}
	line := r.lines[r.pos]
	r.pos++
	return line, nil
}

func newNav(t *testing.T, p Provider, lines []string, mode Mode, opts ...Option) *Navigator {
	t.Helper()
	opts = append(opts, WithOutput(io.Discard))
	return NewNavigator(p, &scriptReader{lines: lines}, mode, opts...)
}

// TestNavigatorConfirmRoot confirms the starting directory immediately.
func TestNavigatorConfirmRoot(t *testing.T) {
	nav := newNav(t, newFakeProvider(), []string{"."}, SelectPath)

	res, err := nav.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != Confirmed {
		t.Fatalf("State = %v, want Confirmed", res.State)
	}
	if res.Path != "/root" {
		t.Errorf("Path = %q, want /root", res.Path)
	}
}

// TestNavigatorDescendAndParent verifies that entering a directory and
// going back up is an identity on the current path.
func TestNavigatorDescendAndParent(t *testing.T) {
	// Directories sort first, so "docs" is index 1 at the root.
	nav := newNav(t, newFakeProvider(), []string{"1", "..", "."}, SelectPath)

	res, err := nav.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != Confirmed || res.Path != "/root" {
		t.Errorf("got %+v, want confirmed /root", res)
	}
}

// TestNavigatorConfirmSubdir descends into docs and confirms it.
func TestNavigatorConfirmSubdir(t *testing.T) {
	nav := newNav(t, newFakeProvider(), []string{"1", "d"}, SelectPath)

	res, err := nav.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Path != "/root/docs" {
		t.Errorf("Path = %q, want /root/docs", res.Path)
	}
}

// TestNavigatorParentAtRootStays verifies ".." at the top level warns and
// keeps browsing instead of escaping the root.
func TestNavigatorParentAtRootStays(t *testing.T) {
	nav := newNav(t, newFakeProvider(), []string{"..", "..", "."}, SelectPath)

	res, err := nav.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != Confirmed || res.Path != "/root" {
		t.Errorf("got %+v, want confirmed /root", res)
	}
}

// TestNavigatorAbort covers both abort triggers.
func TestNavigatorAbort(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{name: "empty input", lines: []string{""}},
		{name: "end of input", lines: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := newNav(t, newFakeProvider(), tt.lines, SelectEntries)
			res, err := nav.Run()
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if res.State != Aborted {
				t.Errorf("State = %v, want Aborted", res.State)
			}
		})
	}
}

// TestNavigatorInvalidInputContinues verifies a rejected selection leaves
// the navigator browsing at the same path.
func TestNavigatorInvalidInputContinues(t *testing.T) {
	nav := newNav(t, newFakeProvider(), []string{"zz", "99", "1,..", "."}, SelectPath)

	res, err := nav.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != Confirmed || res.Path != "/root" {
		t.Errorf("got %+v, want confirmed /root after invalid inputs", res)
	}
}

// TestNavigatorSelectEntries picks two files inside docs. Directories come
// first in the listing, so notes=1, a.txt=2, b.txt=3.
func TestNavigatorSelectEntries(t *testing.T) {
	nav := newNav(t, newFakeProvider(), []string{"1", "2-3"}, SelectEntries,
		WithStart("/root"))

	res, err := nav.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != Confirmed {
		t.Fatalf("State = %v, want Confirmed", res.State)
	}
	if res.Path != "/root/docs" {
		t.Errorf("Path = %q, want /root/docs", res.Path)
	}
	got := make([]string, len(res.Entries))
	for i, e := range res.Entries {
		got[i] = e.Name
	}
	want := []string{"a.txt", "b.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Entries = %v, want %v", got, want)
	}
}

// TestNavigatorSingleDirDescendsInEntriesMode verifies a lone directory
// index navigates instead of confirming, in both modes.
func TestNavigatorSingleDirDescendsInEntriesMode(t *testing.T) {
	nav := newNav(t, newFakeProvider(), []string{"1", "1", "."}, SelectEntries)

	res, err := nav.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Path != "/root/docs/notes" {
		t.Errorf("Path = %q, want /root/docs/notes", res.Path)
	}
}

// TestNavigatorPathModeRejectsFiles verifies SelectPath never confirms a
// file selection.
func TestNavigatorPathModeRejectsFiles(t *testing.T) {
	// 2 is img.png at the root; the warning should keep us browsing.
	nav := newNav(t, newFakeProvider(), []string{"2", "2,3", "."}, SelectPath)

	res, err := nav.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != Confirmed || res.Path != "/root" {
		t.Errorf("got %+v, want confirmed /root", res)
	}
}

// TestNavigatorMixedSelectionConfirmsInEntriesMode verifies a selection
// containing a directory plus files confirms as-is.
func TestNavigatorMixedSelectionConfirmsInEntriesMode(t *testing.T) {
	nav := newNav(t, newFakeProvider(), []string{"1-2"}, SelectEntries)

	res, err := nav.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != Confirmed {
		t.Fatalf("State = %v, want Confirmed", res.State)
	}
	if len(res.Entries) != 2 || !res.Entries[0].IsDir || res.Entries[1].IsDir {
		t.Errorf("Entries = %+v, want [docs img.png]", res.Entries)
	}
}

// TestNavigatorListErrorReverts verifies a listing failure after a descent
// restores the previous path instead of ending the run.
func TestNavigatorListErrorReverts(t *testing.T) {
	p := newFakeProvider()
	p.broken["/root/docs"] = ErrPermissionDenied

	nav := newNav(t, p, []string{"1", "."}, SelectPath)

	res, err := nav.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != Confirmed || res.Path != "/root" {
		t.Errorf("got %+v, want confirmed /root after revert", res)
	}
}

// TestNavigatorStartListErrorFails verifies a broken starting path is a
// hard error.
func TestNavigatorStartListErrorFails(t *testing.T) {
	p := newFakeProvider()
	p.broken["/root"] = ErrBackendUnavailable

	nav := newNav(t, p, []string{"."}, SelectPath)

	if _, err := nav.Run(); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("Run error = %v, want ErrBackendUnavailable", err)
	}
}

// TestNavigatorWithStart starts navigation below the provider root.
func TestNavigatorWithStart(t *testing.T) {
	nav := newNav(t, newFakeProvider(), []string{"."}, SelectPath,
		WithStart("/root/docs"))

	res, err := nav.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Path != "/root/docs" {
		t.Errorf("Path = %q, want /root/docs", res.Path)
	}
}
