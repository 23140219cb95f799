package browse

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/rcmdr/cli/internal/ui"
)

// Mode selects what the navigator is allowed to confirm.
type Mode int

const (
	// SelectPath confirms a single directory path (via "." / "d").
	// Selecting files is rejected; a single directory index descends.
	SelectPath Mode = iota

	// SelectEntries confirms one or more files/directories. A single
	// directory index still descends; everything else confirms.
	SelectEntries
)

// State is the navigator's terminal state.
type State int

const (
	// Browsing means navigation is still in progress.
	Browsing State = iota

	// Confirmed means the user accepted a path or a set of entries.
	Confirmed

	// Aborted means the user cancelled (empty input or EOF).
	Aborted
)

// Result is what a navigation run terminated with.
type Result struct {
	// State is Confirmed or Aborted; Run never returns Browsing.
	State State

	// Path is the confirmed path when the user accepted the current
	// directory (always set for SelectPath confirmations).
	Path string

	// Entries holds the confirmed entries for SelectEntries runs that
	// ended with an index selection.
	Entries []Entry
}

// LineReader is the blocking user-input boundary. Any synchronous
// request/response input source works: a terminal, or a scripted harness
// in tests.
type LineReader interface {
	// ReadLine displays prompt and returns one line of input.
	// io.EOF aborts navigation.
	ReadLine(prompt string) (string, error)
}

// Navigator walks a Provider's tree until the user confirms or aborts.
type Navigator struct {
	provider Provider
	input    LineReader
	out      io.Writer
	mode     Mode
	path     string
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithOutput redirects listing output (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(n *Navigator) { n.out = w }
}

// WithStart overrides the starting path (default the provider's root).
func WithStart(path string) Option {
	return func(n *Navigator) { n.path = path }
}

// NewNavigator creates a navigator over provider in the given mode.
//
// Parameters:
//   - provider: the backend listing provider
//   - input: the user-input boundary
//   - mode: SelectPath or SelectEntries
//   - opts: optional configuration
//
// Returns:
//   - *Navigator: the navigator, positioned at the provider root
func NewNavigator(provider Provider, input LineReader, mode Mode, opts ...Option) *Navigator {
	n := &Navigator{
		provider: provider,
		input:    input,
		out:      os.Stdout,
		mode:     mode,
		path:     provider.Root(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Run drives the browse loop until the user confirms or aborts.
//
// Parse and listing failures are reported and re-enter browsing; a listing
// failure restores the previous path. Only a failure to list the starting
// path is returned as an error.
func (n *Navigator) Run() (Result, error) {
	prev := n.path

	for {
		entries, err := n.provider.List(n.path)
		if err != nil {
			if n.path == prev {
				return Result{}, fmt.Errorf("listing %s: %w", n.path, err)
			}
			fmt.Fprintln(n.out, ui.ErrorStyle.Render(fmt.Sprintf("✗ Cannot list %s: %v", n.path, err)))
			n.path = prev
			continue
		}
		entries = partition(entries)

		n.printListing(entries)

		line, err := n.input.ReadLine(n.promptText())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Result{State: Aborted}, nil
			}
			return Result{}, err
		}
		if line == "" {
			return Result{State: Aborted}, nil
		}

		sel, err := ParseSelection(line, len(entries))
		if err != nil {
			fmt.Fprintln(n.out, ui.WarningStyle.Render("⚠ "+err.Error()))
			continue
		}

		switch sel.Kind {
		case SelectParent:
			if n.path == n.provider.Root() {
				fmt.Fprintln(n.out, ui.WarningStyle.Render("⚠ Already at the top level"))
				continue
			}
			prev = n.path
			n.path = n.provider.Parent(n.path)

		case SelectCurrent:
			return Result{State: Confirmed, Path: n.path}, nil

		case SelectIndices:
			chosen := pick(entries, sel.Indices)

			// A lone directory descends rather than confirming.
			if len(chosen) == 1 && chosen[0].IsDir {
				prev = n.path
				n.path = chosen[0].Path
				log.Debug("Descending", "path", n.path)
				continue
			}

			if n.mode == SelectPath {
				fmt.Fprintln(n.out, ui.WarningStyle.Render("⚠ Pick a single directory to enter, or confirm this one with '.'"))
				continue
			}
			return Result{State: Confirmed, Path: n.path, Entries: chosen}, nil
		}
	}
}

// printListing renders the current path and its numbered entries.
func (n *Navigator) printListing(entries []Entry) {
	fmt.Fprintln(n.out)
	fmt.Fprintln(n.out, ui.TitleStyle.Render("Current: ")+ui.InfoStyle.Render(n.path))

	if len(entries) == 0 {
		fmt.Fprintln(n.out, ui.DimStyle.Render("  -- empty --"))
		return
	}
	for i, e := range entries {
		num := ui.AccentStyle.Render(fmt.Sprintf("[%d]", i+1))
		if e.IsDir {
			fmt.Fprintf(n.out, "  %s 📁 %s/\n", num, ui.InfoStyle.Render(e.Name))
		} else {
			fmt.Fprintf(n.out, "  %s 📄 %s\n", num, ui.InfoStyle.Render(e.Name))
		}
	}
}

// promptText returns the instruction line shown before reading input.
func (n *Navigator) promptText() string {
	if n.mode == SelectPath {
		return "Enter a number to open a folder, '..' to go up, '.' to choose this folder (empty cancels):"
	}
	return "Select items (e.g. 2 or 1,3-5), '..' to go up, '.' for this folder (empty cancels):"
}

// partition orders directories before files, preserving provider order
// within each group.
func partition(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			out = append(out, e)
		}
	}
	for _, e := range entries {
		if !e.IsDir {
			out = append(out, e)
		}
	}
	return out
}

// pick maps resolved 1-based indices to their entries.
func pick(entries []Entry, indices []int) []Entry {
	out := make([]Entry, 0, len(indices))
	for _, i := range indices {
		out = append(out, entries[i-1])
	}
	return out
}
