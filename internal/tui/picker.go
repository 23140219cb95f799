// Package tui provides the Bubble Tea pickers for the rcmdr CLI.
//
// Pickers only activate for a human at an interactive terminal; the TTY
// gate keeps agents, CI and piped output on the plain numbered prompts.
package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ErrAborted indicates the user backed out of a picker.
var ErrAborted = errors.New("selection aborted")

// ShouldRun returns true if the interactive pickers should be used.
// Returns false when stdout is not a terminal or --quiet is set.
func ShouldRun(quiet bool) bool {
	if quiet {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// --- Shared styles ---

var (
	teal    = lipgloss.Color("#14B8A6")
	dimGray = lipgloss.Color("#9CA3AF")
	white   = lipgloss.Color("#E5E7EB")
	red     = lipgloss.Color("#EF4444")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(teal)
	selectedStyle = lipgloss.NewStyle().Foreground(teal).Bold(true)
	normalStyle   = lipgloss.NewStyle().Foreground(white)
	dimStyle      = lipgloss.NewStyle().Foreground(dimGray)
	errStyle      = lipgloss.NewStyle().Foreground(red).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(dimGray)
)

// newSpinner creates a consistently styled braille spinner.
func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(teal)
	return s
}

// Item is one pickable entry.
type Item struct {
	// Name is the primary label (remote name, protocol).
	Name string

	// Detail is an optional dimmed annotation (backend type).
	Detail string
}

// loadedMsg carries the asynchronously fetched item list.
type loadedMsg struct {
	items []Item
	err   error
}

// pickerModel is an inline list picker with optional multi-select.
type pickerModel struct {
	title    string
	multi    bool
	load     func() ([]Item, error)
	spinner  spinner.Model
	loading  bool
	items    []Item
	cursor   int
	selected map[int]bool
	err      error
	aborted  bool
	done     bool
}

func newPickerModel(title string, multi bool, load func() ([]Item, error)) pickerModel {
	return pickerModel{
		title:    title,
		multi:    multi,
		load:     load,
		spinner:  newSpinner(),
		loading:  true,
		selected: make(map[int]bool),
	}
}

// Init starts the spinner and kicks off the item fetch.
func (m pickerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		items, err := m.load()
		return loadedMsg{items: items, err: err}
	})
}

// Update handles key events and fetch completion.
func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		m.items = msg.items
		m.err = msg.err
		if m.err != nil || len(m.items) == 0 {
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.aborted = true
			m.done = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ":
			if m.multi && !m.loading {
				m.selected[m.cursor] = !m.selected[m.cursor]
			}
		case "a":
			if m.multi && !m.loading {
				for i := range m.items {
					m.selected[i] = true
				}
			}
		case "enter":
			if !m.loading {
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// View renders the picker.
func (m pickerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")

	if m.loading {
		b.WriteString(fmt.Sprintf("  %s loading...\n", m.spinner.View()))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errStyle.Render("✗ "+m.err.Error()) + "\n")
		return b.String()
	}

	for i, item := range m.items {
		marker := "  "
		if i == m.cursor {
			marker = selectedStyle.Render("> ")
		}
		check := ""
		if m.multi {
			if m.selected[i] {
				check = selectedStyle.Render("[x] ")
			} else {
				check = dimStyle.Render("[ ] ")
			}
		}
		label := normalStyle.Render(item.Name)
		if i == m.cursor {
			label = selectedStyle.Render(item.Name)
		}
		b.WriteString(fmt.Sprintf("%s%s%s", marker, check, label))
		if item.Detail != "" {
			b.WriteString(" " + dimStyle.Render("("+item.Detail+")"))
		}
		b.WriteString("\n")
	}

	if m.multi {
		b.WriteString(helpStyle.Render("\nspace toggle · a all · enter confirm · q cancel\n"))
	} else {
		b.WriteString(helpStyle.Render("\nenter select · q cancel\n"))
	}
	return b.String()
}

// result extracts the confirmed items after the program has quit.
func (m pickerModel) result() ([]Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.aborted {
		return nil, ErrAborted
	}
	if len(m.items) == 0 {
		return nil, nil
	}

	if !m.multi {
		return []Item{m.items[m.cursor]}, nil
	}

	var out []Item
	for i, item := range m.items {
		if m.selected[i] {
			out = append(out, item)
		}
	}
	// Enter with nothing toggled picks the cursor item.
	if len(out) == 0 {
		out = []Item{m.items[m.cursor]}
	}
	return out, nil
}

// Pick runs a single-select picker over items fetched by load.
//
// Parameters:
//   - title: heading shown above the list
//   - load: item fetcher, run asynchronously behind a spinner
//
// Returns:
//   - Item: the chosen item
//   - error: ErrAborted when cancelled, or the load error
func Pick(title string, load func() ([]Item, error)) (Item, error) {
	items, err := run(title, false, load)
	if err != nil {
		return Item{}, err
	}
	if len(items) == 0 {
		return Item{}, ErrAborted
	}
	return items[0], nil
}

// PickMany runs a multi-select picker over items fetched by load.
// Selection order on screen is preserved in the result.
func PickMany(title string, load func() ([]Item, error)) ([]Item, error) {
	return run(title, true, load)
}

func run(title string, multi bool, load func() ([]Item, error)) ([]Item, error) {
	p := tea.NewProgram(newPickerModel(title, multi, load))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(pickerModel).result()
}
