package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jlumbroso/ptonppl/internal/adapters/driving/tui/keymap"
	"github.com/jlumbroso/ptonppl/internal/adapters/driving/tui/styles"
	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// MaxHistory is the number of lookups kept on screen.
const MaxHistory = 20

// Entry is one finished lookup.
type Entry struct {
	Query   string
	Record  domain.Record
	Err     error
	Elapsed time.Duration
}

// lookupMsg carries a finished lookup back to Update.
type lookupMsg Entry

// App is the interactive lookup prompt following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	input   textinput.Model
	spinner spinner.Model
	help    help.Model

	// searching is set while a lookup runs; input is ignored until it ends.
	searching bool
	pending   string

	// history holds finished lookups, newest first.
	history []Entry

	// queries holds submitted queries, oldest first, for recall.
	queries []string
	recall  int

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "username, alias, email or id"
	ti.CharLimit = 128
	ti.Width = 40
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	return &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  s,
		keys:    keymap.DefaultKeyMap(),
		input:   ti,
		spinner: sp,
		help:    help.New(),
	}, nil
}

// WithContext sets the context lookups run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("ptonppl"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		if w := msg.Width - 12; w > 20 {
			a.input.Width = w
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case lookupMsg:
		a.searching = false
		a.pending = ""
		a.history = append([]Entry{Entry(msg)}, a.history...)
		if len(a.history) > MaxHistory {
			a.history = a.history[:MaxHistory]
		}
		return a, nil

	case spinner.TickMsg:
		if !a.searching {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil

	case key.Matches(msg, a.keys.Clear):
		a.history = nil
		return a, nil

	case key.Matches(msg, a.keys.Previous):
		a.recallQuery(-1)
		return a, nil

	case key.Matches(msg, a.keys.Next):
		a.recallQuery(1)
		return a, nil

	case key.Matches(msg, a.keys.Search):
		query := strings.TrimSpace(a.input.Value())
		if query == "" || a.searching {
			return a, nil
		}
		a.searching = true
		a.pending = query
		a.queries = append(a.queries, query)
		a.recall = len(a.queries)
		a.input.Reset()
		return a, tea.Batch(a.spinner.Tick, a.lookupCmd(query))
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// recallQuery moves through submitted queries; past the newest the input clears.
func (a *App) recallQuery(delta int) {
	if len(a.queries) == 0 {
		return
	}
	a.recall += delta
	if a.recall < 0 {
		a.recall = 0
	}
	if a.recall >= len(a.queries) {
		a.recall = len(a.queries)
		a.input.SetValue("")
		return
	}
	a.input.SetValue(a.queries[a.recall])
	a.input.CursorEnd()
}

func (a *App) lookupCmd(query string) tea.Cmd {
	lookup := a.ports.Lookup
	ctx := a.ctx
	return func() tea.Msg {
		start := time.Now()
		record, err := lookup.Search(ctx, query)
		return lookupMsg{Query: query, Record: record, Err: err, Elapsed: time.Since(start)}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("ptonppl"))
	b.WriteString(a.styles.Muted.Render("  campus directory lookup"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.InputField.Render(a.input.View()))
	b.WriteString("\n")

	if a.searching {
		b.WriteString(fmt.Sprintf("%s looking up %s\n", a.spinner.View(), a.styles.Query.Render(a.pending)))
	}
	b.WriteString("\n")

	for _, e := range a.history {
		b.WriteString(a.renderEntry(e))
		b.WriteString("\n")
	}

	b.WriteString(a.help.View(a.keys))
	return b.String()
}

func (a *App) renderEntry(e Entry) string {
	header := a.styles.Query.Render(e.Query) + a.styles.Muted.Render(fmt.Sprintf("  %s", e.Elapsed.Round(time.Millisecond)))

	var body string
	switch {
	case errors.Is(e.Err, domain.ErrNotFound):
		body = a.styles.Muted.Render("not found")
	case e.Err != nil:
		body = a.styles.Error.Render(e.Err.Error())
	default:
		lines := make([]string, 0, len(domain.OutputKeys)+1)
		for _, f := range e.Record.ToMapping() {
			lines = append(lines, a.styles.Key.Render(f.Key)+a.styles.Value.Render(f.Value))
		}
		if e.Record.IsComplete() {
			lines = append(lines, a.styles.Complete.Render("complete"))
		} else {
			lines = append(lines, a.styles.Partial.Render("partial"))
		}
		body = strings.Join(lines, "\n")
	}

	return a.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// History returns finished lookups, newest first.
func (a *App) History() []Entry {
	return a.history
}

// Searching reports whether a lookup is running.
func (a *App) Searching() bool {
	return a.searching
}

// Input returns the current input value.
func (a *App) Input() string {
	return a.input.Value()
}
