package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/views/ingest"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/views/retrieve"
	statusview "github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/views/status"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// App is the root TUI model. It owns one model per view and routes
// messages to whichever is active.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	menuView     *menu.View
	retrieveView *retrieve.View
	ingestView   *ingest.View
	statusView   *statusview.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	h := help.New()
	h.ShowAll = true

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		help:         h,
		menuView:     menu.NewView(s, ports.Ingestion != nil),
		retrieveView: retrieve.NewView(s, km, ports.Retrieval),
		ingestView:   ingest.NewView(s, km, ports.Ingestion),
		statusView:   statusview.NewView(s, km, ports.Status),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context passed to every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.retrieveView.WithContext(ctx)
	a.ingestView.WithContext(ctx)
	a.statusView.WithContext(ctx)
	return a
}

// WithDefaultK sets the k used when the retrieval form leaves it empty.
func (a *App) WithDefaultK(k int) *App {
	a.retrieveView.SetDefaultK(k)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("sercha-rag")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateActive(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.RetrievalCompleted:
		a.retrieveView, cmd = a.retrieveView.Update(msg)
		a.err = a.retrieveView.Err()
		return a, cmd

	case messages.IngestCompleted:
		a.ingestView, cmd = a.ingestView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.StatusLoaded:
		a.statusView, cmd = a.statusView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.updateActive(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.updateActive(msg)
}

// switchTo activates a view, resetting forms on entry.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewRetrieve:
		a.retrieveView.Reset()
		return a.retrieveView.Init()
	case messages.ViewIngest:
		if a.ports.Ingestion == nil {
			a.currentView = messages.ViewMenu
			return nil
		}
		a.ingestView.Reset()
		return a.ingestView.Init()
	case messages.ViewStatus:
		return a.statusView.Init()
	case messages.ViewMenu, messages.ViewHelp:
	}
	return nil
}

func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewRetrieve:
		a.retrieveView, cmd = a.retrieveView.Update(msg)
	case messages.ViewIngest:
		a.ingestView, cmd = a.ingestView.Update(msg)
	case messages.ViewStatus:
		a.statusView, cmd = a.statusView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewRetrieve:
		return a.retrieveView.View()
	case messages.ViewIngest:
		return a.ingestView.View()
	case messages.ViewStatus:
		return a.statusView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(a.help.View(a.keymap))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("Retrieve: type a query, tab to k and tag, enter to run."))
	b.WriteString("\n")
	b.WriteString(a.styles.Muted.Render("Ingest: give a URL or path ending in .pdf, .md or .json."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI on the alternate screen and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Query returns the query in the retrieval form.
func (a *App) Query() string {
	return a.retrieveView.Query()
}

// Results returns the last retrieval results.
func (a *App) Results() []domain.RetrievalResult {
	return a.retrieveView.Results()
}

// SelectedIndex returns the selected result index.
func (a *App) SelectedIndex() int {
	return a.retrieveView.SelectedIndex()
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error reported by a service.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width

	a.menuView.SetDimensions(width, height)
	a.retrieveView.SetDimensions(width, height)
	a.ingestView.SetDimensions(width, height)
	a.statusView.SetDimensions(width, height)
}
