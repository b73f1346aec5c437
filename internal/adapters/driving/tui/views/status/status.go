// Package status provides the health view for the TUI.
package status

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// View shows which embedding provider and vector store are in use.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.StatusService
	ctx     context.Context

	status  *domain.Status
	err     error
	loading bool

	width  int
	height int
	ready  bool
}

// NewView creates a new status view. A nil service renders a notice.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.StatusService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		service: service,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context for status calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the status.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	if v.service == nil {
		return nil
	}
	v.loading = true
	ctx, svc := v.ctx, v.service
	return func() tea.Msg {
		st, err := svc.Status(ctx)
		return messages.StatusLoaded{Status: st, Err: err}
	}
}

// Update handles messages for the status view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case messages.StatusLoaded:
		v.loading = false
		v.status, v.err = msg.Status, msg.Err
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		if keymap.Matches(msg.String(), v.keymap.Refresh) {
			return v, v.load()
		}
	}
	return v, nil
}

// View renders the status view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Status"))
	b.WriteString("\n\n")

	switch {
	case v.service == nil:
		b.WriteString(v.styles.Muted.Render("Status is not available"))
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Checking backends..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.status != nil:
		v.renderStatus(&b, v.status)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] Refresh  [esc] Back"))
	return b.String()
}

func (v *View) renderStatus(b *strings.Builder, st *domain.Status) {
	row := func(label, value string) {
		fmt.Fprintf(b, "%s %s\n", v.styles.Label.Render(label), value)
	}

	row("Provider", st.EmbeddingProvider+" / "+st.EmbeddingModel+v.health(st.EmbeddingOK))
	row("Dims", fmt.Sprintf("%d", st.Dimensions))
	row("Store", st.StoreBackend+v.health(st.StoreOK))

	chunks := "unknown"
	if st.Chunks >= 0 {
		chunks = fmt.Sprintf("%d", st.Chunks)
	}
	row("Chunks", chunks)

	if st.Healthy() {
		b.WriteString(v.styles.Success.Render("\nAll backends reachable"))
	} else {
		b.WriteString(v.styles.Warning.Render("\nDegraded: check the configuration with `sercha-rag config list`"))
	}
}

func (v *View) health(ok bool) string {
	if ok {
		return "  " + v.styles.Success.Render("ok")
	}
	return "  " + v.styles.Error.Render("unreachable")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Status returns the last loaded snapshot.
func (v *View) Status() *domain.Status {
	return v.status
}

// Loading reports whether a status call is in flight.
func (v *View) Loading() bool {
	return v.loading
}
