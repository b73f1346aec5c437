// Package ingest provides the document ingestion form for the TUI.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// ErrNoIngestionService indicates that no ingestion service was provided.
var ErrNoIngestionService = errors.New("ingestion service is required")

// maxHistory bounds the list of recent outcomes shown under the form.
const maxHistory = 8

const (
	fieldLocation = iota
	fieldTag
	fieldChunkSize
	fieldChunkOverlap
	fieldCount
)

// View is the ingest form with a log of recent outcomes.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	fields    [fieldCount]*input.Field
	focus     int
	spinner   spinner.Model
	statusbar *status.Bar

	service driving.IngestionService
	ctx     context.Context

	busy    bool
	history []messages.IngestCompleted

	width  int
	height int
	ready  bool
}

// NewView creates a new ingest view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.IngestionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Subtitle

	v := &View{
		styles:    s,
		keymap:    km,
		spinner:   sp,
		statusbar: status.NewBar(s, km),
		service:   service,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
	v.fields[fieldLocation] = input.NewField(s, "Location", "URL or path ending in .pdf, .md or .json", 2048)
	v.fields[fieldTag] = input.NewField(s, "Tag", "", 128)
	v.fields[fieldChunkSize] = input.NewNumberField(s, "Size", strconv.Itoa(domain.DefaultChunkSize))
	v.fields[fieldChunkOverlap] = input.NewNumberField(s, "Overlap", strconv.Itoa(domain.DefaultChunkOverlap))
	v.fields[fieldLocation].Focus()

	return v
}

// WithContext sets the context for ingestion calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.fields[fieldLocation].Init()
}

// Update handles messages for the ingest view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.IngestCompleted:
		v.handleCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.busy = false
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	if v.busy {
		return v, nil
	}

	switch {
	case msg.Type == tea.KeyEnter:
		req, ok := v.request()
		if !ok {
			return v, nil
		}
		v.busy = true
		v.statusbar.SetState(status.StateWorking)
		v.statusbar.SetMessage("Ingesting " + req.Location + "...")
		return v, tea.Batch(v.spinner.Tick, v.performIngest(req))
	case keymap.Matches(msg.String(), v.keymap.NextField):
		return v, v.focusField((v.focus + 1) % fieldCount)
	case keymap.Matches(msg.String(), v.keymap.PrevField):
		return v, v.focusField((v.focus + fieldCount - 1) % fieldCount)
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

func (v *View) focusField(field int) tea.Cmd {
	for _, f := range v.fields {
		f.Blur()
	}
	v.focus = field
	return v.fields[field].Focus()
}

// request builds an ingest request. Empty size and overlap fall back to the
// chunker defaults; an explicit zero overlap is kept.
func (v *View) request() (domain.IngestRequest, bool) {
	location := v.fields[fieldLocation].Value()
	if location == "" {
		return domain.IngestRequest{}, false
	}
	return domain.IngestRequest{
		Location:     location,
		Tag:          v.fields[fieldTag].Value(),
		ChunkSize:    v.fields[fieldChunkSize].IntValue(0),
		ChunkOverlap: v.fields[fieldChunkOverlap].IntValue(-1),
	}, true
}

func (v *View) performIngest(req domain.IngestRequest) tea.Cmd {
	ctx := v.ctx
	svc := v.service
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoIngestionService}
		}
		chunks, err := svc.Ingest(ctx, req)
		return messages.IngestCompleted{Location: req.Location, Chunks: chunks, Err: err}
	}
}

func (v *View) handleCompleted(msg messages.IngestCompleted) {
	v.busy = false
	v.history = append([]messages.IngestCompleted{msg}, v.history...)
	if len(v.history) > maxHistory {
		v.history = v.history[:maxHistory]
	}

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}
	v.statusbar.SetState(status.StateDone)
	v.statusbar.SetMessage(fmt.Sprintf("Stored %d chunks from %s", msg.Chunks, msg.Location))
	v.fields[fieldLocation].Reset()
}

// View renders the ingest view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 16)
	sections = append(sections, v.styles.Title.Render("Ingest"), "")
	for _, f := range v.fields {
		sections = append(sections, f.View())
	}
	sections = append(sections, "")

	if v.busy {
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("Fetching, chunking and embedding..."), "")
	}

	if len(v.history) > 0 {
		sections = append(sections, v.styles.Subtitle.Render("Recent"))
		for _, h := range v.history {
			sections = append(sections, v.renderOutcome(h))
		}
		sections = append(sections, "")
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderOutcome(h messages.IngestCompleted) string {
	if h.Err != nil {
		return v.styles.Error.Render("  ✗ "+h.Location) + v.styles.Muted.Render("  "+h.Err.Error())
	}
	return v.styles.Success.Render("  ✓ "+h.Location) + v.styles.Muted.Render(fmt.Sprintf("  %d chunks", h.Chunks))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	for _, f := range v.fields {
		f.SetWidth(width)
	}
	v.statusbar.SetWidth(width)
}

// Reset clears the form but keeps the outcome history.
func (v *View) Reset() {
	for _, f := range v.fields {
		f.Reset()
	}
	v.busy = false
	v.statusbar.Clear()
	v.focusField(fieldLocation)
}

// SetLocation sets the location field.
func (v *View) SetLocation(location string) {
	v.fields[fieldLocation].SetValue(location)
}

// SetTag sets the tag field.
func (v *View) SetTag(tag string) {
	v.fields[fieldTag].SetValue(tag)
}

// Busy reports whether an ingestion is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// History returns recent outcomes, newest first.
func (v *View) History() []messages.IngestCompleted {
	return v.history
}

// Focus returns the index of the focused form field.
func (v *View) Focus() int {
	return v.focus
}
