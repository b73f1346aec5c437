// Package retrieve provides the query form and ranked results view.
package retrieve

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Form field indexes.
const (
	fieldQuery = iota
	fieldK
	fieldTag
	fieldCount
)

// View is the retrieval view: a query form above the results list.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	fields    [fieldCount]*input.Field
	focus     int
	list      *list.ResultList
	statusbar *status.Bar

	service  driving.RetrievalService
	ctx      context.Context
	defaultK int

	width     int
	height    int
	ready     bool
	err       error
	inResults bool
}

// NewView creates a new retrieval view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.RetrievalService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		list:      list.NewResultList(s),
		statusbar: status.NewBar(s, km),
		service:   service,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
	v.fields[fieldQuery] = input.NewField(s, "Query", "Ask something...", 1024)
	v.fields[fieldK] = input.NewNumberField(s, "k", "")
	v.fields[fieldTag] = input.NewField(s, "Tag", "any", 128)
	v.SetDefaultK(domain.MaxK)
	v.fields[fieldQuery].Focus()

	return v
}

// WithContext sets the context for retrieval calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDefaultK sets the k used when the k field is left empty.
func (v *View) SetDefaultK(k int) {
	v.defaultK = domain.ClampK(k)
	v.fields[fieldK].SetPlaceholder(strconv.Itoa(v.defaultK))
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.fields[fieldQuery].Init()
}

// Update handles messages for the retrieval view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RetrievalCompleted:
		v.handleCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if !v.inResults {
		v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.inResults {
		if keymap.Matches(msg.String(), v.keymap.NewQuery) {
			return v, v.focusForm(fieldQuery)
		}
		v.list, _ = v.list.Update(msg)
		return v, nil
	}

	switch {
	case msg.Type == tea.KeyEnter:
		q, ok := v.query()
		if !ok {
			return v, nil
		}
		v.statusbar.SetState(status.StateWorking)
		v.statusbar.SetMessage("Retrieving...")
		return v, v.performRetrieve(q)
	case keymap.Matches(msg.String(), v.keymap.NextField):
		return v, v.focusForm((v.focus + 1) % fieldCount)
	case keymap.Matches(msg.String(), v.keymap.PrevField):
		return v, v.focusForm((v.focus + fieldCount - 1) % fieldCount)
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

func (v *View) focusForm(field int) tea.Cmd {
	v.inResults = false
	for _, f := range v.fields {
		f.Blur()
	}
	v.focus = field
	v.statusbar.SetHints(v.keymap.FormHelp())
	return v.fields[field].Focus()
}

func (v *View) focusResults() {
	v.inResults = true
	for _, f := range v.fields {
		f.Blur()
	}
	v.statusbar.SetHints(v.keymap.ResultsHelp())
}

// query builds a retrieval query from the form. An empty tag means no filter.
func (v *View) query() (domain.RetrievalQuery, bool) {
	text := v.fields[fieldQuery].Value()
	if text == "" {
		return domain.RetrievalQuery{}, false
	}
	q := domain.RetrievalQuery{
		Query: text,
		K:     v.fields[fieldK].IntValue(v.defaultK),
	}
	if tag := v.fields[fieldTag].Value(); tag != "" {
		q.Tag = &tag
	}
	return q, true
}

func (v *View) performRetrieve(q domain.RetrievalQuery) tea.Cmd {
	ctx := v.ctx
	svc := v.service
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		results, err := svc.Retrieve(ctx, q)
		return messages.RetrievalCompleted{Query: q, Results: results, Err: err}
	}
}

func (v *View) handleCompleted(msg messages.RetrievalCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.focusResults()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the retrieval view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("Retrieve"), "")
	for _, f := range v.fields {
		sections = append(sections, f.View())
	}
	sections = append(sections, "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	for _, f := range v.fields {
		f.SetWidth(width)
	}
	// Three bordered fields, title and status bar.
	v.list.SetDimensions(width, height-14)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the query text in the form.
func (v *View) Query() string {
	return v.fields[fieldQuery].Value()
}

// SetQuery sets the query text.
func (v *View) SetQuery(query string) {
	v.fields[fieldQuery].SetValue(query)
}

// SetK sets the k field.
func (v *View) SetK(k int) {
	v.fields[fieldK].SetValue(strconv.Itoa(k))
}

// SetTag sets the tag field.
func (v *View) SetTag(tag string) {
	v.fields[fieldTag].SetValue(tag)
}

// Results returns the current results.
func (v *View) Results() []domain.RetrievalResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to an empty form.
func (v *View) Reset() {
	for _, f := range v.fields {
		f.Reset()
	}
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
	v.focusForm(fieldQuery)
}

// InResults returns whether the results list has focus.
func (v *View) InResults() bool {
	return v.inResults
}

// Focus returns the index of the focused form field.
func (v *View) Focus() int {
	return v.focus
}
