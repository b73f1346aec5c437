// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// linesPerResult is the collapsed height of one entry: header, preview, gap.
const linesPerResult = 3

// ResultList displays ranked chunks in a navigable list.
// The selected entry can be expanded to show its full text.
type ResultList struct {
	results  []domain.RetrievalResult
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		case "enter", " ":
			r.ToggleExpanded()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.results)*linesPerResult+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), "")

	start, end := r.visibleRange()
	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}

	return strings.Join(lines, "\n")
}

// visibleRange keeps the selection on screen.
func (r *ResultList) visibleRange() (int, int) {
	visible := (r.height - 2) / linesPerResult
	if visible < 1 {
		visible = 1
	}

	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.results))
	return start, end
}

func (r *ResultList) renderResult(index int, result *domain.RetrievalResult) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	header := fmt.Sprintf("%s%d. %s", indicator, index+1, Heading(result.Metadata))
	if index == r.selected {
		header = r.styles.Selected.Render(header)
	} else {
		header = r.styles.Normal.Render(header)
	}
	if result.Metadata.Tag != "" {
		header += " " + r.styles.Tag.Render("["+result.Metadata.Tag+"]")
	}

	if index == r.selected && r.expanded {
		return header + "\n" + r.styles.Normal.Render(indent(wrap(result.Text, r.width-4), "    "))
	}
	return header + "\n" + r.styles.Muted.Render("    "+Preview(result.Text, r.width-6))
}

// Heading renders "source · location", omitting empty parts.
func Heading(m domain.Metadata) string {
	parts := make([]string, 0, 2)
	if m.Source != "" {
		parts = append(parts, m.Source)
	}
	if m.Location != "" {
		parts = append(parts, m.Location)
	}
	if len(parts) == 0 {
		return "(unknown source)"
	}
	return strings.Join(parts, " · ")
}

// Preview collapses whitespace and truncates text to limit runes.
func Preview(text string, limit int) string {
	if limit < 20 {
		limit = 20
	}
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= limit {
		return flat
	}
	return string(runes[:limit-3]) + "..."
}

func wrap(text string, width int) string {
	if width < 20 {
		width = 20
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			if line != "" && len([]rune(line))+1+len([]rune(word)) > width {
				out = append(out, line)
				line = word
				continue
			}
			if line != "" {
				line += " "
			}
			line += word
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func indent(text, prefix string) string {
	return prefix + strings.ReplaceAll(text, "\n", "\n"+prefix)
}

// SetResults replaces the list contents and resets the selection.
func (r *ResultList) SetResults(results []domain.RetrievalResult) {
	r.results = results
	r.selected = 0
	r.expanded = false
}

// Results returns the current results.
func (r *ResultList) Results() []domain.RetrievalResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
		r.expanded = false
	}
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.RetrievalResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	r.SetSelected(r.selected - 1)
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	r.SetSelected(r.selected + 1)
}

// ToggleExpanded shows or hides the full text of the selected result.
func (r *ResultList) ToggleExpanded() {
	if len(r.results) > 0 {
		r.expanded = !r.expanded
	}
}

// Expanded reports whether the selected result shows its full text.
func (r *ResultList) Expanded() bool {
	return r.expanded
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}
