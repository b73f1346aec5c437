package retrieve

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error
	lastCtx context.Context
	last    domain.RetrievalQuery
}

func (m *mockRetrievalService) Retrieve(ctx context.Context, q domain.RetrievalQuery) ([]domain.RetrievalResult, error) {
	m.lastCtx = ctx
	m.last = q
	return m.results, m.err
}

func testResults() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{Text: "Cosine similarity ranks chunks.", Metadata: domain.Metadata{Source: "notes", Location: "Ranking", Tag: "AI"}},
		{Text: "Chunks overlap by fifty characters.", Metadata: domain.Metadata{Source: "notes", Location: "Chunking", Tag: "AI"}},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(v *View, s string) {
	for _, r := range s {
		v.Update(keyRunes(string(r)))
	}
}

// submit runs the command returned by Enter and feeds its message back.
func submit(t *testing.T, v *View) tea.Msg {
	t.Helper()
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	v.Update(msg)
	return msg
}

func newReadyView(svc *mockRetrievalService) *View {
	v := NewView(nil, nil, svc)
	v.SetDimensions(100, 40)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.False(t, v.Ready())
	assert.False(t, v.InResults())
	assert.Equal(t, fieldQuery, v.Focus())
	assert.Equal(t, domain.MaxK, v.defaultK)
	assert.NotNil(t, v.Init())
}

func TestView_WithContext(t *testing.T) {
	v := NewView(nil, nil, nil)
	type key string
	ctx := context.WithValue(context.Background(), key("k"), "v")

	assert.Same(t, v, v.WithContext(ctx))
	assert.Equal(t, ctx, v.ctx)
}

func TestView_Submit_BuildsQuery(t *testing.T) {
	tests := []struct {
		name     string
		k        string
		tag      string
		defaultK int
		wantK    int
		wantTag  *string
	}{
		{"defaults", "", "", 0, domain.MaxK, nil},
		{"explicit k", "3", "", 0, 3, nil},
		{"configured default k", "", "", 5, 5, nil},
		{"tag", "", "AI", 0, domain.MaxK, ptr("AI")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRetrievalService{results: testResults()}
			v := newReadyView(svc)
			if tt.defaultK > 0 {
				v.SetDefaultK(tt.defaultK)
			}
			typeText(v, "how are chunks ranked")
			v.fields[fieldK].SetValue(tt.k)
			v.SetTag(tt.tag)

			msg := submit(t, v)

			require.IsType(t, messages.RetrievalCompleted{}, msg)
			assert.Equal(t, "how are chunks ranked", svc.last.Query)
			assert.Equal(t, tt.wantK, svc.last.K)
			assert.Equal(t, tt.wantTag, svc.last.Tag)
		})
	}
}

func ptr(s string) *string { return &s }

func TestView_Submit_EmptyQueryDoesNothing(t *testing.T) {
	v := newReadyView(&mockRetrievalService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.InResults())
}

func TestView_Submit_ShowsResults(t *testing.T) {
	v := newReadyView(&mockRetrievalService{results: testResults()})
	v.SetQuery("ranking")

	submit(t, v)

	assert.True(t, v.InResults())
	assert.Len(t, v.Results(), 2)
	assert.Equal(t, status.StateResults, v.statusbar.State())
	assert.Equal(t, 2, v.statusbar.ResultCount())

	out := v.View()
	assert.Contains(t, out, "notes · Ranking")
	assert.Contains(t, out, "[AI]")
}

func TestView_Submit_ServiceError(t *testing.T) {
	v := newReadyView(&mockRetrievalService{err: errors.New("embedding failed")})
	v.SetQuery("ranking")

	submit(t, v)

	require.Error(t, v.Err())
	assert.False(t, v.InResults())
	assert.Equal(t, status.StateError, v.statusbar.State())
	assert.Contains(t, v.View(), "embedding failed")
}

func TestView_Submit_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(80, 24)
	v.SetQuery("ranking")

	msg := submit(t, v)

	assert.Equal(t, messages.ErrorOccurred{Err: ErrNoRetrievalService}, msg)
	assert.ErrorIs(t, v.Err(), ErrNoRetrievalService)
}

func TestView_Submit_PropagatesContext(t *testing.T) {
	svc := &mockRetrievalService{}
	v := newReadyView(svc)
	type key string
	ctx := context.WithValue(context.Background(), key("trace"), "abc")
	v.WithContext(ctx)
	v.SetQuery("ranking")

	submit(t, v)

	assert.Equal(t, "abc", svc.lastCtx.Value(key("trace")))
}

func TestView_TabCyclesFields(t *testing.T) {
	v := newReadyView(&mockRetrievalService{})

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldK, v.Focus())
	typeText(v, "7")

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldTag, v.Focus())
	typeText(v, "AI")

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldQuery, v.Focus())

	v.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldTag, v.Focus())

	assert.Equal(t, "7", v.fields[fieldK].Value())
	assert.Equal(t, "AI", v.fields[fieldTag].Value())
}

func TestView_ResultsMode_Navigation(t *testing.T) {
	v := newReadyView(&mockRetrievalService{results: testResults()})
	v.SetQuery("ranking")
	submit(t, v)

	v.Update(keyRunes("j"))
	assert.Equal(t, 1, v.SelectedIndex())

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.SelectedIndex())

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, v.list.Expanded())
}

func TestView_ResultsMode_NewQuery(t *testing.T) {
	v := newReadyView(&mockRetrievalService{results: testResults()})
	v.SetQuery("ranking")
	submit(t, v)

	v.Update(keyRunes("n"))

	assert.False(t, v.InResults())
	assert.Equal(t, fieldQuery, v.Focus())
	assert.Equal(t, "ranking", v.Query(), "query is kept for editing")
}

func TestView_Esc_BackToMenu(t *testing.T) {
	v := newReadyView(&mockRetrievalService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newReadyView(&mockRetrievalService{})

	v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
	assert.Equal(t, status.StateError, v.statusbar.State())
}

func TestView_Reset(t *testing.T) {
	v := newReadyView(&mockRetrievalService{results: testResults()})
	v.SetQuery("ranking")
	v.SetTag("AI")
	submit(t, v)

	v.Reset()

	assert.Empty(t, v.Query())
	assert.Empty(t, v.fields[fieldTag].Value())
	assert.Empty(t, v.Results())
	assert.False(t, v.InResults())
	assert.NoError(t, v.Err())
	assert.Equal(t, status.StateReady, v.statusbar.State())
}

func TestView_View(t *testing.T) {
	v := NewView(nil, nil, nil)
	assert.Contains(t, v.View(), "Initialising")

	v.SetDimensions(80, 24)
	out := v.View()

	assert.Contains(t, out, "Retrieve")
	assert.Contains(t, out, "Query")
	assert.Contains(t, out, "Tag")
	assert.Contains(t, out, "No results")
}

func TestView_WindowSize(t *testing.T) {
	v := NewView(nil, nil, nil)

	updated, cmd := v.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	assert.Same(t, v, updated)
	assert.Nil(t, cmd)
	assert.True(t, v.Ready())
	assert.Equal(t, 120, v.statusbar.Width())
}
