// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewRetrieve is the query form and ranked results.
	ViewRetrieve
	// ViewIngest is the document ingestion form.
	ViewIngest
	// ViewStatus shows the configured backends and their health.
	ViewStatus
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewRetrieve:
		return "retrieve"
	case ViewIngest:
		return "ingest"
	case ViewStatus:
		return "status"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// RetrievalCompleted carries ranked chunks back to the model.
type RetrievalCompleted struct {
	Query   domain.RetrievalQuery
	Results []domain.RetrievalResult
	Err     error
}

// IngestCompleted reports the outcome of one ingestion.
type IngestCompleted struct {
	Location string
	Chunks   int
	Err      error
}

// StatusLoaded carries a health snapshot.
type StatusLoaded struct {
	Status *domain.Status
	Err    error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
