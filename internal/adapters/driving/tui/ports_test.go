package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPorts(t *testing.T) {
	r := &mockRetrievalService{}
	i := &mockIngestionService{}
	s := &mockStatusService{}

	p := NewPorts(r, i, s)

	require.NotNil(t, p)
	assert.Same(t, r, p.Retrieval)
	assert.Same(t, i, p.Ingestion)
	assert.Same(t, s, p.Status)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"nil ports", nil, ErrInvalidPorts},
		{"missing retrieval", &Ports{Ingestion: &mockIngestionService{}}, ErrMissingRetrievalService},
		{"retrieval only", &Ports{Retrieval: &mockRetrievalService{}}, nil},
		{"all", NewPorts(&mockRetrievalService{}, &mockIngestionService{}, &mockStatusService{}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
