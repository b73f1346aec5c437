package tui

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("tui: retrieval service is required")

// ErrInvalidPorts is returned when NewApp is given no ports at all.
var ErrInvalidPorts = errors.New("tui: ports are required")
