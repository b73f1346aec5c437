package domain

// Status describes the backends serving this instance.
type Status struct {
	EmbeddingProvider string `json:"embedding_provider"`
	EmbeddingModel    string `json:"embedding_model"`
	Dimensions        int    `json:"dimensions"`
	StoreBackend      string `json:"store_backend"`

	// Chunks is the number of stored chunks, or -1 if the store could not be counted.
	Chunks int `json:"chunks"`

	EmbeddingOK bool `json:"embedding_ok"`
	StoreOK     bool `json:"store_ok"`
}

// Healthy reports whether both backends answered.
func (s Status) Healthy() bool {
	return s.EmbeddingOK && s.StoreOK
}
