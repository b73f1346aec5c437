package domain

// IngestRequest is the input of an ingestion call.
type IngestRequest struct {
	// Location is a URL or local file path whose suffix selects the format.
	Location string

	// Tag is stamped on every chunk of the document.
	Tag string

	// ChunkSize and ChunkOverlap follow ChunkOptions.WithDefaults.
	ChunkSize    int
	ChunkOverlap int
}

// ManifestEntry is one document in a batch manifest.
type ManifestEntry struct {
	Location     string `yaml:"location" json:"location"`
	Tag          string `yaml:"tag" json:"tag"`
	ChunkSize    int    `yaml:"chunk_size,omitempty" json:"chunk_size,omitempty"`
	ChunkOverlap *int   `yaml:"chunk_overlap,omitempty" json:"chunk_overlap,omitempty"`
}

// Request converts the entry into an IngestRequest.
// An entry without a tag inherits the manifest default.
func (e ManifestEntry) Request(defaultTag string) IngestRequest {
	req := IngestRequest{
		Location:     e.Location,
		Tag:          e.Tag,
		ChunkSize:    e.ChunkSize,
		ChunkOverlap: -1,
	}
	if req.Tag == "" {
		req.Tag = defaultTag
	}
	if e.ChunkOverlap != nil {
		req.ChunkOverlap = *e.ChunkOverlap
	}
	return req
}

// Manifest lists documents to ingest in one batch.
type Manifest struct {
	// Tag is applied to entries that do not set their own.
	Tag string `yaml:"tag,omitempty" json:"tag,omitempty"`

	// Concurrency bounds parallel ingestions; zero means the service default.
	Concurrency int `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`

	Documents []ManifestEntry `yaml:"documents" json:"documents"`
}

// IngestReport is the outcome of one manifest entry.
type IngestReport struct {
	Location string
	Tag      string
	Chunks   int
	Err      error
}

// Failed reports whether the entry failed.
func (r IngestReport) Failed() bool {
	return r.Err != nil
}
