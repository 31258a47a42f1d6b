package api

import "github.com/cairnstack/cairn/internal/keeper"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	SeriesCount   int    `json:"series_count"`
	ValueCount    int    `json:"value_count"`
	TotalAdmitted uint64 `json:"total_admitted"`
	TotalRejected uint64 `json:"total_rejected"`
	Empty         bool   `json:"empty"`
}

// SeriesDetail is the payload for GET /api/v1/series/{name}.
type SeriesDetail struct {
	keeper.Stat
	Values      []ValueResponse  `json:"values"`
	Rejected    []ValueResponse  `json:"rejected"`
	Diagnostics []DiagnosticHint `json:"diagnostics"`
}

// ValueResponse is one cached or rejected observation.
type ValueResponse struct {
	Value float64 `json:"value"`
	At    string  `json:"at"` // RFC3339
	Feed  string  `json:"feed,omitempty"`
}

// PutRequest is the body for POST /api/v1/series/{name}.
type PutRequest struct {
	Value float64 `json:"value"`
	At    string  `json:"at,omitempty"` // RFC3339; defaults to now
	Feed  string  `json:"feed,omitempty"`
}

// PutResponse reports the admission verdict for a submitted value.
type PutResponse struct {
	Series   string `json:"series"`
	Accepted bool   `json:"accepted"`
}

// RejectionResponse is one error-log entry in GET /api/v1/errors.
type RejectionResponse struct {
	Series string        `json:"series"`
	Value  ValueResponse `json:"value"`
}

// ExtentResponse is one series' spread in GET /api/v1/delta.
type ExtentResponse struct {
	Series string  `json:"series"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Spread float64 `json:"spread"`
}

// SliceResponse maps series names to their newest value in GET /api/v1/slice.
type SliceResponse map[string]ValueResponse

// PurgeResponse is the payload for POST /api/v1/purge.
type PurgeResponse struct {
	Removed int `json:"removed"`
}

// SnapshotResponse is the payload for GET /api/v1/snapshot.
type SnapshotResponse struct {
	Series      []SeriesDetail `json:"series"`
	GeneratedAt string         `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
