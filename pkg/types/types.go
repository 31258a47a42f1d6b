// Package types defines the shared observation type flowing from the feeds
// through the cache to the API. These are the canonical in-memory
// representations, separate from the Prometheus wire format the feeds parse.
package types

import "time"

// Observation is one sampled value bound for a cache series.
type Observation struct {
	// Value is the sampled number after any configured scaling.
	Value float64 `json:"value"`

	// At is when the sample was taken.
	At time.Time `json:"at"`

	// Feed identifies the feed that produced the sample.
	Feed string `json:"feed,omitempty"`
}

// Equal treats observations as interchangeable when they carry the same
// value, regardless of sample time or origin. The cache's container equality
// uses this hook.
func (o Observation) Equal(other Observation) bool {
	return o.Value == other.Value
}
