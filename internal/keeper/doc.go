// Package keeper serializes access to the daemon's current cache container.
//
// The cache core (pkg/series) is a persistent value type: every Put or Purge
// yields a new container. Keeper is the single-writer holder around that
// value — it applies admissions, periodic purges, and runtime policy
// overrides under one mutex and hands out immutable snapshots for reads.
//
// Keeper.Stats() derives the per-series statistics (fill, head, extremes,
// admitted/rejected totals) consumed by the HTTP API, the WebSocket hub, and
// the alert rule engine.
package keeper
