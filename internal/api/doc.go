// Package api implements the HTTP REST API for cairnd.
//
// New(keeper, alerts) returns an http.Handler that serves:
//
//	GET  /api/v1/health         — container-wide counters
//	GET  /api/v1/series         — per-series stats in declared order
//	GET  /api/v1/series/{name}  — one series: stats, values, retained rejections
//	POST /api/v1/series/{name}  — offer a value to the admission engine
//	GET  /api/v1/errors         — the shared error log, newest first
//	GET  /api/v1/delta          — per-series extremes (?rank=asc|desc to override)
//	GET  /api/v1/slice          — newest value of every non-empty series
//	POST /api/v1/purge          — re-validate all cached values now
//	GET  /api/v1/alerts         — currently firing alerts
//	GET  /api/v1/snapshot       — full dump: all series + generated_at
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for unsupported methods
//   - Read a consistent immutable container snapshot from the keeper
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
