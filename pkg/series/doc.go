// Package series implements a bounded, multi-series validated cache: a
// persistent container holding several independently-configured ordered
// sequences of values, each with its own capacity limit, admission validator,
// ordering, outlier-rejection band, and error quarantine.
//
// Top-level types:
//   - Policy[T] — per-series configuration: limit, error limit, projection
//     (CompareBy), post-admission sort predicate (Order), min/max ranking
//     predicate (Rank), outlier band fraction (Threshold), admission gate
//     (Validate), and best-effort rescue hook (Correct)
//   - Schema[T] — the fixed, ordered set of (name, Policy) declarations a
//     container is created from; built via Declare and option functions
//   - Defaults — engine-wide fallback limits applied at schema construction
//   - Container[T] — the immutable value holding all series, the shared
//     error log, and an opaque Meta block; every mutating operation returns
//     a new Container
//   - ErrorLog[T] — bounded, newest-first record of rejected values, with
//     per-series retention
//
// Put(name, v) runs the admission engine: the candidate must fall inside the
// series' outlier band and pass its validator; otherwise the corrector (if
// configured) may supply a substitute, and a final rejection is recorded in
// the error log rather than returned as an error. Only referencing an
// undeclared series name fails the operation.
//
// The outlier band is the symmetric spread-fraction form: with the series'
// current projected extremes [min, max] and band = max − min, a candidate v
// is accepted iff CompareBy(v) lies in [min − band·Threshold,
// max + band·Threshold]. The band only applies once it exists: an absent
// Threshold, an empty series, or a series with a single distinct projection
// accepts everything, so the first points are free to establish the spread.
//
// Derived operations — Delta, Slice, Purge, Equal, Merge, Empty, Clear, and
// the free functions Average and Fold — are pure reads over one or two
// containers. Equal compares only the value sequences: meta and the error
// log are deliberately excluded.
//
// A Container is a value, not a service: it never locks, blocks, or spawns
// goroutines. Callers sharing one logical "current" container across
// goroutines must serialize updates themselves (see internal/keeper for the
// single-writer pattern the daemon uses).
package series
