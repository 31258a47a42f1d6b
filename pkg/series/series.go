package series

import "sort"

// Series is one named, ordered, capacity-bounded sequence of admitted values
// together with the policy that governs it. Series values are never mutated
// in place; admission produces a fresh value slice.
type Series[T any] struct {
	policy Policy[T]
	values []T

	// admitted counts every value ever accepted into this series, across the
	// whole container lineage. Survives eviction and Clear; used for cache
	// statistics, excluded from Equal.
	admitted uint64
}

// Values returns the series' current value sequence, newest-or-best first
// per the series order. The returned slice must not be modified.
func (s Series[T]) Values() []T { return s.values }

// Len returns the number of values currently held.
func (s Series[T]) Len() int { return len(s.values) }

// Policy returns the compiled policy. Per-instance metadata overrides are
// resolved by the container, not here.
func (s Series[T]) Policy() Policy[T] { return s.policy }

// Admitted returns the total number of values ever accepted into the series.
func (s Series[T]) Admitted() uint64 { return s.admitted }

// proj applies the series projection, treating a nil CompareBy as the zero
// projection.
func (s Series[T]) proj(v T) float64 {
	if s.policy.CompareBy == nil {
		return 0
	}
	return s.policy.CompareBy(v)
}

// extent returns the projected (min, max) of the current values under plain
// numeric comparison, used by the outlier band. ok is false when empty.
func (s Series[T]) extent() (min, max float64, ok bool) {
	if len(s.values) == 0 {
		return 0, 0, false
	}
	min = s.proj(s.values[0])
	max = min
	for _, v := range s.values[1:] {
		p := s.proj(v)
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max, true
}

// admit returns a new Series with v inserted, re-sorted per the policy order,
// and truncated to limit keeping the best entries. The newest value is
// prepended before sorting so that ties resolve by recency, newest first.
//
// Truncation depends on the ordering mode. A sorted series keeps its first
// limit entries — the best per Order. A stack series stays newest-first and
// instead evicts the least-favored value under Rank, one per admission; when
// everything ties (no projection configured), the oldest value goes, giving
// plain last-N recency behavior.
func (s Series[T]) admit(v T, limit int) Series[T] {
	vals := make([]T, 0, len(s.values)+1)
	vals = append(vals, v)
	vals = append(vals, s.values...)

	if ord := s.policy.Order; ord != nil {
		sort.SliceStable(vals, func(i, j int) bool {
			return ord(s.proj(vals[i]), s.proj(vals[j]))
		})
	}

	if limit < 0 {
		limit = 0
	}
	switch {
	case len(vals) <= limit:
	case s.policy.Order != nil:
		vals = vals[:limit:limit]
	default:
		below := s.policy.Rank
		if below == nil {
			below = Asc
		}
		for len(vals) > limit {
			// vals is newest-first, so preferring a later index on ties
			// evicts the oldest of the least-favored values.
			worst := 0
			for i := 1; i < len(vals); i++ {
				if !below(s.proj(vals[worst]), s.proj(vals[i])) {
					worst = i
				}
			}
			vals = append(vals[:worst], vals[worst+1:]...)
		}
	}

	return Series[T]{policy: s.policy, values: vals, admitted: s.admitted + 1}
}

// withValues returns a copy of the series holding vals, keeping policy and
// counters. Used by Purge, Merge, and Clear.
func (s Series[T]) withValues(vals []T) Series[T] {
	return Series[T]{policy: s.policy, values: vals, admitted: s.admitted}
}
