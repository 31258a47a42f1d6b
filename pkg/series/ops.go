package series

import "reflect"

// Extent is the (min, max) pair of one series under its ranking. OK is false
// for an empty series.
type Extent[T any] struct {
	Min T
	Max T
	OK  bool
}

// Delta folds every series to its (min, max) extremes under the series'
// rank predicate, or under rank when non-nil (the per-call override). An
// empty series yields a zero Extent with OK false.
func (c *Container[T]) Delta(rank func(a, b float64) bool) map[string]Extent[T] {
	out := make(map[string]Extent[T], len(c.names))
	for _, name := range c.names {
		s := c.series[name]
		below := rank
		if below == nil {
			below = s.policy.Rank
		}
		if below == nil {
			below = Asc
		}

		var ext Extent[T]
		for i, v := range s.values {
			p := s.proj(v)
			if i == 0 {
				ext = Extent[T]{Min: v, Max: v, OK: true}
				continue
			}
			if below(p, s.proj(ext.Min)) {
				ext.Min = v
			}
			if below(s.proj(ext.Max), p) {
				ext.Max = v
			}
		}
		out[name] = ext
	}
	return out
}

// Slice returns the head value of every non-empty series, keyed by name.
// Empty series are omitted.
func (c *Container[T]) Slice() map[string]T {
	out := make(map[string]T, len(c.names))
	for _, name := range c.names {
		if s := c.series[name]; len(s.values) > 0 {
			out[name] = s.values[0]
		}
	}
	return out
}

// Purge re-filters every series' current values through validate, or through
// each series' own validator when validate is nil. Values admitted earlier
// whose validity is time-dependent are dropped here; purged values are
// expired, not rejected, so they are not recorded in the error log. Purge
// with a stateless validator is idempotent.
func (c *Container[T]) Purge(validate func(name string, v T) bool) *Container[T] {
	out := c.clone()
	for _, name := range c.names {
		s := out.series[name]
		keep := validate
		if keep == nil {
			keep = s.policy.Validate
		}
		if keep == nil || len(s.values) == 0 {
			continue
		}

		kept := make([]T, 0, len(s.values))
		for _, v := range s.values {
			if keep(name, v) {
				kept = append(kept, v)
			}
		}
		if len(kept) == len(s.values) {
			continue
		}
		out.series[name] = s.withValues(kept)
	}
	return out
}

// Equal reports whether both containers declare the same series set and hold
// pairwise-equal value sequences in the same order. Only the data of record
// matters: metadata and the error log are excluded. Elements exposing an
// Equal(T) bool method are compared with it; everything else falls back to
// structural equality.
func (c *Container[T]) Equal(other *Container[T]) bool {
	if other == nil || len(c.series) != len(other.series) {
		return false
	}
	for name, s := range c.series {
		o, ok := other.series[name]
		if !ok || len(s.values) != len(o.values) {
			return false
		}
		for i, v := range s.values {
			if !valueEqual(v, o.values[i]) {
				return false
			}
		}
	}
	return true
}

// Merge combines both containers' value sequences pairwise through resolve.
// Both containers must declare the same series set with equal-length value
// sequences per series; a mismatch is a caller error and fails the whole
// operation. The one tolerated asymmetry: when exactly one side of a series
// is empty, the non-empty sequence is carried over unchanged without calling
// resolve, so merging with an empty counterpart is a no-op on data. The
// result inherits c's policies, metadata, and error log.
func (c *Container[T]) Merge(other *Container[T], resolve func(name string, a, b T) T) (*Container[T], error) {
	if other == nil || len(c.series) != len(other.series) {
		return nil, &MergeMismatchError{Detail: "containers declare different series sets"}
	}
	for name := range c.series {
		if _, ok := other.series[name]; !ok {
			return nil, &MergeMismatchError{Detail: "containers declare different series sets"}
		}
	}

	out := c.clone()
	for _, name := range c.names {
		s := c.series[name]
		o := other.series[name]
		if len(s.values) == 0 && len(o.values) == 0 {
			continue
		}
		if len(s.values) == 0 {
			vals := make([]T, len(o.values))
			copy(vals, o.values)
			out.series[name] = s.withValues(vals)
			continue
		}
		if len(o.values) == 0 {
			continue
		}
		if len(s.values) != len(o.values) {
			return nil, &MergeMismatchError{Series: name, Detail: "value sequences differ in length"}
		}

		merged := make([]T, len(s.values))
		for i := range s.values {
			merged[i] = resolve(name, s.values[i], o.values[i])
		}
		out.series[name] = s.withValues(merged)
	}
	return out, nil
}

// Average applies a caller-supplied reducer to every series' full value
// sequence in declaration order, keyed by name. A free function rather than
// a method so the aggregate type is the caller's choice.
func Average[T, R any](c *Container[T], reduce func(name string, values []T) R) map[string]R {
	out := make(map[string]R, len(c.names))
	for _, name := range c.names {
		out[name] = reduce(name, c.series[name].values)
	}
	return out
}

// Fold walks the container as an ordered collection of (name, values) pairs
// in declaration order, threading an accumulator.
func Fold[T, A any](c *Container[T], acc A, fn func(acc A, name string, values []T) A) A {
	for _, name := range c.names {
		acc = fn(acc, name, c.series[name].values)
	}
	return acc
}

// Mean is a ready-made Average reducer for float64 series. An empty series
// averages to 0.
func Mean(_ string, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// valueEqual prefers an element-level Equal method over structural equality.
func valueEqual[T any](a, b T) bool {
	if eq, ok := any(a).(interface{ Equal(T) bool }); ok {
		return eq.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}
