package series

// Put runs the admission engine for one candidate value and returns the
// resulting container. Rejection is a normal outcome recorded in the error
// log — Put fails only for an undeclared series name.
//
// The candidate is admitted when it falls inside the series' outlier band
// and passes the validator. A failing candidate is handed to the corrector
// (when configured); a substitute that passes the same checks is admitted in
// its place, while a corrector error — or a substitute that itself fails the
// checks — rejects the original value.
func (c *Container[T]) Put(name string, v T) (*Container[T], error) {
	s, declared := c.series[name]
	if !declared {
		return c, &UnknownSeriesError{Name: name}
	}

	threshold := c.effectiveThreshold(name, s.policy)
	admitted := v
	accept := c.admissible(s, name, threshold, v)

	if !accept && s.policy.Correct != nil {
		if sub, err := s.policy.Correct(c, name, v); err == nil {
			if c.admissible(s, name, threshold, sub) {
				admitted = sub
				accept = true
			}
		}
	}

	out := c.clone()
	if accept {
		out.series[name] = s.admit(admitted, c.effectiveLimit(name, s.policy))
	} else {
		out.errors = out.errors.record(name, v, c.effectiveErrorLimit(name, s.policy))
	}
	return out, nil
}

// admissible applies the outlier band and the validator to one candidate.
func (c *Container[T]) admissible(s Series[T], name string, threshold *float64, v T) bool {
	if !withinBand(s, threshold, v) {
		return false
	}
	if s.policy.Validate != nil && !s.policy.Validate(name, v) {
		return false
	}
	return true
}

// withinBand implements the symmetric spread-fraction outlier check: with
// the series' projected extremes [min, max] and band = max − min, the
// candidate's projection must lie in [min − band·t, max + band·t]. The check
// always accepts while no band exists yet — a nil threshold, an empty
// series, or a series whose values all project equally (the first points
// must be free to establish the spread).
func withinBand[T any](s Series[T], threshold *float64, v T) bool {
	if threshold == nil {
		return true
	}
	min, max, ok := s.extent()
	if !ok || min == max {
		return true
	}
	band := (max - min) * (*threshold)
	p := s.proj(v)
	return p >= min-band && p <= max+band
}
