package series

// Rejection is one quarantined value in the error log.
type Rejection[T any] struct {
	Series string
	Value  T
}

// ErrorLog is the bounded, newest-first record of rejected values shared by
// all series in one container. Each series has its own retention count, but
// all entries live in one logical list keyed by series name.
type ErrorLog[T any] struct {
	entries []Rejection[T]

	// rejected counts every rejection ever recorded per series, across the
	// whole container lineage. Survives truncation.
	rejected map[string]uint64
}

// Entries returns all retained rejections, newest first. The returned slice
// must not be modified.
func (l ErrorLog[T]) Entries() []Rejection[T] { return l.entries }

// Len returns the number of retained rejections across all series.
func (l ErrorLog[T]) Len() int { return len(l.entries) }

// For returns the retained rejections for one series, newest first.
func (l ErrorLog[T]) For(name string) []Rejection[T] {
	var out []Rejection[T]
	for _, e := range l.entries {
		if e.Series == name {
			out = append(out, e)
		}
	}
	return out
}

// Rejected returns the total number of rejections ever recorded for name,
// including entries since evicted by the retention limit.
func (l ErrorLog[T]) Rejected(name string) uint64 { return l.rejected[name] }

// record returns a new ErrorLog with (name, v) prepended and name's entries
// truncated to limit. Entries for other series are untouched.
func (l ErrorLog[T]) record(name string, v T, limit int) ErrorLog[T] {
	if limit < 0 {
		limit = 0
	}

	entries := make([]Rejection[T], 0, len(l.entries)+1)
	entries = append(entries, Rejection[T]{Series: name, Value: v})
	kept := 1
	for _, e := range l.entries {
		if e.Series == name {
			if kept >= limit {
				continue
			}
			kept++
		}
		entries = append(entries, e)
	}
	if limit == 0 {
		// The fresh entry itself is over quota.
		entries = entries[1:]
	}

	rejected := make(map[string]uint64, len(l.rejected)+1)
	for k, n := range l.rejected {
		rejected[k] = n
	}
	rejected[name]++

	return ErrorLog[T]{entries: entries, rejected: rejected}
}
