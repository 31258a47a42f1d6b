package series

// Meta is the opaque key/value side-state carried by a container. It is not
// subject to validation and may hold per-series or global policy overrides —
// see Container.resolve for the lookup order. Values read from YAML or JSON
// (map[string]any with numeric leaves) resolve as-is.
type Meta map[string]any

// Container owns a fixed mapping from series name to Series, one shared
// error log, and one metadata block. The series set is fixed for the
// container's lifetime. Containers are immutable values: every mutating
// operation returns a new Container and never touches the receiver.
type Container[T any] struct {
	names  []string // declared order, shared across the lineage
	series map[string]Series[T]
	errors ErrorLog[T]
	meta   Meta
}

// NewContainer creates a container with every declared series empty, an
// empty error log, and the given initial metadata (nil is valid).
func NewContainer[T any](schema *Schema[T], meta Meta) *Container[T] {
	names := make([]string, 0, len(schema.decls))
	srs := make(map[string]Series[T], len(schema.decls))
	for _, d := range schema.decls {
		names = append(names, d.Name)
		srs[d.Name] = Series[T]{policy: d.Policy}
	}
	return &Container[T]{names: names, series: srs, meta: meta}
}

// NewContainer creates an empty container from this schema.
func (s *Schema[T]) NewContainer(meta Meta) *Container[T] {
	return NewContainer(s, meta)
}

// Names returns the declared series names in declaration order.
func (c *Container[T]) Names() []string { return c.names }

// Series returns the named series. The second return is false for an
// undeclared name.
func (c *Container[T]) Series(name string) (Series[T], bool) {
	s, ok := c.series[name]
	return s, ok
}

// Errors returns the shared error log.
func (c *Container[T]) Errors() ErrorLog[T] { return c.errors }

// Meta returns the metadata block. Treat it as read-only; use WithMeta to
// derive a container with different metadata.
func (c *Container[T]) Meta() Meta { return c.meta }

// WithMeta returns a container identical to c but carrying meta. Series data
// and the error log are shared with the receiver.
func (c *Container[T]) WithMeta(meta Meta) *Container[T] {
	out := c.clone()
	out.meta = meta
	return out
}

// Head returns the head (most recent or best-ranked) value of the named
// series. ok is false when the series is empty. An undeclared name is a
// schema error.
func (c *Container[T]) Head(name string) (v T, ok bool, err error) {
	s, declared := c.series[name]
	if !declared {
		return v, false, &UnknownSeriesError{Name: name}
	}
	if len(s.values) == 0 {
		return v, false, nil
	}
	return s.values[0], true, nil
}

// TakeHead removes and returns the head value of the named series. When the
// series is empty, ok is false and next is the receiver. An undeclared name
// is a schema error.
func (c *Container[T]) TakeHead(name string) (v T, ok bool, next *Container[T], err error) {
	s, declared := c.series[name]
	if !declared {
		return v, false, c, &UnknownSeriesError{Name: name}
	}
	if len(s.values) == 0 {
		return v, false, c, nil
	}

	rest := make([]T, len(s.values)-1)
	copy(rest, s.values[1:])

	out := c.clone()
	out.series[name] = s.withValues(rest)
	return s.values[0], true, out, nil
}

// Each calls fn for every series in declaration order with the series name
// and its current values. Iteration stops early when fn returns false.
func (c *Container[T]) Each(fn func(name string, values []T) bool) {
	for _, name := range c.names {
		if !fn(name, c.series[name].values) {
			return
		}
	}
}

// Empty reports whether every series holds zero values. The error log and
// metadata are not considered.
func (c *Container[T]) Empty() bool {
	for _, s := range c.series {
		if len(s.values) > 0 {
			return false
		}
	}
	return true
}

// Clear returns a container with every series' values removed. Policies, the
// error log, and metadata are preserved.
func (c *Container[T]) Clear() *Container[T] {
	out := c.clone()
	for name, s := range out.series {
		out.series[name] = s.withValues(nil)
	}
	return out
}

// Len returns the total number of admitted values across all series.
func (c *Container[T]) Len() int {
	n := 0
	for _, s := range c.series {
		n += len(s.values)
	}
	return n
}

// clone returns a shallow copy sharing the name order, every series' value
// slice, and the error log. Callers replace entries in the copied map.
func (c *Container[T]) clone() *Container[T] {
	srs := make(map[string]Series[T], len(c.series))
	for name, s := range c.series {
		srs[name] = s
	}
	return &Container[T]{names: c.names, series: srs, errors: c.errors, meta: c.meta}
}

// --- metadata policy resolution ---------------------------------------------

// Metadata field keys recognised by the resolver.
const (
	FieldLimit     = "limit"
	FieldErrors    = "errors"
	FieldThreshold = "threshold"
)

// metaStateKey is the nested block holding externally-injected runtime
// overrides, kept apart from caller metadata proper.
const metaStateKey = "state"

// resolve looks up a policy field override for one series. Lookup order:
// meta[series][field], meta[field], meta["state"][series][field],
// meta["state"][field]. Explicit per-call overrides (Delta's comparator,
// Purge's validator) are handled by their operations before resolve runs.
func (c *Container[T]) resolve(name, field string) (any, bool) {
	if c.meta == nil {
		return nil, false
	}
	if m, ok := subMeta(c.meta, name); ok {
		if v, ok := m[field]; ok {
			return v, true
		}
	}
	if v, ok := c.meta[field]; ok {
		if _, isMap := subMeta(c.meta, field); !isMap {
			return v, true
		}
	}
	if st, ok := subMeta(c.meta, metaStateKey); ok {
		if m, ok := subMeta(st, name); ok {
			if v, ok := m[field]; ok {
				return v, true
			}
		}
		if v, ok := st[field]; ok {
			if _, isMap := subMeta(st, field); !isMap {
				return v, true
			}
		}
	}
	return nil, false
}

// effectiveLimit returns the admitted-value cap for name after metadata
// overrides.
func (c *Container[T]) effectiveLimit(name string, p Policy[T]) int {
	if v, ok := c.resolve(name, FieldLimit); ok {
		if n, ok := asInt(v); ok {
			return n
		}
	}
	return p.Limit
}

// effectiveErrorLimit returns the rejection retention cap for name after
// metadata overrides.
func (c *Container[T]) effectiveErrorLimit(name string, p Policy[T]) int {
	if v, ok := c.resolve(name, FieldErrors); ok {
		if n, ok := asInt(v); ok {
			return n
		}
	}
	return p.ErrorLimit
}

// effectiveThreshold returns the outlier band fraction for name after
// metadata overrides, or nil when the band is disabled.
func (c *Container[T]) effectiveThreshold(name string, p Policy[T]) *float64 {
	if v, ok := c.resolve(name, FieldThreshold); ok {
		if f, ok := asFloat(v); ok {
			return &f
		}
		// An explicit nil override disables the compiled threshold.
		if v == nil {
			return nil
		}
	}
	return p.Threshold
}

// subMeta extracts a nested metadata map, accepting both Meta and the
// map[string]any produced by YAML/JSON decoding.
func subMeta(m Meta, key string) (Meta, bool) {
	switch v := m[key].(type) {
	case Meta:
		return v, true
	case map[string]any:
		return Meta(v), true
	default:
		return nil, false
	}
}

// asInt coerces the numeric types YAML/JSON decoding produces.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// asFloat coerces the numeric types YAML/JSON decoding produces.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
