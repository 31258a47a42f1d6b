package series

// Engine-wide fallback values applied when a declaration omits a limit.
const (
	DefaultLimit      = 5
	DefaultErrorLimit = 5
)

// Defaults holds the engine-wide fallback limits. A zero Defaults is valid
// and means "use the package defaults". Pass it once at schema construction;
// there is no ambient global state.
type Defaults struct {
	// Limit is the fallback maximum number of admitted values per series.
	Limit int

	// ErrorLimit is the fallback maximum number of rejected values retained
	// per series in the shared error log.
	ErrorLimit int
}

func (d Defaults) limit() int {
	if d.Limit > 0 {
		return d.Limit
	}
	return DefaultLimit
}

func (d Defaults) errorLimit() int {
	if d.ErrorLimit > 0 {
		return d.ErrorLimit
	}
	return DefaultErrorLimit
}

// Policy is the immutable per-series configuration. All function fields are
// optional; nil fields fall back to the documented defaults. A Policy carries
// no state of its own.
type Policy[T any] struct {
	// Limit is the maximum number of admitted values retained. 0 keeps the
	// engine default; a negative value means an always-empty series.
	Limit int

	// ErrorLimit is the maximum number of rejected values retained for this
	// series in the shared error log. 0 keeps the engine default.
	ErrorLimit int

	// CompareBy projects a value onto the numeric axis used for ordering,
	// ranking, and the outlier band. NewSchema refuses a declaration that
	// sets Order, Rank, or Threshold without it (a nil projection would see
	// every value as 0); set Identity for plain float64 series.
	CompareBy func(T) float64

	// Order is the strict ordering predicate the series is re-sorted by
	// after every admission, applied to projections. Nil means stack order:
	// newest first, no sort. Ties are broken by insertion recency,
	// newest first.
	Order func(a, b float64) bool

	// Rank is the "a ranks below b" predicate used only by Delta to fold
	// out the extremes. Nil means numeric less-than.
	Rank func(a, b float64) bool

	// Threshold, when non-nil, is the outlier band fraction: a candidate is
	// rejected unless its projection lies within the series' current spread
	// widened by band·Threshold on each side.
	Threshold *float64

	// Validate is the admission gate. Nil admits everything.
	Validate func(name string, v T) bool

	// Correct is invoked only when a candidate fails admission. It may
	// return a substitute value, which is re-checked through the same
	// admission gate, or an error to stand by the rejection. Nil means no
	// rescue. The container argument is the pre-admission state.
	Correct func(c *Container[T], name string, v T) (T, error)
}

// Identity is the projection for series whose values are already the number
// of record.
func Identity(v float64) float64 { return v }

// Asc orders projections smallest-first.
func Asc(a, b float64) bool { return a < b }

// Desc orders projections largest-first.
func Desc(a, b float64) bool { return a > b }

// Decl pairs a series name with its policy inside a schema.
type Decl[T any] struct {
	Name   string
	Policy Policy[T]
}

// Schema is the fixed, ordered set of series declarations a Container is
// created from. Declaration order is the iteration order of every derived
// operation. Schemas are constructed once at program startup and never
// change afterwards.
type Schema[T any] struct {
	defaults Defaults
	decls    []Decl[T]
}

// Option mutates one Policy during Declare.
type Option[T any] func(*Policy[T])

// Limit caps the number of admitted values retained.
func Limit[T any](n int) Option[T] {
	return func(p *Policy[T]) { p.Limit = n }
}

// Errors caps the number of rejected values retained in the error log.
func Errors[T any](n int) Option[T] {
	return func(p *Policy[T]) { p.ErrorLimit = n }
}

// CompareBy sets the numeric projection.
func CompareBy[T any](fn func(T) float64) Option[T] {
	return func(p *Policy[T]) { p.CompareBy = fn }
}

// OrderBy sets the post-admission sort predicate over projections.
func OrderBy[T any](fn func(a, b float64) bool) Option[T] {
	return func(p *Policy[T]) { p.Order = fn }
}

// RankBy sets the extremum predicate used by Delta.
func RankBy[T any](fn func(a, b float64) bool) Option[T] {
	return func(p *Policy[T]) { p.Rank = fn }
}

// Threshold sets the outlier band fraction.
func Threshold[T any](t float64) Option[T] {
	return func(p *Policy[T]) { p.Threshold = &t }
}

// Validate sets the admission gate.
func Validate[T any](fn func(name string, v T) bool) Option[T] {
	return func(p *Policy[T]) { p.Validate = fn }
}

// Correct sets the rescue hook invoked on failed admission.
func Correct[T any](fn func(c *Container[T], name string, v T) (T, error)) Option[T] {
	return func(p *Policy[T]) { p.Correct = fn }
}

// Declare builds one series declaration from options.
func Declare[T any](name string, opts ...Option[T]) Decl[T] {
	d := Decl[T]{Name: name}
	for _, opt := range opts {
		opt(&d.Policy)
	}
	return d
}

// NewSchema assembles a schema from declarations, filling unset limits from
// defaults. Duplicate names and empty names panic: the schema is program
// shape, and a malformed one is a programming error best caught at startup.
func NewSchema[T any](defaults Defaults, decls ...Decl[T]) *Schema[T] {
	seen := make(map[string]struct{}, len(decls))
	out := make([]Decl[T], 0, len(decls))
	for _, d := range decls {
		if d.Name == "" {
			panic("series: schema declaration with empty name")
		}
		if _, dup := seen[d.Name]; dup {
			panic("series: duplicate schema declaration " + d.Name)
		}
		seen[d.Name] = struct{}{}

		// Order, Rank, and Threshold all operate on projections. Without a
		// CompareBy they would see every value as 0 and silently degrade to
		// no-ops, so such a declaration is refused outright.
		if d.Policy.CompareBy == nil &&
			(d.Policy.Order != nil || d.Policy.Rank != nil || d.Policy.Threshold != nil) {
			panic("series: declaration " + d.Name + " sets order, rank, or threshold without CompareBy")
		}

		if d.Policy.Limit == 0 {
			d.Policy.Limit = defaults.limit()
		}
		if d.Policy.ErrorLimit == 0 {
			d.Policy.ErrorLimit = defaults.errorLimit()
		}
		out = append(out, d)
	}
	return &Schema[T]{defaults: defaults, decls: out}
}

// Names returns the declared series names in declaration order.
func (s *Schema[T]) Names() []string {
	names := make([]string, len(s.decls))
	for i, d := range s.decls {
		names[i] = d.Name
	}
	return names
}

// Len returns the number of declared series.
func (s *Schema[T]) Len() int { return len(s.decls) }
