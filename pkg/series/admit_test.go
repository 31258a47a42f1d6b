package series

import (
	"errors"
	"fmt"
	"testing"
)

// numSchema declares a single float64 series with the identity projection
// plus any extra options.
func numSchema(name string, opts ...Option[float64]) *Schema[float64] {
	all := append([]Option[float64]{CompareBy[float64](Identity)}, opts...)
	return NewSchema[float64](Defaults{}, Declare(name, all...))
}

// mustPut feeds values through Put, failing the test on a schema error.
func mustPut(t *testing.T, c *Container[float64], name string, values ...float64) *Container[float64] {
	t.Helper()
	for _, v := range values {
		next, err := c.Put(name, v)
		if err != nil {
			t.Fatalf("Put(%q, %v): unexpected error: %v", name, v, err)
		}
		c = next
	}
	return c
}

func TestPut_StackEvictsLeastFavored(t *testing.T) {
	c := NewContainer(numSchema("s", Limit[float64](3)), nil)
	c = mustPut(t, c, "s", 10, 20, 30, 40, 0)

	s, _ := c.Series("s")
	want := []float64{40, 30, 20}
	if got := s.Values(); len(got) != len(want) {
		t.Fatalf("values: got %v, want %v", got, want)
	} else {
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("values: got %v, want %v", got, want)
			}
		}
	}
	if n := c.Errors().Len(); n != 0 {
		t.Errorf("error log: got %d entries, want 0", n)
	}
}

func TestPut_StackWithoutProjectionKeepsNewest(t *testing.T) {
	// No CompareBy: everything ties, so overflow drops the oldest.
	sch := NewSchema[float64](Defaults{}, Declare[float64]("s", Limit[float64](3)))
	c := mustPut(t, NewContainer(sch, nil), "s", 10, 20, 30, 40, 0)

	s, _ := c.Series("s")
	want := []float64{0, 40, 30}
	for i := range want {
		if s.Values()[i] != want[i] {
			t.Fatalf("values: got %v, want %v", s.Values(), want)
		}
	}
}

func TestPut_UnknownSeries(t *testing.T) {
	c := NewContainer(numSchema("s"), nil)

	next, err := c.Put("nope", 1)
	if err == nil {
		t.Fatal("Put on undeclared series: expected error, got nil")
	}
	if !errors.Is(err, ErrUnknownSeries) {
		t.Errorf("error: got %v, want ErrUnknownSeries", err)
	}
	if next != c {
		t.Error("Put on undeclared series: container should be returned unchanged")
	}
}

func TestPut_ValidatorRejectsToErrorLog(t *testing.T) {
	positive := func(_ string, v float64) bool { return v > 0 }
	c := NewContainer(numSchema("s", Validate(positive), Errors[float64](1)), nil)

	c = mustPut(t, c, "s", -5)
	s, _ := c.Series("s")
	if s.Len() != 0 {
		t.Fatalf("values after rejection: got %v, want empty", s.Values())
	}
	log := c.Errors().Entries()
	if len(log) != 1 || log[0].Series != "s" || log[0].Value != -5 {
		t.Fatalf("error log: got %+v, want [(s, -5)]", log)
	}

	// An accepted value leaves the quarantined one in place.
	c = mustPut(t, c, "s", 5)
	s, _ = c.Series("s")
	if s.Len() != 1 || s.Values()[0] != 5 {
		t.Fatalf("values: got %v, want [5]", s.Values())
	}
	log = c.Errors().Entries()
	if len(log) != 1 || log[0].Value != -5 {
		t.Fatalf("error log after acceptance: got %+v, want [(s, -5)]", log)
	}
}

func TestPut_ErrorLogRetention(t *testing.T) {
	never := func(string, float64) bool { return false }
	c := NewContainer(numSchema("s", Validate(never), Errors[float64](2)), nil)
	c = mustPut(t, c, "s", 1, 2, 3, 4)

	log := c.Errors().For("s")
	if len(log) != 2 {
		t.Fatalf("retained rejections: got %d, want 2", len(log))
	}
	if log[0].Value != 4 || log[1].Value != 3 {
		t.Errorf("retained rejections: got [%v %v], want newest-first [4 3]", log[0].Value, log[1].Value)
	}
	if n := c.Errors().Rejected("s"); n != 4 {
		t.Errorf("total rejections: got %d, want 4", n)
	}
}

func TestPut_LimitInvariantEveryStep(t *testing.T) {
	c := NewContainer(numSchema("s", Limit[float64](4), OrderBy[float64](Desc)), nil)
	for i := 0; i < 20; i++ {
		c = mustPut(t, c, "s", float64(i%7))
		s, _ := c.Series("s")
		if s.Len() > 4 {
			t.Fatalf("step %d: len %d exceeds limit 4", i, s.Len())
		}
	}
}

func TestPut_SortedOrderAndRecencyTies(t *testing.T) {
	c := NewContainer(numSchema("s", Limit[float64](5), OrderBy[float64](Desc)), nil)
	c = mustPut(t, c, "s", 3, 1, 4, 1, 5)

	s, _ := c.Series("s")
	got := s.Values()
	want := []float64{5, 4, 3, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("values: got %v, want %v", got, want)
		}
	}
	// Pairwise ordered under Desc (allowing ties).
	for i := 1; i < len(got); i++ {
		if got[i] > got[i-1] {
			t.Fatalf("values not in descending order: %v", got)
		}
	}
}

func TestPut_CapacityEvictsExactlyOne(t *testing.T) {
	c := NewContainer(numSchema("s", Limit[float64](3), OrderBy[float64](Desc)), nil)
	c = mustPut(t, c, "s", 10, 20, 30)

	c = mustPut(t, c, "s", 25)
	s, _ := c.Series("s")
	if s.Len() != 3 {
		t.Fatalf("len after overflow admission: got %d, want 3", s.Len())
	}
	want := []float64{30, 25, 20}
	for i := range want {
		if s.Values()[i] != want[i] {
			t.Fatalf("values: got %v, want %v", s.Values(), want)
		}
	}
}

func TestPut_ThresholdBand(t *testing.T) {
	c := NewContainer(numSchema("s", Limit[float64](10), Threshold[float64](0.5)), nil)

	// Empty series and a single distinct value: no band yet, accept anything.
	c = mustPut(t, c, "s", 10, 10, 20)

	// Spread [10, 20], threshold 0.5: acceptance widens to [5, 25].
	c = mustPut(t, c, "s", 5, 25)
	s, _ := c.Series("s")
	if s.Len() != 5 {
		t.Fatalf("band [5,25] should accept 5 and 25, got values %v", s.Values())
	}

	// Spread is now [5, 25], band 10, acceptance [-5, 35].
	c = mustPut(t, c, "s", 36)
	if got := c.Errors().For("s"); len(got) != 1 || got[0].Value != 36 {
		t.Fatalf("outliers in error log: got %+v, want [36]", got)
	}
	c = mustPut(t, c, "s", 35, -5)
	s, _ = c.Series("s")
	if s.Len() != 7 {
		t.Fatalf("band edges should be inclusive, got values %v", s.Values())
	}
}

func TestPut_CorrectorRescues(t *testing.T) {
	positive := func(_ string, v float64) bool { return v > 0 }
	flip := func(_ *Container[float64], _ string, v float64) (float64, error) {
		return -v, nil
	}
	c := NewContainer(numSchema("s", Validate(positive), Correct(flip)), nil)

	c = mustPut(t, c, "s", -5)
	s, _ := c.Series("s")
	if s.Len() != 1 || s.Values()[0] != 5 {
		t.Fatalf("corrected value: got %v, want [5]", s.Values())
	}
	if c.Errors().Len() != 0 {
		t.Errorf("error log after rescue: got %d entries, want 0", c.Errors().Len())
	}
}

func TestPut_CorrectorContractViolation(t *testing.T) {
	positive := func(_ string, v float64) bool { return v > 0 }
	useless := func(_ *Container[float64], _ string, v float64) (float64, error) {
		return v, nil // still invalid
	}
	c := NewContainer(numSchema("s", Validate(positive), Correct(useless)), nil)

	c = mustPut(t, c, "s", -5)
	s, _ := c.Series("s")
	if s.Len() != 0 {
		t.Fatalf("values: got %v, want empty", s.Values())
	}
	// The ORIGINAL value is quarantined, not the substitute.
	log := c.Errors().For("s")
	if len(log) != 1 || log[0].Value != -5 {
		t.Fatalf("error log: got %+v, want [(s, -5)]", log)
	}
}

func TestPut_CorrectorError(t *testing.T) {
	positive := func(_ string, v float64) bool { return v > 0 }
	refuse := func(_ *Container[float64], _ string, _ float64) (float64, error) {
		return 0, fmt.Errorf("beyond repair")
	}
	c := NewContainer(numSchema("s", Validate(positive), Correct(refuse)), nil)

	c = mustPut(t, c, "s", -5)
	log := c.Errors().For("s")
	if len(log) != 1 || log[0].Value != -5 {
		t.Fatalf("error log: got %+v, want [(s, -5)]", log)
	}
}

func TestPut_DoesNotMutateReceiver(t *testing.T) {
	c0 := NewContainer(numSchema("s"), nil)
	c1 := mustPut(t, c0, "s", 1)
	c2 := mustPut(t, c1, "s", 2)

	if s, _ := c0.Series("s"); s.Len() != 0 {
		t.Errorf("original container mutated: %v", s.Values())
	}
	if s, _ := c1.Series("s"); s.Len() != 1 {
		t.Errorf("intermediate container mutated: %v", s.Values())
	}
	if s, _ := c2.Series("s"); s.Len() != 2 {
		t.Errorf("final container: got %v, want 2 values", s.Values())
	}
}

func TestPut_MetaThresholdOverride(t *testing.T) {
	c := NewContainer(numSchema("s", Threshold[float64](0.0), Limit[float64](10)), nil)
	c = mustPut(t, c, "s", 10, 20) // establish the spread

	// Compiled threshold 0 rejects anything outside [10, 20].
	c = mustPut(t, c, "s", 25)
	if got := c.Errors().For("s"); len(got) != 1 || got[0].Value != 25 {
		t.Fatalf("compiled threshold: expected 25 rejected, log %+v", got)
	}

	// A per-series metadata override loosens the band at lookup time:
	// threshold 0.5 over spread [10, 20] accepts [5, 25].
	wide := c.WithMeta(Meta{"s": map[string]any{"threshold": 0.5}})
	wide = mustPut(t, wide, "s", 25)
	s, _ := wide.Series("s")
	if s.Len() != 3 {
		t.Fatalf("override threshold: got values %v, want 3 admitted", s.Values())
	}
}

func TestPut_MetaLimitOverride(t *testing.T) {
	c := NewContainer(numSchema("s", Limit[float64](10)), Meta{"s": map[string]any{"limit": 2}})
	c = mustPut(t, c, "s", 1, 2, 3)

	s, _ := c.Series("s")
	if s.Len() != 2 {
		t.Fatalf("len under meta limit 2: got %d (%v)", s.Len(), s.Values())
	}
}
