package keeper

import (
	"sync"
	"testing"
	"time"

	"github.com/cairnstack/cairn/pkg/series"
	"github.com/cairnstack/cairn/pkg/types"
)

func obs(v float64) types.Observation {
	return types.Observation{Value: v, At: time.Now()}
}

func newKeeper(opts ...series.Option[types.Observation]) *Keeper {
	all := append([]series.Option[types.Observation]{
		series.CompareBy[types.Observation](func(o types.Observation) float64 { return o.Value }),
	}, opts...)
	sch := series.NewSchema[types.Observation](series.Defaults{}, series.Declare("s", all...))
	return New(sch.NewContainer(nil), 0)
}

func TestPut_TracksAcceptance(t *testing.T) {
	positive := func(_ string, o types.Observation) bool { return o.Value > 0 }
	k := newKeeper(series.Validate(positive))

	accepted, err := k.Put("s", obs(5))
	if err != nil || !accepted {
		t.Fatalf("Put(5): got (%v, %v), want accepted", accepted, err)
	}
	accepted, err = k.Put("s", obs(-5))
	if err != nil || accepted {
		t.Fatalf("Put(-5): got (%v, %v), want rejected", accepted, err)
	}
	if _, err := k.Put("nope", obs(1)); err == nil {
		t.Fatal("Put on undeclared series: expected error")
	}
}

func TestStats(t *testing.T) {
	positive := func(_ string, o types.Observation) bool { return o.Value > 0 }
	k := newKeeper(series.Validate(positive))

	for _, v := range []float64{3, 1, 4, -1} {
		if _, err := k.Put("s", obs(v)); err != nil {
			t.Fatal(err)
		}
	}

	stats := k.Stats()
	if len(stats) != 1 {
		t.Fatalf("stats: got %d entries, want 1", len(stats))
	}
	st := stats[0]
	if st.Fill != 3 || st.Admitted != 3 || st.Rejected != 1 {
		t.Errorf("stat counters: got %+v", st)
	}
	if !st.HasHead || st.Head != 4 {
		t.Errorf("head: got (%v, %v), want (4, true)", st.Head, st.HasHead)
	}
	if st.Min != 1 || st.Max != 4 || st.Spread != 3 {
		t.Errorf("extremes: got min=%v max=%v spread=%v", st.Min, st.Max, st.Spread)
	}
}

func TestPurge_RemovesStale(t *testing.T) {
	cutoff := time.Now().Add(-time.Hour)
	fresh := func(_ string, o types.Observation) bool { return o.At.After(cutoff) }
	k := newKeeper(series.Validate(fresh), series.Limit[types.Observation](10))

	k.Put("s", obs(1)) //nolint:errcheck
	k.Put("s", obs(2)) //nolint:errcheck
	k.Put("s", obs(3)) //nolint:errcheck

	if n := k.Purge(); n != 0 {
		t.Fatalf("purge of fresh values: removed %d, want 0", n)
	}

	// Advance the cutoff past the stored timestamps: everything is stale now.
	cutoff = time.Now().Add(time.Hour)
	if n := k.Purge(); n != 3 {
		t.Fatalf("purge of stale values: removed %d, want 3", n)
	}
	if got := k.Current().Len(); got != 0 {
		t.Fatalf("after purge: %d values remain", got)
	}
}

func TestApplyOverrides(t *testing.T) {
	k := newKeeper(series.Limit[types.Observation](10))
	for _, v := range []float64{10, 20} {
		k.Put("s", obs(v)) //nolint:errcheck
	}

	// Compiled policy has no threshold; an override installs one.
	k.ApplyOverrides(series.Meta{"state": map[string]any{"s": map[string]any{"threshold": 0.0}}})

	accepted, err := k.Put("s", obs(100))
	if err != nil {
		t.Fatal(err)
	}
	if accepted {
		t.Error("override threshold 0 should reject an out-of-spread value")
	}

	// Clearing the override block restores the compiled policy.
	k.ApplyOverrides(series.Meta{})
	accepted, _ = k.Put("s", obs(100))
	if !accepted {
		t.Error("removing the override should re-admit out-of-spread values")
	}
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	k := newKeeper(series.Limit[types.Observation](5))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			k.Put("s", obs(float64(i))) //nolint:errcheck
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			c := k.Current()
			if c.Len() > 5 {
				t.Errorf("snapshot exceeds limit: %d", c.Len())
				return
			}
			_ = k.Stats()
		}
	}()
	wg.Wait()
}
