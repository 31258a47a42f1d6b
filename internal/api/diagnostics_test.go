package api

import (
	"testing"

	"github.com/cairnstack/cairn/internal/keeper"
)

func keys(hints []DiagnosticHint) []string {
	out := make([]string, len(hints))
	for i, h := range hints {
		out[i] = h.Key
	}
	return out
}

func TestComputeDiagnostics(t *testing.T) {
	cases := []struct {
		name      string
		st        keeper.Stat
		wantKeys  []string
		wantLevel string // level of the first hint
	}{
		{
			name:      "untouched series warms up",
			st:        keeper.Stat{Series: "cpu"},
			wantKeys:  []string{"warming_up"},
			wantLevel: "info",
		},
		{
			name:      "all offers rejected",
			st:        keeper.Stat{Series: "cpu", Rejected: 7},
			wantKeys:  []string{"nothing_admitted"},
			wantLevel: "critical",
		},
		{
			name:      "admitted then purged empty",
			st:        keeper.Stat{Series: "cpu", Admitted: 4},
			wantKeys:  []string{"purged_empty"},
			wantLevel: "warning",
		},
		{
			name:      "moderate reject share warns",
			st:        keeper.Stat{Series: "cpu", Fill: 3, Min: 1, Max: 9, Spread: 8, Admitted: 8, Rejected: 2},
			wantKeys:  []string{"reject_share"},
			wantLevel: "warning",
		},
		{
			name:      "majority rejected is critical",
			st:        keeper.Stat{Series: "cpu", Fill: 2, Min: 1, Max: 9, Spread: 8, Admitted: 4, Rejected: 6},
			wantKeys:  []string{"reject_share"},
			wantLevel: "critical",
		},
		{
			name:      "flat series",
			st:        keeper.Stat{Series: "cpu", Fill: 3, Min: 5, Max: 5, Admitted: 3},
			wantKeys:  []string{"flat_series"},
			wantLevel: "info",
		},
		{
			name:      "healthy",
			st:        keeper.Stat{Series: "cpu", Fill: 4, Min: 1, Max: 9, Spread: 8, Admitted: 4},
			wantKeys:  []string{"healthy"},
			wantLevel: "ok",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hints := computeDiagnostics(tc.st)
			got := keys(hints)
			if len(got) != len(tc.wantKeys) {
				t.Fatalf("hints: got %v, want %v", got, tc.wantKeys)
			}
			for i := range got {
				if got[i] != tc.wantKeys[i] {
					t.Fatalf("hints: got %v, want %v", got, tc.wantKeys)
				}
			}
			if hints[0].Level != tc.wantLevel {
				t.Errorf("level: got %q, want %q", hints[0].Level, tc.wantLevel)
			}
		})
	}
}

func TestComputeDiagnostics_RejectShareThenFlat(t *testing.T) {
	st := keeper.Stat{Series: "cpu", Fill: 3, Min: 5, Max: 5, Admitted: 3, Rejected: 3}
	hints := computeDiagnostics(st)
	got := keys(hints)
	want := []string{"reject_share", "flat_series"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("hints: got %v, want %v", got, want)
	}
}
