package api

import (
	"fmt"

	"github.com/cairnstack/cairn/internal/keeper"
)

// Reject-share levels for the reject_share hint.
const (
	rejectShareWarning  = 0.1
	rejectShareCritical = 0.5
)

// DiagnosticHint is one human-readable insight about a series' health.
// A dashboard displays these as chips on the series card; Detail is the
// full explanation shown on click.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label shown on the chip (≤ 5 words).
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
	// Value is an optional numeric value associated with this hint.
	Value *float64 `json:"value,omitempty"`
}

// computeDiagnostics derives diagnostic hints from a per-series stat.
// Hints are ordered: critical first, then warnings, then info.
func computeDiagnostics(st keeper.Stat) []DiagnosticHint {
	var hints []DiagnosticHint

	total := st.Admitted + st.Rejected

	// ── Empty series ─────────────────────────────────────────────────────────
	if st.Fill == 0 {
		switch {
		case total == 0:
			hints = append(hints, DiagnosticHint{
				Key:   "warming_up",
				Level: "info",
				Title: "Warming up",
				Detail: "No values have been offered to this series yet. " +
					"Stats appear after the first successful put — if a feed maps to " +
					"this series, the next poll cycle should fill it. No action needed.",
			})
		case st.Admitted == 0:
			v := float64(st.Rejected)
			hints = append(hints, DiagnosticHint{
				Key:   "nothing_admitted",
				Level: "critical",
				Title: "Nothing admitted",
				Detail: fmt.Sprintf(
					"Every value offered to this series was rejected (%d so far). "+
						"The validator bounds or the outlier threshold do not match what "+
						"the feed delivers. The error log at /api/v1/errors shows the "+
						"rejected values — compare them against the configured min/max.",
					st.Rejected),
				Value: &v,
			})
		default:
			hints = append(hints, DiagnosticHint{
				Key:   "purged_empty",
				Level: "warning",
				Title: "Purged empty",
				Detail: "This series admitted values in the past but holds none now — " +
					"they were removed by purge (max_age expiry or an explicit " +
					"POST /api/v1/purge). If the feed is still polling, fresh values " +
					"should reappear within one poll interval.",
			})
		}
		return hints // nothing below applies without retained values
	}

	// ── Rejection pressure ───────────────────────────────────────────────────
	if share := float64(st.Rejected) / float64(total); share >= rejectShareWarning {
		v := share
		level := "warning"
		if share >= rejectShareCritical {
			level = "critical"
		}
		hints = append(hints, DiagnosticHint{
			Key:   "reject_share",
			Level: level,
			Title: fmt.Sprintf("%.0f%% rejected", share*100),
			Detail: fmt.Sprintf(
				"%d of %d offered values were rejected (%.0f%%). "+
					"A growing share usually means the validator bounds or the outlier "+
					"threshold no longer fit what the feed delivers — or an upstream "+
					"source started emitting garbage. Inspect recent rejections at "+
					"/api/v1/errors to see which.",
				st.Rejected, total, share*100),
			Value: &v,
		})
	}

	// ── Flat series ──────────────────────────────────────────────────────────
	if st.Fill >= 2 && st.Spread == 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "flat_series",
			Level: "info",
			Title: "Flat series",
			Detail: fmt.Sprintf(
				"All %d retained values project to the same point, so the spread is "+
					"zero and the outlier band accepts everything. That can be legitimate "+
					"for a stable gauge, but a stuck upstream sensor looks exactly the "+
					"same — check whether the head value still changes over time.",
				st.Fill),
		})
	}

	// ── All clear ────────────────────────────────────────────────────────────
	if len(hints) == 0 {
		v := float64(st.Fill)
		hints = append(hints, DiagnosticHint{
			Key:   "healthy",
			Level: "ok",
			Title: "All clear",
			Detail: fmt.Sprintf(
				"This series holds %d values spanning [%.2f, %.2f] with no rejection "+
					"pressure. Keep an eye on the admission trend — a series that stops "+
					"admitting can indicate an upstream problem even when nothing is "+
					"being rejected.",
				st.Fill, st.Min, st.Max),
			Value: &v,
		})
	}

	return hints
}
