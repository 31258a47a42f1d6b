package alerts

import (
	"strconv"
	"strings"

	"github.com/cairnstack/cairn/internal/keeper"
)

// evalCondition evaluates a rule condition string against one series' stats.
//
// Supported expressions (field operator value):
//
//	rejects > 10
//	fill < 3
//	head > 95
//	spread > 40
//	min < 0.5
//	max >= 100
//	admitted == 0
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is
// unknown, and never fires head/min/max/spread rules on an empty series.
func evalCondition(cond string, st keeper.Stat) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}

	v, ok := numericField(field, st)
	if !ok {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// numericField maps a field name to its value in the stats entry.
// The second return is false when the field does not apply (unknown name, or
// a value-derived field on an empty series).
func numericField(field string, st keeper.Stat) (float64, bool) {
	switch field {
	case "rejects":
		return float64(st.Rejected), true
	case "admitted":
		return float64(st.Admitted), true
	case "fill":
		return float64(st.Fill), true
	case "head":
		return st.Head, st.HasHead
	case "min":
		return st.Min, st.Fill > 0
	case "max":
		return st.Max, st.Fill > 0
	case "spread":
		return st.Spread, st.Fill > 0
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
