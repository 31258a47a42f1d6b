package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestSchemaDrift(t *testing.T) {
	base := &Config{Series: []SeriesConfig{
		{Name: "cpu", Limit: 5, Order: "stack"},
		{Name: "mem", Limit: 3, Order: "asc", Threshold: fptr(0.5)},
	}}

	t.Run("identical", func(t *testing.T) {
		other := &Config{Series: []SeriesConfig{
			{Name: "cpu", Limit: 5, Order: "stack"},
			{Name: "mem", Limit: 3, Order: "asc", Threshold: fptr(0.5)},
		}}
		assert.Empty(t, schemaDrift(base, other))
	})

	t.Run("changed limit", func(t *testing.T) {
		other := &Config{Series: []SeriesConfig{
			{Name: "cpu", Limit: 9, Order: "stack"},
			{Name: "mem", Limit: 3, Order: "asc", Threshold: fptr(0.5)},
		}}
		assert.Equal(t, []string{"cpu"}, schemaDrift(base, other))
	})

	t.Run("changed threshold", func(t *testing.T) {
		other := &Config{Series: []SeriesConfig{
			{Name: "cpu", Limit: 5, Order: "stack"},
			{Name: "mem", Limit: 3, Order: "asc", Threshold: fptr(0.9)},
		}}
		assert.Equal(t, []string{"mem"}, schemaDrift(base, other))
	})

	t.Run("added and removed", func(t *testing.T) {
		other := &Config{Series: []SeriesConfig{
			{Name: "cpu", Limit: 5, Order: "stack"},
			{Name: "disk", Limit: 2, Order: "desc"},
		}}
		assert.Equal(t, []string{"disk", "mem"}, schemaDrift(base, other))
	})
}

func TestChangedOverrides(t *testing.T) {
	base := &Config{Overrides: map[string]map[string]any{
		"cpu": {"threshold": 0.5},
	}}

	t.Run("identical", func(t *testing.T) {
		other := &Config{Overrides: map[string]map[string]any{
			"cpu": {"threshold": 0.5},
		}}
		assert.Empty(t, changedOverrides(base, other))
	})

	t.Run("changed value", func(t *testing.T) {
		other := &Config{Overrides: map[string]map[string]any{
			"cpu": {"threshold": 0.8},
		}}
		assert.Equal(t, []string{"cpu"}, changedOverrides(base, other))
	})

	t.Run("added and dropped", func(t *testing.T) {
		other := &Config{Overrides: map[string]map[string]any{
			"mem": {"limit": 2},
		}}
		assert.Equal(t, []string{"cpu", "mem"}, changedOverrides(base, other))
	})
}
