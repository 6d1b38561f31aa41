package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()
	require.NoError(t, policy.Validate())
	assert.Len(t, policy.Cells(), 35)

	assert.True(t, policy.CanExtend(9))
	assert.True(t, policy.CanExtend(10))
	assert.False(t, policy.CanExtend(11))
	assert.True(t, policy.CanExtend(13))
	assert.True(t, policy.CanExtend(15))
	assert.False(t, policy.CanExtend(16))
	assert.False(t, policy.CanExtend(12))
}

func TestPolicyValidate(t *testing.T) {
	cases := map[string]func(p *Policy){
		"zero capacity":    func(p *Policy) { p.RoomCapacity = 0 },
		"zero daily":       func(p *Policy) { p.MaxDailyHours = 0 },
		"zero consecutive": func(p *Policy) { p.MaxConsecutiveHours = -1 },
		"no weekdays":      func(p *Policy) { p.Weekdays = nil },
		"duplicate day":    func(p *Policy) { p.Weekdays = []time.Weekday{time.Monday, time.Monday} },
		"no slots":         func(p *Policy) { p.Slots = nil },
		"unordered slots":  func(p *Policy) { p.Slots = []int{10, 9} },
		"hour out of day":  func(p *Policy) { p.Slots = []int{9, 24} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			policy := DefaultPolicy()
			mutate(&policy)
			assert.Error(t, policy.Validate())
		})
	}
}

func TestParsePolicyOverridesDefaults(t *testing.T) {
	policy, err := ParsePolicy([]byte(`
roomCapacity: 25
maxDailyHours: 5
weekdays: [friday, Monday, WEDNESDAY]
slots: [8, 9, 10, 14]
`))
	require.NoError(t, err)
	assert.Equal(t, 25, policy.RoomCapacity)
	assert.Equal(t, 5, policy.MaxDailyHours)
	assert.Equal(t, DefaultMaxConsecutiveHours, policy.MaxConsecutiveHours)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, policy.Weekdays)
	assert.Equal(t, []int{8, 9, 10, 14}, policy.Slots)
	assert.False(t, policy.CanExtend(10))
}

func TestParsePolicyRejectsBadInput(t *testing.T) {
	_, err := ParsePolicy([]byte("weekdays: [funday]"))
	assert.ErrorContains(t, err, "funday")

	_, err = ParsePolicy([]byte("slots: [10, 9]"))
	assert.ErrorContains(t, err, "invalid policy")

	_, err = ParsePolicy([]byte("slots: {"))
	assert.Error(t, err)
}

func TestLoadPolicy(t *testing.T) {
	policy, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), policy)

	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxConsecutiveHours: 3\n"), 0o600))
	policy, err = LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 3, policy.MaxConsecutiveHours)

	_, err = LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
