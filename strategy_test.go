package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	cases := []struct {
		spec Spec
		want Strategy
	}{
		{Spec{}, Once},
		{Spec{InitialDelay: time.Second}, Once},
		{Spec{Delay: -time.Second}, Once},
		{Spec{Delay: time.Second}, FixedDelay},
		{Spec{Rate: time.Second}, FixedRate},
		{Spec{Rate: time.Second, Delay: time.Second}, FixedRate},
		{Spec{MinuteOfHour: Some(0), Rate: time.Second}, Hourly},
		{Spec{MinuteOfHour: Some(60), Rate: time.Second}, FixedRate},
		{Spec{MinuteOfHour: Some(-1)}, Once},
		{Spec{HourOfDay: Some(23)}, Daily},
		{Spec{HourOfDay: Some(-1), MinuteOfHour: Some(5)}, Hourly},
		{Spec{HourOfDay: Some(0), MinuteOfHour: Some(5)}, Daily},
		{Spec{DayOfWeek: Some(time.Sunday)}, Weekly},
		{Spec{DayOfWeek: Some(time.Friday), HourOfDay: Some(3), Rate: time.Second}, Weekly},
		{Spec{DayOfWeek: Some(time.Weekday(9))}, Once},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Select(tc.spec), "%+v", tc.spec)
	}
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "once", Once.String())
	assert.Equal(t, "fixed-delay", FixedDelay.String())
	assert.Equal(t, "fixed-rate", FixedRate.String())
	assert.Equal(t, "hourly", Hourly.String())
	assert.Equal(t, "daily", Daily.String())
	assert.Equal(t, "weekly", Weekly.String())

	assert.True(t, Weekly.Calendar())
	assert.False(t, FixedRate.Calendar())
}

func TestNewPlan(t *testing.T) {
	now := date(3, 10, 15, 0)

	assert.Equal(t,
		Plan{Strategy: FixedRate, InitialDelay: 0, Period: 500 * time.Millisecond},
		NewPlan(now, Spec{Rate: 500 * time.Millisecond}))

	assert.Equal(t,
		Plan{Strategy: FixedDelay, InitialDelay: 2 * time.Second, Period: time.Second},
		NewPlan(now, Spec{Delay: time.Second, InitialDelay: 2 * time.Second}))

	assert.Equal(t,
		Plan{Strategy: Once, InitialDelay: 0},
		NewPlan(now, Spec{InitialDelay: -time.Second}))

	assert.Equal(t,
		Plan{Strategy: Once, InitialDelay: 0},
		NewPlan(now, Spec{InitialDelay: 5 * time.Second}))

	assert.Equal(t,
		Plan{Strategy: Once, InitialDelay: 0},
		NewPlan(now, Spec{Delay: -time.Second}))

	assert.Equal(t,
		Plan{Strategy: Hourly, InitialDelay: 15 * time.Minute, Period: time.Hour},
		NewPlan(now, Spec{MinuteOfHour: Some(30), Rate: time.Second}))
}

func TestPlan_Next(t *testing.T) {
	now := date(3, 10, 15, 0)

	assert.Equal(t, now.Add(time.Hour), Plan{Strategy: Hourly, Period: time.Hour}.Next(now))
	assert.Equal(t, now.Add(time.Second), Plan{Strategy: FixedDelay, Period: time.Second}.Next(now))
	assert.True(t, Plan{Strategy: Once}.Next(now).IsZero())
}

func TestOptional(t *testing.T) {
	var unset Optional[int]
	_, ok := unset.Get()
	assert.False(t, ok)
	assert.False(t, unset.IsSet())

	v, ok := Some(0).Get()
	assert.True(t, ok)
	assert.Equal(t, 0, v)
}
