package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	c := NewFake(epoch)
	var fired []string

	c.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "late") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "early") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "early-second") })

	c.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"early", "early-second"}, fired)
	assert.Equal(t, 1, c.Pending())

	c.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"early", "early-second", "late"}, fired)
	assert.Equal(t, epoch.Add(300*time.Millisecond), c.Now())
}

func TestFakeNowDuringCallbackIsDeadline(t *testing.T) {
	c := NewFake(epoch)
	var at time.Time
	c.AfterFunc(250*time.Millisecond, func() { at = c.Now() })

	c.Advance(time.Second)
	assert.Equal(t, epoch.Add(250*time.Millisecond), at)
	assert.Equal(t, epoch.Add(time.Second), c.Now())
}

func TestFakeStop(t *testing.T) {
	c := NewFake(epoch)
	called := false
	timer := c.AfterFunc(time.Second, func() { called = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())
	c.Advance(2 * time.Second)

	assert.False(t, called)
	assert.Zero(t, c.Pending())
}

func TestFakeChainedTimersFireWithinWindow(t *testing.T) {
	c := NewFake(epoch)
	count := 0
	var schedule func()
	schedule = func() {
		c.AfterFunc(100*time.Millisecond, func() {
			count++
			if count < 5 {
				schedule()
			}
		})
	}
	schedule()

	c.Advance(350 * time.Millisecond)
	assert.Equal(t, 3, count)

	c.Advance(time.Second)
	assert.Equal(t, 5, count)
	assert.Zero(t, c.Pending())
}

func TestRealClockStop(t *testing.T) {
	timer := Real().AfterFunc(time.Hour, func() {})
	assert.True(t, timer.Stop())
}
