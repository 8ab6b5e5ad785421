package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_FiresDueTimersInOrder(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	var fired []string
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	late := c.AfterFunc(time.Minute, func() { fired = append(fired, "late") })

	c.Advance(1999 * time.Millisecond)
	assert.Equal(t, []string{"a"}, fired)

	c.Advance(time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, 1, c.Pending())

	assert.True(t, late.Stop())
	assert.False(t, late.Stop())
	c.Advance(time.Hour)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, start.Add(time.Hour+2*time.Second), c.Now())
}

func TestFakeClock_TimerArmedFromCallbackFires(t *testing.T) {
	c := NewFakeClock(time.Unix(0, 0))
	count := 0
	var rearm func()
	rearm = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Second, rearm)
		}
	}
	c.AfterFunc(time.Second, rearm)

	for i := 0; i < 5; i++ {
		c.Advance(time.Second)
	}
	assert.Equal(t, 3, count)
	assert.Equal(t, 0, c.Pending())
}
