package autolock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_Coalesces(t *testing.T) {
	var armed []time.Duration
	fired := 0
	timer := NewTimer(func(d time.Duration) { armed = append(armed, d) }, func() { fired++ })

	assert.True(t, timer.Schedule(300*time.Millisecond))
	for i := 0; i < 10; i++ {
		assert.False(t, timer.Schedule(time.Second))
	}
	assert.Equal(t, []time.Duration{300 * time.Millisecond}, armed)
	assert.True(t, timer.Pending())

	timer.Fire()
	assert.Equal(t, 1, fired)
	assert.False(t, timer.Pending())

	assert.True(t, timer.Schedule(time.Second))
	assert.Len(t, armed, 2)
}

func TestTimer_FireClearsPendingBeforeCallback(t *testing.T) {
	var timer *Timer
	rearmed := false
	timer = NewTimer(func(time.Duration) {}, func() {
		rearmed = timer.Schedule(time.Millisecond)
	})
	timer.Schedule(time.Millisecond)
	timer.Fire()
	assert.True(t, rearmed, "callback should be able to arm a new timeout")
	assert.True(t, timer.Pending())
}
