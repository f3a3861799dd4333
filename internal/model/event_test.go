package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDurationDays(t *testing.T) {
	t.Run("single day counts as one", func(t *testing.T) {
		d := day(2026, 9, 7)
		assert.Equal(t, 1, DurationDays(d, d))
	})

	t.Run("inclusive of both endpoints", func(t *testing.T) {
		assert.Equal(t, 6, DurationDays(day(2026, 9, 7), day(2026, 9, 12)))
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		start := time.Date(2026, 9, 7, 23, 30, 0, 0, time.UTC)
		end := time.Date(2026, 9, 8, 0, 15, 0, 0, time.UTC)
		assert.Equal(t, 2, DurationDays(start, end))
	})

	t.Run("spans a month boundary", func(t *testing.T) {
		assert.Equal(t, 4, DurationDays(day(2026, 8, 30), day(2026, 9, 2)))
	})
}

func TestEventWindow(t *testing.T) {
	ev := NewCalendarEvent("e1", "c1", "Install")
	assert.False(t, ev.Scheduled())

	ev.SetWindow(day(2026, 9, 7), day(2026, 9, 9))
	assert.True(t, ev.Scheduled())
	assert.Equal(t, 3, ev.Duration)
	assert.True(t, ev.NeedsSync)

	ev.ClearWindow()
	assert.False(t, ev.Scheduled())
	assert.Nil(t, ev.StartDate)
	assert.Nil(t, ev.EndDate)
	assert.Equal(t, 0, ev.Duration)
}

func TestNewCalendarEventDefaults(t *testing.T) {
	ev := NewCalendarEvent("e1", "c1", "Install")
	assert.Equal(t, "#4ECDC4", ev.Color)
	assert.True(t, ev.NeedsSync)
	assert.False(t, ev.EverSynced())
}
