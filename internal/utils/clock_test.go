package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOf(t *testing.T) {
	stockholm, err := time.LoadLocation("Europe/Stockholm")
	assert.NoError(t, err)

	t.Run("should keep the local calendar date", func(t *testing.T) {
		// given
		lateEvening := time.Date(2025, time.March, 14, 23, 30, 0, 0, stockholm)

		// when
		date := DateOf(lateEvening)

		// then
		assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), date)
	})

	t.Run("should read today from the clock", func(t *testing.T) {
		// given
		clock := &MockClock{FixedNow: time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)}

		// when
		today := Today(clock)

		// then
		assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), today)
	})
}
