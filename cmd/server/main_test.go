package main

import (
	"errors"
	"testing"
	"time"

	"founders-circle/internal/common/logger"

	"github.com/stretchr/testify/assert"
)

func TestRetryWithBackoff(t *testing.T) {
	log := logger.NewNoOpLogger()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(func() error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		}, 5, time.Millisecond, log, "test op")

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(func() error {
			calls++
			return errors.New("connection refused")
		}, 2, time.Millisecond, log, "test op")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "test op failed after 2 attempts")
		assert.Equal(t, 2, calls)
	})
}
