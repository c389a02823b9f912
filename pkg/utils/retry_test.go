package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryOptions{
	MaxElapsedTime:  time.Second,
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
	MaxRetries:      3,
}

func TestWithRetry_EventuallySucceeds(t *testing.T) {
	attempts := 0
	got, err := WithRetry(context.Background(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, fastRetry)

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, attempts)
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), func() error {
		attempts++
		return errors.New("still down")
	}, fastRetry)

	assert.Error(t, err)
	assert.Equal(t, 4, attempts)
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	attempts := 0
	boom := errors.New("bad request")
	err := Retry(context.Background(), func() error {
		attempts++
		return Permanent(boom)
	}, fastRetry)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}
