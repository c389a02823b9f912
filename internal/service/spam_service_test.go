package service

import (
	"context"
	"testing"
	"time"

	"cinema-go/internal/config"
	"cinema-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedComment(t *testing.T, f *fixture, userID int64, content string) {
	t.Helper()
	_, err := f.store.Create(context.Background(), &model.Comment{UserID: userID, MovieID: movie1, Content: content})
	require.NoError(t, err)
}

func TestSpam_RateLimitThreshold(t *testing.T) {
	f := newFixture(t)
	spam := NewSpamService(f.store, config.DefaultCommentConfig())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		seedComment(t, f, userA, string(rune('a'+i)))
	}
	res, err := spam.CheckRateLimit(ctx, userA)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Zero(t, res.WaitTime)

	seedComment(t, f, userA, "e")
	res, err = spam.CheckRateLimit(ctx, userA)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Minute, res.WaitTime)
}

func TestSpam_CustomWindow(t *testing.T) {
	f := newFixture(t)
	spam := NewSpamService(f.store, config.CommentConfig{
		RateLimitWindowMinutes: 3,
		RateLimitMax:           2,
		DuplicateWindowMinutes: 1,
	})
	ctx := context.Background()

	seedComment(t, f, userA, "one")
	f.clock.Advance(2 * time.Minute)
	seedComment(t, f, userA, "two")

	res, err := spam.CheckRateLimit(ctx, userA)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 3*time.Minute, res.WaitTime)

	dup, err := spam.CheckDuplicate(ctx, userA, "one")
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = spam.CheckDuplicate(ctx, userA, "two")
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestSpam_DuplicateIsExactMatch(t *testing.T) {
	f := newFixture(t)
	spam := NewSpamService(f.store, config.DefaultCommentConfig())
	ctx := context.Background()

	seedComment(t, f, userA, "Hello")

	dup, err := spam.CheckDuplicate(ctx, userA, "hello")
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = spam.CheckDuplicate(ctx, userB, "Hello")
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = spam.CheckDuplicate(ctx, userA, "Hello")
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestSpam_ZeroConfigFallsBackToDefaults(t *testing.T) {
	spam := NewSpamService(nil, config.CommentConfig{})
	assert.Equal(t, time.Minute, spam.rateWindow)
	assert.Equal(t, int64(5), spam.rateMax)
	assert.Equal(t, 5*time.Minute, spam.duplicateWindow)
}
