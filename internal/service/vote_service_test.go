package service

import (
	"context"
	"sync"
	"testing"

	"cinema-go/internal/api/dto"
	"cinema-go/internal/model"
	"cinema-go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createComment(t *testing.T, f *fixture, userID int64, content string) *dto.CommentInfo {
	t.Helper()
	c, err := f.comments.Create(context.Background(), userID, &dto.CommentCreateRequest{MovieID: movie1, Content: content})
	require.NoError(t, err)
	return c
}

func assertCountsMatchRows(t *testing.T, f *fixture, commentID int64) {
	t.Helper()
	c, err := f.store.FindByID(context.Background(), commentID)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, f.store.CountVotes(commentID, model.VoteUp), c.Upvotes)
	assert.Equal(t, f.store.CountVotes(commentID, model.VoteDown), c.Downvotes)
}

func TestVote_ToggleSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := createComment(t, f, userA, "vote on me")

	got, err := f.votes.Vote(ctx, c.ID, userB, model.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Upvotes)
	assert.Equal(t, int64(0), got.Downvotes)

	got, err = f.votes.Vote(ctx, c.ID, userB, model.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Upvotes)
	assert.Equal(t, int64(0), got.Downvotes)

	got, err = f.votes.Vote(ctx, c.ID, userB, model.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Upvotes)
	assert.Equal(t, int64(1), got.Downvotes)

	assertCountsMatchRows(t, f, c.ID)
}

func TestVote_SwitchReplacesExistingVote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := createComment(t, f, userA, "switch")

	_, err := f.votes.Vote(ctx, c.ID, userB, model.VoteDown)
	require.NoError(t, err)
	got, err := f.votes.Vote(ctx, c.ID, userB, model.VoteUp)
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.Upvotes)
	assert.Equal(t, int64(0), got.Downvotes)

	v, err := f.store.FindVote(ctx, userB, c.ID)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, model.VoteUp, v.VoteType)
}

func TestVote_MultipleVoters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := createComment(t, f, userA, "popular")

	_, err := f.votes.Vote(ctx, c.ID, userB, model.VoteUp)
	require.NoError(t, err)
	got, err := f.votes.Vote(ctx, c.ID, userC, model.VoteDown)
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.Upvotes)
	assert.Equal(t, int64(1), got.Downvotes)
	assertCountsMatchRows(t, f, c.ID)
}

func TestVote_SelfVoteRejected(t *testing.T) {
	f := newFixture(t)
	c := createComment(t, f, userA, "my own")

	_, err := f.votes.Vote(context.Background(), c.ID, userA, model.VoteUp)
	assert.ErrorIs(t, err, ErrSelfVote)
	assert.Zero(t, f.store.CountVotes(c.ID, model.VoteUp))
}

func TestVote_MissingComment(t *testing.T) {
	f := newFixture(t)

	_, err := f.votes.Vote(context.Background(), 404, userB, model.VoteUp)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestVote_InvalidType(t *testing.T) {
	f := newFixture(t)
	c := createComment(t, f, userA, "x")

	_, err := f.votes.Vote(context.Background(), c.ID, userB, model.VoteType("SIDEWAYS"))
	assert.ErrorIs(t, err, ErrInvalidVoteType)
}

func TestVote_ConcurrentSameUserKeepsSingleRow(t *testing.T) {
	f := newFixture(t)
	c := createComment(t, f, userA, "race")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.votes.Vote(context.Background(), c.ID, userB, model.VoteUp)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, f.store.CountVotes(c.ID, model.VoteUp), int64(1))
	assertCountsMatchRows(t, f, c.ID)
}

// racingStore 模拟并发请求抢先写入投票：CreateVote 前先插入一条同用户投票
type racingStore struct {
	*repository.MemoryCommentStore
	winner model.VoteType
}

func (s *racingStore) CreateVote(ctx context.Context, v *model.CommentVote) (*model.CommentVote, error) {
	_, err := s.MemoryCommentStore.CreateVote(ctx, &model.CommentVote{
		UserID: v.UserID, CommentID: v.CommentID, VoteType: s.winner,
	})
	if err != nil {
		return nil, err
	}
	return s.MemoryCommentStore.CreateVote(ctx, v)
}

func (s *racingStore) InTx(_ context.Context, fn func(store repository.CommentStore) error) error {
	return fn(s)
}

func TestVote_LostRaceIsNoop(t *testing.T) {
	f := newFixture(t)
	c := createComment(t, f, userA, "contested")

	racing := &racingStore{MemoryCommentStore: f.store, winner: model.VoteUp}
	svc := NewVoteService(racing, nil)

	got, err := svc.Vote(context.Background(), c.ID, userB, model.VoteDown)
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.Upvotes)
	assert.Equal(t, int64(0), got.Downvotes)
	assertCountsMatchRows(t, f, c.ID)
}
