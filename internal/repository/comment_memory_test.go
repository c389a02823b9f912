package repository

import (
	"context"
	"testing"
	"time"

	"cinema-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) (*MemoryCommentStore, *time.Time) {
	t.Helper()
	s := NewMemoryCommentStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })
	s.AddUser(model.User{ID: 1, UserName: "ann"})
	s.AddUser(model.User{ID: 2, UserName: "ben"})
	s.AddMovie(model.Movie{ID: 7, Title: "Arrival"})
	return s, &now
}

func mustCreate(t *testing.T, s *MemoryCommentStore, c model.Comment) *model.Comment {
	t.Helper()
	out, err := s.Create(context.Background(), &c)
	require.NoError(t, err)
	return out
}

func TestMemoryStore_CreateChecksReferences(t *testing.T) {
	s, _ := newMemoryStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &model.Comment{UserID: 99, MovieID: 7, Content: "x"})
	assert.ErrorIs(t, err, ErrReferenceViolation)

	_, err = s.Create(ctx, &model.Comment{UserID: 1, MovieID: 99, Content: "x"})
	assert.ErrorIs(t, err, ErrReferenceViolation)

	missing := int64(5)
	_, err = s.Create(ctx, &model.Comment{UserID: 1, MovieID: 7, ParentID: &missing, Content: "x"})
	assert.ErrorIs(t, err, ErrReferenceViolation)

	c := mustCreate(t, s, model.Comment{UserID: 1, MovieID: 7, Content: "ok"})
	assert.Equal(t, "ann", c.User.UserName)
	assert.Zero(t, c.Upvotes)
}

func TestMemoryStore_FindByIDIncludesOrderedReplies(t *testing.T) {
	s, now := newMemoryStore(t)
	ctx := context.Background()

	parent := mustCreate(t, s, model.Comment{UserID: 1, MovieID: 7, Content: "p"})
	*now = now.Add(time.Second)
	r1 := mustCreate(t, s, model.Comment{UserID: 2, MovieID: 7, ParentID: &parent.ID, Content: "r1"})
	*now = now.Add(time.Second)
	r2 := mustCreate(t, s, model.Comment{UserID: 1, MovieID: 7, ParentID: &parent.ID, Content: "r2"})

	got, err := s.FindByID(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, got.Replies, 2)
	assert.Equal(t, r1.ID, got.Replies[0].ID)
	assert.Equal(t, r2.ID, got.Replies[1].ID)
	assert.Equal(t, "ben", got.Replies[0].User.UserName)

	none, err := s.FindByID(ctx, 12345)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMemoryStore_VoteUniquenessAndRecount(t *testing.T) {
	s, _ := newMemoryStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, model.Comment{UserID: 1, MovieID: 7, Content: "c"})

	v, err := s.CreateVote(ctx, &model.CommentVote{UserID: 2, CommentID: c.ID, VoteType: model.VoteUp})
	require.NoError(t, err)

	_, err = s.CreateVote(ctx, &model.CommentVote{UserID: 2, CommentID: c.ID, VoteType: model.VoteDown})
	assert.ErrorIs(t, err, ErrDuplicateVote)

	require.NoError(t, s.UpdateVoteCounts(ctx, c.ID))
	got, err := s.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Upvotes)
	assert.Equal(t, int64(0), got.Downvotes)

	require.NoError(t, s.DeleteVote(ctx, v.ID))
	assert.ErrorIs(t, s.DeleteVote(ctx, v.ID), ErrNotFound)

	found, err := s.FindVote(ctx, 2, c.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestMemoryStore_UpdateVoteCountsKeepsUpdatedAt(t *testing.T) {
	s, now := newMemoryStore(t)
	ctx := context.Background()
	c := mustCreate(t, s, model.Comment{UserID: 1, MovieID: 7, Content: "c"})

	*now = now.Add(time.Hour)
	_, err := s.CreateVote(ctx, &model.CommentVote{UserID: 2, CommentID: c.ID, VoteType: model.VoteDown})
	require.NoError(t, err)
	require.NoError(t, s.UpdateVoteCounts(ctx, c.ID))

	got, err := s.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, int64(1), got.Downvotes)
}

func TestMemoryStore_DeleteCascades(t *testing.T) {
	s, _ := newMemoryStore(t)
	ctx := context.Background()

	parent := mustCreate(t, s, model.Comment{UserID: 1, MovieID: 7, Content: "p"})
	reply := mustCreate(t, s, model.Comment{UserID: 2, MovieID: 7, ParentID: &parent.ID, Content: "r"})
	_, err := s.CreateVote(ctx, &model.CommentVote{UserID: 1, CommentID: reply.ID, VoteType: model.VoteUp})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, parent.ID))
	assert.Equal(t, 0, s.CountComments())
	assert.Zero(t, s.CountVotes(reply.ID, model.VoteUp))
	assert.ErrorIs(t, s.Delete(ctx, parent.ID), ErrNotFound)
}

func TestMemoryStore_WindowQueries(t *testing.T) {
	s, now := newMemoryStore(t)
	ctx := context.Background()

	mustCreate(t, s, model.Comment{UserID: 1, MovieID: 7, Content: "early"})
	*now = now.Add(3 * time.Minute)
	mustCreate(t, s, model.Comment{UserID: 1, MovieID: 7, Content: "late"})

	n, err := s.CountUserCommentsInWindow(ctx, 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.CountUserCommentsInWindow(ctx, 1, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	dup, err := s.FindDuplicateComment(ctx, 1, "early", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, dup)

	dup, err = s.FindDuplicateComment(ctx, 1, "early", 5*time.Minute)
	require.NoError(t, err)
	assert.NotNil(t, dup)
}

func TestMemoryStore_UpdateAndRecent(t *testing.T) {
	s, now := newMemoryStore(t)
	ctx := context.Background()

	a := mustCreate(t, s, model.Comment{UserID: 1, MovieID: 7, Content: "a"})
	*now = now.Add(time.Second)
	b := mustCreate(t, s, model.Comment{UserID: 2, MovieID: 7, Content: "b"})

	content := "a2"
	updated, err := s.Update(ctx, a.ID, CommentUpdate{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "a2", updated.Content)

	_, err = s.Update(ctx, 999, CommentUpdate{Content: &content})
	assert.ErrorIs(t, err, ErrNotFound)

	recent, err := s.FindRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, b.ID, recent[0].ID)
}

func TestMemoryStore_SearchAndListForIndex(t *testing.T) {
	s, _ := newMemoryStore(t)
	ctx := context.Background()

	mustCreate(t, s, model.Comment{UserID: 1, MovieID: 7, Content: "Heptapod language"})
	mustCreate(t, s, model.Comment{UserID: 2, MovieID: 7, Content: "slow but good"})

	got, total, err := s.SearchContent(ctx, CommentSearchFilter{Query: "heptapod", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)

	got, total, err = s.SearchContent(ctx, CommentSearchFilter{Skip: 5, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Empty(t, got)

	batch, err := s.ListForIndex(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	rest, err := s.ListForIndex(ctx, batch[0].ID, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
