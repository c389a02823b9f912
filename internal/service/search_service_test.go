package service

import (
	"context"
	"errors"
	"testing"

	"cinema-go/internal/api/dto"
	infraES "cinema-go/internal/infra/elasticsearch"
	"cinema-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	hits      []infraES.CommentHit
	total     int64
	searchErr error

	synced  []int64
	deleted []int64
	bulk    int
}

func (f *fakeIndex) Search(_ context.Context, _ infraES.CommentSearchQuery) ([]infraES.CommentHit, int64, error) {
	return f.hits, f.total, f.searchErr
}

func (f *fakeIndex) Sync(_ context.Context, c *model.Comment) error {
	f.synced = append(f.synced, c.ID)
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, ids []int64) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeIndex) BulkSync(_ context.Context, comments []model.Comment) (int, int, error) {
	f.bulk += len(comments)
	return len(comments), 0, nil
}

func TestSearchComments_UsesIndexAndSkipsStaleHits(t *testing.T) {
	f := newFixture(t)
	c := createComment(t, f, userA, "a heist classic")

	idx := &fakeIndex{
		hits: []infraES.CommentHit{
			{ID: c.ID, Highlight: map[string][]string{"content": {"a <em>heist</em> classic"}}},
			{ID: 9999},
		},
		total: 2,
	}
	svc := NewSearchService(f.store, f.store, idx)

	data, err := svc.SearchComments(context.Background(), &dto.SearchCommentRequest{Q: "heist"})
	require.NoError(t, err)

	assert.Equal(t, SearchSourceES, data.Source)
	assert.Equal(t, 1, data.Page)
	assert.Equal(t, 20, data.PageSize)
	require.Len(t, data.Comments, 1)
	assert.Equal(t, c.ID, data.Comments[0].ID)
	assert.NotEmpty(t, data.Comments[0].Highlight["content"])
}

func TestSearchComments_FallsBackToDatabase(t *testing.T) {
	f := newFixture(t)
	createComment(t, f, userA, "The HEIST scene")
	createComment(t, f, userB, "boring")
	movie := movie1

	idx := &fakeIndex{searchErr: errors.New("cluster red")}
	svc := NewSearchService(f.store, f.store, idx)

	data, err := svc.SearchComments(context.Background(), &dto.SearchCommentRequest{Q: " heist ", MovieID: &movie, PageSize: 5})
	require.NoError(t, err)

	assert.Equal(t, SearchSourceDB, data.Source)
	assert.Equal(t, int64(1), data.Total)
	assert.Equal(t, int64(1), data.TotalPages)
	require.Len(t, data.Comments, 1)
	assert.Equal(t, "The HEIST scene", data.Comments[0].Content)
}

func TestSearchComments_WithoutIndex(t *testing.T) {
	f := newFixture(t)
	createComment(t, f, userA, "anything")

	svc := NewSearchService(f.store, f.store, nil)
	data, err := svc.SearchComments(context.Background(), &dto.SearchCommentRequest{})
	require.NoError(t, err)
	assert.Equal(t, SearchSourceDB, data.Source)
	assert.Len(t, data.Comments, 1)
}

func TestSyncCommentToES(t *testing.T) {
	f := newFixture(t)
	c := createComment(t, f, userA, "index me")
	idx := &fakeIndex{}
	svc := NewSearchService(f.store, f.store, idx)
	ctx := context.Background()

	require.NoError(t, svc.SyncCommentToES(ctx, c.ID))
	assert.Equal(t, []int64{c.ID}, idx.synced)

	require.NoError(t, svc.SyncCommentToES(ctx, 777))
	assert.Equal(t, []int64{777}, idx.deleted)
}

func TestSyncAllCommentsToES(t *testing.T) {
	f := newFixture(t)
	createComment(t, f, userA, "one")
	createComment(t, f, userB, "two")
	idx := &fakeIndex{}
	svc := NewSearchService(f.store, f.store, idx)

	ok, failed, err := svc.SyncAllCommentsToES(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ok)
	assert.Zero(t, failed)
	assert.Equal(t, 2, idx.bulk)
}
