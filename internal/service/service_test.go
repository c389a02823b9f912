package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinema-go/internal/config"
	"cinema-go/internal/infra/kafka"
	"cinema-go/internal/model"
	"cinema-go/internal/repository"
)

const (
	userA  int64 = 1
	userB  int64 = 2
	userC  int64 = 3
	movie1 int64 = 10
	movie2 int64 = 20
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*kafka.CommentEvent
	err    error
}

func (p *recordingPublisher) PublishCommentEvent(_ context.Context, ev *kafka.CommentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	store    *repository.MemoryCommentStore
	clock    *fakeClock
	pub      *recordingPublisher
	comments *CommentService
	votes    *VoteService
	queries  *CommentQueryService
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repository.NewMemoryCommentStore()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store.SetClock(clock.Now)

	avatar := "https://img.example.com/a.png"
	store.AddUser(model.User{ID: userA, UserName: "alice", Avatar: &avatar})
	store.AddUser(model.User{ID: userB, UserName: "bob"})
	store.AddUser(model.User{ID: userC, UserName: "carol"})
	store.AddMovie(model.Movie{ID: movie1, Title: "Heat"})
	store.AddMovie(model.Movie{ID: movie2, Title: "Ronin"})

	cfg := config.DefaultCommentConfig()
	pub := &recordingPublisher{}
	return &fixture{
		store:    store,
		clock:    clock,
		pub:      pub,
		comments: NewCommentService(store, NewSpamService(store, cfg), pub),
		votes:    NewVoteService(store, pub),
		queries:  NewCommentQueryService(store, cfg),
	}
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

// failingStore 所有读操作返回错误，用于验证降级
type failingStore struct {
	repository.CommentStore
}

var errStoreDown = errors.New("connection refused")

func (failingStore) FindByMovieID(context.Context, int64) ([]model.Comment, error) {
	return nil, errStoreDown
}

func (failingStore) CountByMovieID(context.Context, int64) (int64, error) {
	return 0, errStoreDown
}

func (failingStore) FindRecent(context.Context, int) ([]model.Comment, error) {
	return nil, errStoreDown
}

func (failingStore) Create(context.Context, *model.Comment) (*model.Comment, error) {
	return nil, errStoreDown
}
