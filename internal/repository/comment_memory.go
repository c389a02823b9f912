package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cinema-go/internal/model"
)

// MemoryCommentStore 内存实现，用于本地开发和测试。
// 用户与电影需先通过 AddUser / AddMovie 注册，以模拟外键约束。
// InTx 不提供回滚，直接在当前存储上执行 fn。
type MemoryCommentStore struct {
	mu sync.RWMutex

	users    map[int64]model.User
	movies   map[int64]model.Movie
	comments map[int64]model.Comment
	votes    map[int64]model.CommentVote

	nextCommentID int64
	nextVoteID    int64
	now           func() time.Time
}

func NewMemoryCommentStore() *MemoryCommentStore {
	return &MemoryCommentStore{
		users:    make(map[int64]model.User),
		movies:   make(map[int64]model.Movie),
		comments: make(map[int64]model.Comment),
		votes:    make(map[int64]model.CommentVote),
		now:      time.Now,
	}
}

var (
	_ CommentStore    = (*MemoryCommentStore)(nil)
	_ CommentSearcher = (*MemoryCommentStore)(nil)
)

// SetClock 替换时间来源
func (s *MemoryCommentStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryCommentStore) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemoryCommentStore) AddMovie(m model.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies[m.ID] = m
}

// CountComments 当前评论行数
func (s *MemoryCommentStore) CountComments() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments)
}

// CountVotes 返回评论上指定类型的投票行数
func (s *MemoryCommentStore) CountVotes(commentID int64, voteType model.VoteType) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countVotesLocked(commentID, voteType)
}

func (s *MemoryCommentStore) countVotesLocked(commentID int64, voteType model.VoteType) int64 {
	var n int64
	for _, v := range s.votes {
		if v.CommentID == commentID && v.VoteType == voteType {
			n++
		}
	}
	return n
}

// withAuthor 附加作者展示信息
func (s *MemoryCommentStore) withAuthor(c model.Comment) model.Comment {
	c.User = s.users[c.UserID]
	c.Replies = nil
	return c
}

// withThread 附加作者和按时间升序排列的回复
func (s *MemoryCommentStore) withThread(c model.Comment) model.Comment {
	c = s.withAuthor(c)
	var replies []model.Comment
	for _, r := range s.comments {
		if r.ParentID != nil && *r.ParentID == c.ID {
			replies = append(replies, s.withAuthor(r))
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].ID < replies[j].ID
	})
	c.Replies = replies
	return c
}

func sortNewestFirst(comments []model.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
}

func (s *MemoryCommentStore) Create(_ context.Context, c *model.Comment) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[c.UserID]; !ok {
		return nil, ErrReferenceViolation
	}
	if _, ok := s.movies[c.MovieID]; !ok {
		return nil, ErrReferenceViolation
	}
	if c.ParentID != nil {
		if _, ok := s.comments[*c.ParentID]; !ok {
			return nil, ErrReferenceViolation
		}
	}

	s.nextCommentID++
	now := s.now()
	row := *c
	row.ID = s.nextCommentID
	row.Upvotes, row.Downvotes = 0, 0
	row.CreatedAt, row.UpdatedAt = now, now
	row.User, row.Replies = model.User{}, nil
	s.comments[row.ID] = row

	c.ID = row.ID
	out := s.withThread(row)
	return &out, nil
}

func (s *MemoryCommentStore) FindByID(_ context.Context, id int64) (*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, nil
	}
	out := s.withThread(c)
	return &out, nil
}

func (s *MemoryCommentStore) FindByMovieID(_ context.Context, movieID int64) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var roots []model.Comment
	for _, c := range s.comments {
		if c.MovieID == movieID && c.ParentID == nil {
			roots = append(roots, c)
		}
	}
	sortNewestFirst(roots)
	for i := range roots {
		roots[i] = s.withThread(roots[i])
	}
	return roots, nil
}

func (s *MemoryCommentStore) Update(_ context.Context, id int64, upd CommentUpdate) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Content == nil && upd.IsSpoiler == nil {
		out := s.withThread(c)
		return &out, nil
	}
	if upd.Content != nil {
		c.Content = *upd.Content
	}
	if upd.IsSpoiler != nil {
		c.IsSpoiler = *upd.IsSpoiler
	}
	c.UpdatedAt = s.now()
	s.comments[id] = c

	out := s.withThread(c)
	return &out, nil
}

func (s *MemoryCommentStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return ErrNotFound
	}

	doomed := map[int64]bool{id: true}
	for cid, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			doomed[cid] = true
		}
	}
	for vid, v := range s.votes {
		if doomed[v.CommentID] {
			delete(s.votes, vid)
		}
	}
	for cid := range doomed {
		delete(s.comments, cid)
	}
	return nil
}

func (s *MemoryCommentStore) CountByMovieID(_ context.Context, movieID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, c := range s.comments {
		if c.MovieID == movieID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryCommentStore) CreateVote(_ context.Context, v *model.CommentVote) (*model.CommentVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[v.UserID]; !ok {
		return nil, ErrReferenceViolation
	}
	if _, ok := s.comments[v.CommentID]; !ok {
		return nil, ErrReferenceViolation
	}
	for _, existing := range s.votes {
		if existing.UserID == v.UserID && existing.CommentID == v.CommentID {
			return nil, ErrDuplicateVote
		}
	}

	s.nextVoteID++
	row := *v
	row.ID = s.nextVoteID
	row.CreatedAt = s.now()
	s.votes[row.ID] = row

	*v = row
	return &row, nil
}

func (s *MemoryCommentStore) FindVote(_ context.Context, userID, commentID int64) (*model.CommentVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.votes {
		if v.UserID == userID && v.CommentID == commentID {
			out := v
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryCommentStore) DeleteVote(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.votes[id]; !ok {
		return ErrNotFound
	}
	delete(s.votes, id)
	return nil
}

func (s *MemoryCommentStore) UpdateVoteCounts(_ context.Context, commentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok {
		return ErrNotFound
	}
	c.Upvotes = s.countVotesLocked(commentID, model.VoteUp)
	c.Downvotes = s.countVotesLocked(commentID, model.VoteDown)
	s.comments[commentID] = c
	return nil
}

func (s *MemoryCommentStore) CountUserCommentsInWindow(_ context.Context, userID int64, window time.Duration) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := s.now().Add(-window)
	var n int64
	for _, c := range s.comments {
		if c.UserID == userID && !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryCommentStore) FindDuplicateComment(_ context.Context, userID int64, content string, window time.Duration) (*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := s.now().Add(-window)
	for _, c := range s.comments {
		if c.UserID == userID && c.Content == content && !c.CreatedAt.Before(since) {
			out := s.withAuthor(c)
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryCommentStore) FindRecent(_ context.Context, limit int) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]model.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		all = append(all, s.withAuthor(c))
	}
	sortNewestFirst(all)
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryCommentStore) InTx(_ context.Context, fn func(store CommentStore) error) error {
	return fn(s)
}

func (s *MemoryCommentStore) SearchContent(_ context.Context, filter CommentSearchFilter) ([]model.Comment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(filter.Query)
	var matched []model.Comment
	for _, c := range s.comments {
		if filter.MovieID != nil && c.MovieID != *filter.MovieID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Content), q) {
			continue
		}
		matched = append(matched, s.withAuthor(c))
	}
	sortNewestFirst(matched)

	total := int64(len(matched))
	if filter.Skip >= len(matched) {
		return []model.Comment{}, total, nil
	}
	matched = matched[filter.Skip:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *MemoryCommentStore) ListForIndex(_ context.Context, afterID int64, limit int) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Comment
	for _, c := range s.comments {
		if c.ID > afterID {
			out = append(out, s.withAuthor(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
