package repository

import (
	"context"
	"errors"
	"time"

	"cinema-go/internal/model"
)

var (
	// ErrNotFound 更新或删除的目标记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrReferenceViolation 外键约束失败：引用的电影、用户或父评论不存在
	ErrReferenceViolation = errors.New("referenced movie or user not found")
	// ErrDuplicateVote 违反 (user_id, comment_id) 唯一约束
	ErrDuplicateVote = errors.New("vote already exists for user and comment")
)

// CommentUpdate 评论可修改字段，nil 表示不修改
type CommentUpdate struct {
	Content   *string
	IsSpoiler *bool
}

// CommentStore 评论与投票的持久化契约。
//
// Find* 方法在记录不存在时返回 (nil, nil)。Delete 删除顶层评论时会在同一事务内
// 删除其全部回复及相关投票；删除回复只删除自身。UpdateVoteCounts 依据投票表重新
// 计数，不修改 updated_at。
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)
	FindByID(ctx context.Context, id int64) (*model.Comment, error)
	FindByMovieID(ctx context.Context, movieID int64) ([]model.Comment, error)
	Update(ctx context.Context, id int64, upd CommentUpdate) (*model.Comment, error)
	Delete(ctx context.Context, id int64) error
	CountByMovieID(ctx context.Context, movieID int64) (int64, error)

	CreateVote(ctx context.Context, v *model.CommentVote) (*model.CommentVote, error)
	FindVote(ctx context.Context, userID, commentID int64) (*model.CommentVote, error)
	DeleteVote(ctx context.Context, id int64) error
	UpdateVoteCounts(ctx context.Context, commentID int64) error

	CountUserCommentsInWindow(ctx context.Context, userID int64, window time.Duration) (int64, error)
	FindDuplicateComment(ctx context.Context, userID int64, content string, window time.Duration) (*model.Comment, error)
	FindRecent(ctx context.Context, limit int) ([]model.Comment, error)

	// InTx 在单个事务中执行 fn，fn 返回错误时回滚
	InTx(ctx context.Context, fn func(store CommentStore) error) error
}

// CommentSearchFilter 数据库兜底搜索条件
type CommentSearchFilter struct {
	Query   string
	MovieID *int64
	Skip    int
	Limit   int
}

// CommentSearcher 搜索与索引同步使用的查询
type CommentSearcher interface {
	SearchContent(ctx context.Context, filter CommentSearchFilter) ([]model.Comment, int64, error)
	ListForIndex(ctx context.Context, afterID int64, limit int) ([]model.Comment, error)
}
