package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"cinema-go/internal/api/dto"
	"cinema-go/internal/infra/kafka"
	"cinema-go/internal/model"
	"cinema-go/internal/repository"
	"cinema-go/pkg/logger"

	"go.uber.org/zap"
)

// EventPublisher 评论变更事件的发布端
type EventPublisher interface {
	PublishCommentEvent(ctx context.Context, ev *kafka.CommentEvent) error
}

const publishTimeout = 3 * time.Second

// publishEvent 写操作成功后发布事件，失败只记录日志
func publishEvent(ctx context.Context, pub EventPublisher, ev *kafka.CommentEvent) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := pub.PublishCommentEvent(ctx, ev); err != nil {
		logger.Warn("Publish comment event failed",
			zap.String("type", ev.Type),
			zap.Int64("comment_id", ev.CommentID),
			zap.Error(err),
		)
	}
}

type CommentService struct {
	store     repository.CommentStore
	spam      SpamOracle
	publisher EventPublisher
}

func NewCommentService(store repository.CommentStore, spam SpamOracle, publisher EventPublisher) *CommentService {
	return &CommentService{store: store, spam: spam, publisher: publisher}
}

// normalizeContent 去除首尾空白并校验长度（按字符计）
func normalizeContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(content)
	if n == 0 || n > model.MaxCommentLength {
		return "", ErrInvalidContent
	}
	return content, nil
}

// checkSpam 先检查频率再检查重复
func (s *CommentService) checkSpam(ctx context.Context, userID int64, content string) error {
	rl, err := s.spam.CheckRateLimit(ctx, userID)
	if err != nil {
		return err
	}
	if !rl.Allowed {
		return &RateLimitedError{WaitTime: rl.WaitTime}
	}

	dup, err := s.spam.CheckDuplicate(ctx, userID, content)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicateContent
	}
	return nil
}

func (s *CommentService) persist(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	created, err := s.store.Create(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrReferenceViolation) {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}
	return created, nil
}

// Create 发表评论
func (s *CommentService) Create(ctx context.Context, userID int64, req *dto.CommentCreateRequest) (*dto.CommentInfo, error) {
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.checkSpam(ctx, userID, content); err != nil {
		return nil, err
	}

	created, err := s.persist(ctx, &model.Comment{
		UserID:    userID,
		MovieID:   req.MovieID,
		Content:   content,
		IsSpoiler: req.IsSpoiler != nil && *req.IsSpoiler,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Comment created",
		zap.Int64("comment_id", created.ID),
		zap.Int64("movie_id", created.MovieID),
		zap.Int64("user_id", userID),
	)
	publishEvent(ctx, s.publisher, kafka.NewCommentEvent(kafka.EventCommentCreated, created.ID, created.MovieID, userID))

	return toCommentInfo(created), nil
}

// Reply 回复顶层评论，电影 ID 取自父评论
func (s *CommentService) Reply(ctx context.Context, userID, parentID int64, req *dto.CommentReplyRequest) (*dto.CommentInfo, error) {
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.checkSpam(ctx, userID, content); err != nil {
		return nil, err
	}

	parent, err := s.store.FindByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, ErrParentNotFound
	}
	if parent.IsReply() {
		return nil, ErrReplyToReply
	}

	pid := parent.ID
	created, err := s.persist(ctx, &model.Comment{
		UserID:    userID,
		MovieID:   parent.MovieID,
		ParentID:  &pid,
		Content:   content,
		IsSpoiler: req.IsSpoiler != nil && *req.IsSpoiler,
	})
	if err != nil {
		return nil, err
	}

	ev := kafka.NewCommentEvent(kafka.EventCommentCreated, created.ID, created.MovieID, userID)
	ev.ParentID = &pid
	publishEvent(ctx, s.publisher, ev)

	return toCommentInfo(created), nil
}

// loadOwned 读取评论并校验归属
func (s *CommentService) loadOwned(ctx context.Context, commentID, userID int64) (*model.Comment, error) {
	comment, err := s.store.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	if comment.UserID != userID {
		return nil, ErrCommentNoPermission
	}
	return comment, nil
}

// Update 更新评论内容或剧透标记，不重新做反垃圾检查
func (s *CommentService) Update(ctx context.Context, commentID, userID int64, req *dto.CommentUpdateRequest) (*dto.CommentInfo, error) {
	comment, err := s.loadOwned(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}

	var upd repository.CommentUpdate
	if req.Content != nil {
		content, err := normalizeContent(*req.Content)
		if err != nil {
			return nil, err
		}
		upd.Content = &content
	}
	upd.IsSpoiler = req.IsSpoiler

	if upd.Content == nil && upd.IsSpoiler == nil {
		return toCommentInfo(comment), nil
	}

	updated, err := s.store.Update(ctx, commentID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	ev := kafka.NewCommentEvent(kafka.EventCommentUpdated, updated.ID, updated.MovieID, userID)
	ev.ParentID = updated.ParentID
	publishEvent(ctx, s.publisher, ev)

	return toCommentInfo(updated), nil
}

// Delete 删除评论，顶层评论的回复由存储层级联删除
func (s *CommentService) Delete(ctx context.Context, commentID, userID int64) error {
	comment, err := s.loadOwned(ctx, commentID, userID)
	if err != nil {
		return err
	}

	replyIDs := make([]int64, 0, len(comment.Replies))
	for _, r := range comment.Replies {
		replyIDs = append(replyIDs, r.ID)
	}

	if err := s.store.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	logger.Info("Comment deleted",
		zap.Int64("comment_id", commentID),
		zap.Int("replies", len(replyIDs)),
		zap.Int64("user_id", userID),
	)

	ev := kafka.NewCommentEvent(kafka.EventCommentDeleted, comment.ID, comment.MovieID, userID)
	ev.ParentID = comment.ParentID
	ev.ReplyIDs = replyIDs
	publishEvent(ctx, s.publisher, ev)

	return nil
}

func toCommentInfo(c *model.Comment) *dto.CommentInfo {
	info := &dto.CommentInfo{
		ID:        c.ID,
		UserID:    c.UserID,
		MovieID:   c.MovieID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		IsSpoiler: c.IsSpoiler,
		Upvotes:   c.Upvotes,
		Downvotes: c.Downvotes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.User.ID != 0 {
		name := c.User.UserName
		info.Username = &name
		info.Avatar = c.User.Avatar
	}
	if len(c.Replies) > 0 {
		info.Replies = make([]dto.CommentInfo, 0, len(c.Replies))
		for i := range c.Replies {
			info.Replies = append(info.Replies, *toCommentInfo(&c.Replies[i]))
		}
	}
	return info
}
