package service

import (
	"context"
	"time"

	"cinema-go/internal/config"
	"cinema-go/internal/repository"
)

// RateLimitResult 限流检查结果
type RateLimitResult struct {
	Allowed  bool
	WaitTime time.Duration
}

// SpamOracle 发表前的反垃圾检查
type SpamOracle interface {
	CheckRateLimit(ctx context.Context, userID int64) (*RateLimitResult, error)
	CheckDuplicate(ctx context.Context, userID int64, content string) (bool, error)
}

// SpamService 基于评论表的滑动窗口限流与重复内容检测，本身不保存状态
type SpamService struct {
	store           repository.CommentStore
	rateWindow      time.Duration
	rateMax         int64
	duplicateWindow time.Duration
}

var _ SpamOracle = (*SpamService)(nil)

func NewSpamService(store repository.CommentStore, cfg config.CommentConfig) *SpamService {
	def := config.DefaultCommentConfig()
	if cfg.RateLimitWindowMinutes <= 0 {
		cfg.RateLimitWindowMinutes = def.RateLimitWindowMinutes
	}
	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = def.RateLimitMax
	}
	if cfg.DuplicateWindowMinutes <= 0 {
		cfg.DuplicateWindowMinutes = def.DuplicateWindowMinutes
	}
	return &SpamService{
		store:           store,
		rateWindow:      cfg.RateLimitWindow(),
		rateMax:         int64(cfg.RateLimitMax),
		duplicateWindow: cfg.DuplicateWindow(),
	}
}

// CheckRateLimit 窗口内已发表数达到上限则拒绝，等待时间取整个窗口
func (s *SpamService) CheckRateLimit(ctx context.Context, userID int64) (*RateLimitResult, error) {
	n, err := s.store.CountUserCommentsInWindow(ctx, userID, s.rateWindow)
	if err != nil {
		return nil, err
	}
	if n >= s.rateMax {
		return &RateLimitResult{Allowed: false, WaitTime: s.rateWindow}, nil
	}
	return &RateLimitResult{Allowed: true}, nil
}

// CheckDuplicate 同一用户在窗口内是否发表过完全相同的内容（不区分电影）
func (s *SpamService) CheckDuplicate(ctx context.Context, userID int64, content string) (bool, error) {
	dup, err := s.store.FindDuplicateComment(ctx, userID, content, s.duplicateWindow)
	if err != nil {
		return false, err
	}
	return dup != nil, nil
}
