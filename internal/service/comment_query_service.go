package service

import (
	"context"

	"cinema-go/internal/api/dto"
	"cinema-go/internal/config"
	"cinema-go/internal/repository"
	"cinema-go/pkg/logger"

	"go.uber.org/zap"
)

// WarningStoreUnavailable 读接口降级时返回的提示
const WarningStoreUnavailable = "comments are temporarily unavailable"

// CommentQueryService 评论读取。存储故障时返回空结果并带 Warning，不向上抛错
type CommentQueryService struct {
	store        repository.CommentStore
	defaultLimit int
	maxLimit     int
}

func NewCommentQueryService(store repository.CommentStore, cfg config.CommentConfig) *CommentQueryService {
	def := config.DefaultCommentConfig()
	if cfg.RecentDefaultLimit <= 0 {
		cfg.RecentDefaultLimit = def.RecentDefaultLimit
	}
	if cfg.RecentMaxLimit <= 0 {
		cfg.RecentMaxLimit = def.RecentMaxLimit
	}
	if cfg.RecentDefaultLimit > cfg.RecentMaxLimit {
		cfg.RecentDefaultLimit = cfg.RecentMaxLimit
	}
	return &CommentQueryService{
		store:        store,
		defaultLimit: cfg.RecentDefaultLimit,
		maxLimit:     cfg.RecentMaxLimit,
	}
}

// ListByMovie 顶层评论按时间倒序，回复按时间正序
func (s *CommentQueryService) ListByMovie(ctx context.Context, movieID int64) *dto.CommentThreadData {
	data := &dto.CommentThreadData{MovieID: movieID, Comments: []dto.CommentInfo{}}

	comments, err := s.store.FindByMovieID(ctx, movieID)
	if err != nil {
		logger.Warn("List comments by movie failed, returning empty thread",
			zap.Int64("movie_id", movieID),
			zap.Error(err),
		)
		data.Warning = WarningStoreUnavailable
		return data
	}

	for i := range comments {
		info := toCommentInfo(&comments[i])
		data.Comments = append(data.Comments, *info)
		data.Total += 1 + int64(len(info.Replies))
	}
	return data
}

// CountByMovie 电影评论总数（含回复）
func (s *CommentQueryService) CountByMovie(ctx context.Context, movieID int64) *dto.CommentCountData {
	data := &dto.CommentCountData{MovieID: movieID}

	n, err := s.store.CountByMovieID(ctx, movieID)
	if err != nil {
		logger.Warn("Count comments by movie failed, returning zero",
			zap.Int64("movie_id", movieID),
			zap.Error(err),
		)
		data.Warning = WarningStoreUnavailable
		return data
	}
	data.Count = n
	return data
}

// ClampLimit limit<=0 取默认值，超过上限取上限
func (s *CommentQueryService) ClampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// ListRecent 全站最新评论
func (s *CommentQueryService) ListRecent(ctx context.Context, limit int) *dto.CommentListData {
	limit = s.ClampLimit(limit)
	data := &dto.CommentListData{Comments: []dto.CommentInfo{}, Limit: limit}

	comments, err := s.store.FindRecent(ctx, limit)
	if err != nil {
		logger.Warn("List recent comments failed, returning empty list",
			zap.Int("limit", limit),
			zap.Error(err),
		)
		data.Warning = WarningStoreUnavailable
		return data
	}

	for i := range comments {
		data.Comments = append(data.Comments, *toCommentInfo(&comments[i]))
	}
	return data
}
