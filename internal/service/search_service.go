package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cinema-go/internal/api/dto"
	infraES "cinema-go/internal/infra/elasticsearch"
	"cinema-go/internal/model"
	"cinema-go/internal/repository"
	"cinema-go/pkg/logger"

	"go.uber.org/zap"
)

const (
	SearchSourceES = "elasticsearch"
	SearchSourceDB = "database"

	reindexBatchSize = 500
)

var errSearchIndexUnavailable = errors.New("search index unavailable")

// CommentIndex 评论全文索引
type CommentIndex interface {
	Search(ctx context.Context, q infraES.CommentSearchQuery) ([]infraES.CommentHit, int64, error)
	Sync(ctx context.Context, c *model.Comment) error
	Delete(ctx context.Context, ids []int64) error
	BulkSync(ctx context.Context, comments []model.Comment) (success, failed int, err error)
}

type SearchService struct {
	store    repository.CommentStore
	searcher repository.CommentSearcher
	index    CommentIndex
}

// NewSearchService index 可为 nil，此时只走数据库检索
func NewSearchService(store repository.CommentStore, searcher repository.CommentSearcher, index CommentIndex) *SearchService {
	return &SearchService{store: store, searcher: searcher, index: index}
}

// SearchComments 搜索评论（ES 优先，失败则降级到 DB）
func (s *SearchService) SearchComments(ctx context.Context, req *dto.SearchCommentRequest) (*dto.SearchCommentData, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}
	req.Q = strings.TrimSpace(req.Q)

	data, err := s.searchFromES(ctx, req)
	if err != nil {
		if !errors.Is(err, errSearchIndexUnavailable) {
			logger.Warn("ES search failed, fallback to DB", zap.Error(err))
		}
		return s.searchFromDB(ctx, req)
	}
	return data, nil
}

func (s *SearchService) searchFromES(ctx context.Context, req *dto.SearchCommentRequest) (*dto.SearchCommentData, error) {
	if s.index == nil {
		return nil, errSearchIndexUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	hits, total, err := s.index.Search(ctx, infraES.CommentSearchQuery{
		Text:    req.Q,
		MovieID: req.MovieID,
		From:    (req.Page - 1) * req.PageSize,
		Size:    req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	// 以数据库为准回填，索引中残留的已删除评论直接跳过
	ordered := make([]model.Comment, 0, len(hits))
	highlights := make(map[int64]map[string][]string, len(hits))
	for _, h := range hits {
		c, err := s.store.FindByID(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		c.Replies = nil
		ordered = append(ordered, *c)
		if len(h.Highlight) > 0 {
			highlights[h.ID] = h.Highlight
		}
	}

	return buildSearchData(ordered, highlights, total, req.Page, req.PageSize, SearchSourceES), nil
}

func (s *SearchService) searchFromDB(ctx context.Context, req *dto.SearchCommentRequest) (*dto.SearchCommentData, error) {
	comments, total, err := s.searcher.SearchContent(ctx, repository.CommentSearchFilter{
		Query:   req.Q,
		MovieID: req.MovieID,
		Skip:    (req.Page - 1) * req.PageSize,
		Limit:   req.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return buildSearchData(comments, nil, total, req.Page, req.PageSize, SearchSourceDB), nil
}

func buildSearchData(comments []model.Comment, highlights map[int64]map[string][]string, total int64, page, pageSize int, source string) *dto.SearchCommentData {
	items := make([]dto.SearchCommentInfo, 0, len(comments))
	for i := range comments {
		items = append(items, dto.SearchCommentInfo{
			CommentInfo: *toCommentInfo(&comments[i]),
			Highlight:   highlights[comments[i].ID],
		})
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return &dto.SearchCommentData{
		Comments:   items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Source:     source,
	}
}

// SyncCommentToES 重新读取评论并写入索引，评论已不存在时从索引删除
func (s *SearchService) SyncCommentToES(ctx context.Context, commentID int64) error {
	if s.index == nil {
		return errSearchIndexUnavailable
	}
	c, err := s.store.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c == nil {
		return s.index.Delete(ctx, []int64{commentID})
	}
	c.Replies = nil
	return s.index.Sync(ctx, c)
}

// RemoveCommentsFromES 删除评论及其回复的索引文档
func (s *SearchService) RemoveCommentsFromES(ctx context.Context, ids []int64) error {
	if s.index == nil {
		return errSearchIndexUnavailable
	}
	return s.index.Delete(ctx, ids)
}

// SyncAllCommentsToES 按 ID 分批全量重建索引
func (s *SearchService) SyncAllCommentsToES(ctx context.Context) (success, failed int, err error) {
	if s.index == nil {
		return 0, 0, errSearchIndexUnavailable
	}

	var afterID int64
	for {
		batch, err := s.searcher.ListForIndex(ctx, afterID, reindexBatchSize)
		if err != nil {
			return success, failed, err
		}
		if len(batch) == 0 {
			break
		}

		ok, bad, err := s.index.BulkSync(ctx, batch)
		success += ok
		failed += bad
		if err != nil {
			return success, failed, err
		}

		afterID = batch[len(batch)-1].ID
		if len(batch) < reindexBatchSize {
			break
		}
	}

	logger.Info("Comments reindexed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}
