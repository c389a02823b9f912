package repository

import (
	"context"
	"errors"
	"time"

	"cinema-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

var (
	_ CommentStore    = (*CommentRepository)(nil)
	_ CommentSearcher = (*CommentRepository)(nil)
)

func orderReplies(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// withThread 预加载作者、回复及回复作者
func (r *CommentRepository) withThread(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Replies", orderReplies).
		Preload("Replies.User")
}

func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return nil, translateError(err)
	}
	return r.FindByID(ctx, c.ID)
}

func (r *CommentRepository) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.withThread(ctx).First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// FindByMovieID 获取电影下的顶层评论（新到旧）及其回复（旧到新）
func (r *CommentRepository) FindByMovieID(ctx context.Context, movieID int64) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.withThread(ctx).
		Where("movie_id = ? AND parent_id IS NULL", movieID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update 更新评论内容或剧透标记
func (r *CommentRepository) Update(ctx context.Context, id int64, upd CommentUpdate) (*model.Comment, error) {
	updates := make(map[string]interface{}, 2)
	if upd.Content != nil {
		updates["content"] = *upd.Content
	}
	if upd.IsSpoiler != nil {
		updates["is_spoiler"] = *upd.IsSpoiler
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	comment, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}
	return comment, nil
}

// Delete 删除评论；顶层评论连同回复和投票在同一事务内删除
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		replyIDs := tx.Model(&model.Comment{}).Select("id").Where("parent_id = ?", id)

		if err := tx.Where("comment_id = ? OR comment_id IN (?)", id, replyIDs).
			Delete(&model.CommentVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&model.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CountByMovieID 统计电影评论总数（含回复）
func (r *CommentRepository) CountByMovieID(ctx context.Context, movieID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("movie_id = ?", movieID).Count(&count).Error
	return count, err
}

// CountUserCommentsInWindow 统计用户在最近 window 内发表的评论数
func (r *CommentRepository) CountUserCommentsInWindow(ctx context.Context, userID int64, window time.Duration) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("user_id = ? AND created_at >= ?", userID, time.Now().Add(-window)).
		Count(&count).Error
	return count, err
}

// FindDuplicateComment 查找用户在最近 window 内内容完全相同的评论
func (r *CommentRepository) FindDuplicateComment(ctx context.Context, userID int64, content string, window time.Duration) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content = ? AND created_at >= ?", userID, content, time.Now().Add(-window)).
		Order("created_at DESC").
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// FindRecent 全站最新评论
func (r *CommentRepository) FindRecent(ctx context.Context, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepository) InTx(ctx context.Context, fn func(store CommentStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CommentRepository{db: tx})
	})
}

// SearchContent 内容模糊搜索（ES 不可用时的兜底）
func (r *CommentRepository) SearchContent(ctx context.Context, filter CommentSearchFilter) ([]model.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Comment{})
	if filter.Query != "" {
		query = query.Where("content ILIKE ?", "%"+filter.Query+"%")
	}
	if filter.MovieID != nil {
		query = query.Where("movie_id = ?", *filter.MovieID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []model.Comment
	err := query.Preload("User").Order("created_at DESC, id DESC").
		Offset(filter.Skip).Limit(filter.Limit).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ListForIndex 按 ID 升序分批读取评论，供全量同步索引使用
func (r *CommentRepository) ListForIndex(ctx context.Context, afterID int64, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}
