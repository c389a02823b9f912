package repository

import (
	"context"
	"errors"

	"cinema-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const recountVotesSQL = "(SELECT COUNT(*) FROM comment_votes WHERE comment_id = ? AND vote_type = ?)"

// CreateVote 创建投票，并发重复提交时返回 ErrDuplicateVote
func (r *CommentRepository) CreateVote(ctx context.Context, v *model.CommentVote) (*model.CommentVote, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateVote
		}
		return nil, translateError(err)
	}
	return v, nil
}

func (r *CommentRepository) FindVote(ctx context.Context, userID, commentID int64) (*model.CommentVote, error) {
	var vote model.CommentVote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

func (r *CommentRepository) DeleteVote(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.CommentVote{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateVoteCounts 按投票表重新统计赞/踩数并写回评论，不触碰 updated_at
func (r *CommentRepository) UpdateVoteCounts(ctx context.Context, commentID int64) error {
	result := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", commentID).
		UpdateColumns(map[string]interface{}{
			"upvotes":   gorm.Expr(recountVotesSQL, commentID, string(model.VoteUp)),
			"downvotes": gorm.Expr(recountVotesSQL, commentID, string(model.VoteDown)),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
