package service

import (
	"context"
	"errors"

	"cinema-go/internal/api/dto"
	"cinema-go/internal/infra/kafka"
	"cinema-go/internal/model"
	"cinema-go/internal/repository"
	"cinema-go/pkg/logger"

	"go.uber.org/zap"
)

type VoteService struct {
	store     repository.CommentStore
	publisher EventPublisher
}

func NewVoteService(store repository.CommentStore, publisher EventPublisher) *VoteService {
	return &VoteService{store: store, publisher: publisher}
}

// Vote 投票状态机：无投票则新建；同类型再投则撤销；不同类型则替换。
// 投票变更后按投票表重新计数。
func (s *VoteService) Vote(ctx context.Context, commentID, userID int64, voteType model.VoteType) (*dto.CommentInfo, error) {
	if !voteType.Valid() {
		return nil, ErrInvalidVoteType
	}

	comment, err := s.store.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	if comment.UserID == userID {
		return nil, ErrSelfVote
	}

	err = s.store.InTx(ctx, func(tx repository.CommentStore) error {
		existing, err := tx.FindVote(ctx, userID, commentID)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := tx.DeleteVote(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			if existing.VoteType == voteType {
				return tx.UpdateVoteCounts(ctx, commentID)
			}
		}
		if _, err := tx.CreateVote(ctx, &model.CommentVote{
			UserID:    userID,
			CommentID: commentID,
			VoteType:  voteType,
		}); err != nil {
			return err
		}
		return tx.UpdateVoteCounts(ctx, commentID)
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrDuplicateVote):
		// 并发请求已写入投票，本次视为无操作，仅刷新计数
		logger.Info("Concurrent vote lost the race",
			zap.Int64("comment_id", commentID),
			zap.Int64("user_id", userID),
		)
		if err := s.store.UpdateVoteCounts(ctx, commentID); err != nil {
			return nil, err
		}
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrReferenceViolation):
		return nil, ErrCommentNotFound
	default:
		return nil, err
	}

	refreshed, err := s.store.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if refreshed == nil {
		return nil, ErrCommentNotFound
	}

	ev := kafka.NewCommentEvent(kafka.EventCommentVoted, refreshed.ID, refreshed.MovieID, userID)
	ev.ParentID = refreshed.ParentID
	ev.VoteType = string(voteType)
	publishEvent(ctx, s.publisher, ev)

	return toCommentInfo(refreshed), nil
}
