package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidContent      = errors.New("评论内容不能为空且不能超过1000个字符")
	ErrInvalidVoteType     = errors.New("投票类型必须为 UPVOTE 或 DOWNVOTE")
	ErrCommentNotFound     = errors.New("评论不存在")
	ErrParentNotFound      = errors.New("父评论不存在")
	ErrCommentNoPermission = errors.New("没有权限操作该评论")
	ErrSelfVote            = errors.New("不能给自己的评论投票")
	ErrReplyToReply        = errors.New("不能回复一条回复")
	ErrDuplicateContent    = errors.New("请勿重复发表相同内容")
	ErrReferenceNotFound   = errors.New("电影或用户不存在")
	ErrRateLimited         = errors.New("评论过于频繁")
)

// RateLimitedError 限流错误，WaitTime 为建议的等待时长
type RateLimitedError struct {
	WaitTime time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s，请在 %d 秒后重试", ErrRateLimited.Error(), int64(e.WaitTime/time.Second))
}

// Is 使 errors.Is(err, ErrRateLimited) 成立
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
