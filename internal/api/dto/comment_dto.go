package dto

import "time"

// CommentCreateRequest 发表顶层评论请求
type CommentCreateRequest struct {
	MovieID   int64  `json:"movie_id" binding:"required,gt=0"`
	Content   string `json:"content"`
	IsSpoiler *bool  `json:"is_spoiler"`
}

// CommentReplyRequest 回复评论请求，电影 ID 取自父评论
type CommentReplyRequest struct {
	Content   string `json:"content"`
	IsSpoiler *bool  `json:"is_spoiler"`
}

// CommentUpdateRequest 更新评论请求，字段均可选
type CommentUpdateRequest struct {
	Content   *string `json:"content"`
	IsSpoiler *bool   `json:"is_spoiler"`
}

// CommentVoteRequest 投票请求
type CommentVoteRequest struct {
	VoteType string `json:"vote_type" binding:"required,oneof=UPVOTE DOWNVOTE"`
}

// CommentInfo 评论信息
type CommentInfo struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	MovieID   int64         `json:"movie_id"`
	ParentID  *int64        `json:"parent_id"`
	Content   string        `json:"content"`
	IsSpoiler bool          `json:"is_spoiler"`
	Upvotes   int64         `json:"upvotes"`
	Downvotes int64         `json:"downvotes"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Username  *string       `json:"username"`
	Avatar    *string       `json:"avatar"`
	Replies   []CommentInfo `json:"replies,omitempty"`
}

// CommentThreadData 电影评论串：顶层评论及其回复
type CommentThreadData struct {
	MovieID  int64         `json:"movie_id"`
	Comments []CommentInfo `json:"comments"`
	Total    int64         `json:"total"`
	Warning  string        `json:"warning,omitempty"`
}

// CommentListData 平铺的评论列表
type CommentListData struct {
	Comments []CommentInfo `json:"comments"`
	Limit    int           `json:"limit"`
	Warning  string        `json:"warning,omitempty"`
}

// CommentCountData 评论数
type CommentCountData struct {
	MovieID int64  `json:"movie_id"`
	Count   int64  `json:"count"`
	Warning string `json:"warning,omitempty"`
}
