package model

import "time"

// VoteType 投票类型
type VoteType string

const (
	VoteUp   VoteType = "UPVOTE"
	VoteDown VoteType = "DOWNVOTE"
)

// Valid 是否为合法的投票类型
func (t VoteType) Valid() bool {
	return t == VoteUp || t == VoteDown
}

// CommentVote 评论投票模型，同一用户对同一评论至多一条记录
type CommentVote struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:投票记录ID" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uq_user_comment_vote;index:idx_comment_votes_user_id;comment:投票用户ID" json:"user_id"`
	CommentID int64     `gorm:"not null;uniqueIndex:uq_user_comment_vote;index:idx_comment_votes_comment_type,priority:1;comment:被投票评论ID" json:"comment_id"`
	VoteType  VoteType  `gorm:"size:16;not null;index:idx_comment_votes_comment_type,priority:2;comment:投票类型" json:"vote_type"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:投票时间" json:"created_at"`

	// 关联关系
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Comment Comment `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CommentVote) TableName() string {
	return "comment_votes"
}
