package model

import "time"

// MaxCommentLength 评论内容去除首尾空白后的最大字符数
const MaxCommentLength = 1000

// Comment 评论模型，ParentID 为空表示顶层评论；回复只能挂在顶层评论下
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:评论ID" json:"id"`
	UserID    int64     `gorm:"not null;index:idx_comments_user_id;index:idx_comments_user_created,priority:1;comment:评论用户ID" json:"user_id"`
	MovieID   int64     `gorm:"not null;index:idx_comments_movie_id;index:idx_comments_movie_parent_created,priority:1;comment:被评论电影ID" json:"movie_id"`
	ParentID  *int64    `gorm:"index:idx_comments_parent_id;index:idx_comments_movie_parent_created,priority:2;comment:父评论ID" json:"parent_id"`
	Content   string    `gorm:"type:text;not null;comment:评论内容" json:"content"`
	IsSpoiler bool      `gorm:"not null;default:false;comment:是否剧透" json:"is_spoiler"`
	Upvotes   int64     `gorm:"not null;default:0;comment:赞成票数" json:"upvotes"`
	Downvotes int64     `gorm:"not null;default:0;comment:反对票数" json:"downvotes"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_comments_created_at;index:idx_comments_user_created,priority:2;index:idx_comments_movie_parent_created,priority:3;comment:评论时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	User    User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Movie   Movie     `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"-"`
	Replies []Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsReply 是否为回复
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
