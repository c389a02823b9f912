package model

import "time"

// User 用户模型。账号体系由认证服务维护，评论只读取展示字段
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:用户标识" json:"id"`
	UserName  string    `gorm:"size:255;not null;uniqueIndex;comment:用户名" json:"user_name"`
	Avatar    *string   `gorm:"size:500;comment:用户头像" json:"avatar"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:注册时间" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
