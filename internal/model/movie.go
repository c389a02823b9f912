package model

import "time"

// Movie 电影模型。片库由目录服务维护，这里只作为评论的外键目标
type Movie struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:电影标识" json:"id"`
	Title     string    `gorm:"size:255;not null;comment:电影标题" json:"title"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
}

func (Movie) TableName() string {
	return "movies"
}
