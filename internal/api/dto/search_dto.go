package dto

// SearchCommentRequest 评论搜索参数
type SearchCommentRequest struct {
	Q        string `form:"q"`
	MovieID  *int64 `form:"movie_id"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SearchCommentInfo 搜索结果中的评论
type SearchCommentInfo struct {
	CommentInfo
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// SearchCommentData 搜索结果
type SearchCommentData struct {
	Comments   []SearchCommentInfo `json:"comments"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int64               `json:"total_pages"`
	Source     string              `json:"source"`
}
