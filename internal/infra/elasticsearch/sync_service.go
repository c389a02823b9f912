package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cinema-go/internal/model"
	"cinema-go/pkg/logger"

	"go.uber.org/zap"
)

// ESCommentDoc ES 评论文档结构
type ESCommentDoc struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	MovieID   int64  `json:"movie_id"`
	ParentID  *int64 `json:"parent_id,omitempty"`
	Content   string `json:"content"`
	IsSpoiler bool   `json:"is_spoiler"`
	Upvotes   int64  `json:"upvotes"`
	Downvotes int64  `json:"downvotes"`
	Score     int64  `json:"score"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func commentToESDoc(c *model.Comment) *ESCommentDoc {
	return &ESCommentDoc{
		ID:        c.ID,
		UserID:    c.UserID,
		Username:  c.User.UserName,
		MovieID:   c.MovieID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		IsSpoiler: c.IsSpoiler,
		Upvotes:   c.Upvotes,
		Downvotes: c.Downvotes,
		Score:     c.Upvotes - c.Downvotes,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

// CommentHit 搜索命中的评论 ID 及高亮片段
type CommentHit struct {
	ID        int64
	Highlight map[string][]string
}

// CommentSearchQuery 评论检索条件
type CommentSearchQuery struct {
	Text    string
	MovieID *int64
	From    int
	Size    int
}

// CommentIndex 绑定索引名的评论索引操作
type CommentIndex struct {
	Name string
}

func NewCommentIndex(name string) *CommentIndex {
	return &CommentIndex{Name: name}
}

// BuildCommentQuery 构造 bool 查询：content 全文匹配 + movie_id 过滤 + 高亮
func BuildCommentQuery(q CommentSearchQuery) map[string]interface{} {
	boolQ := map[string]interface{}{
		"filter": []interface{}{},
		"must":   []interface{}{},
	}

	text := strings.TrimSpace(q.Text)
	if text != "" {
		boolQ["must"] = append(boolQ["must"].([]interface{}),
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":    text,
					"fields":   []string{"content^2", "username"},
					"type":     "best_fields",
					"operator": "or",
				},
			},
		)
	}
	if q.MovieID != nil {
		boolQ["filter"] = append(boolQ["filter"].([]interface{}),
			map[string]interface{}{"term": map[string]interface{}{"movie_id": *q.MovieID}})
	}

	query := map[string]interface{}{
		"query":   map[string]interface{}{"bool": boolQ},
		"_source": []string{"id"},
		"from":    q.From,
		"size":    q.Size,
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]string{"order": "desc"}},
			map[string]interface{}{"created_at": map[string]string{"order": "desc"}},
		},
	}
	if text != "" {
		query["highlight"] = map[string]interface{}{
			"fields":    map[string]interface{}{"content": map[string]interface{}{}},
			"pre_tags":  []string{"<em>"},
			"post_tags": []string{"</em>"},
		}
	}
	return query
}

// Search 执行评论检索，返回按相关度排序的命中及总数
func (ci *CommentIndex) Search(ctx context.Context, q CommentSearchQuery) ([]CommentHit, int64, error) {
	body, err := json.Marshal(BuildCommentQuery(q))
	if err != nil {
		return nil, 0, err
	}

	resp, err := Search(ctx, ci.Name, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, 0, fmt.Errorf("ES search error: %s", resp.String())
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&esResp); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]CommentHit, 0, len(esResp.Hits.Hits))
	for _, h := range esResp.Hits.Hits {
		hits = append(hits, CommentHit{ID: h.Source.ID, Highlight: h.Highlight})
	}
	return hits, esResp.Hits.Total.Value, nil
}

// Sync 同步单条评论到 ES
func (ci *CommentIndex) Sync(ctx context.Context, c *model.Comment) error {
	body, err := json.Marshal(commentToESDoc(c))
	if err != nil {
		return err
	}

	resp, err := Index(ctx, ci.Name, strconv.FormatInt(c.ID, 10), bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("index document failed: %s", resp.String())
	}

	logger.Debug("Comment synced to ES", zap.Int64("comment_id", c.ID))
	return nil
}

// Delete 批量删除评论文档，已不存在的文档视为成功
func (ci *CommentIndex) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) == 1 {
		resp, err := Delete(ctx, ci.Name, strconv.FormatInt(ids[0], 10))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.IsError() && resp.StatusCode != 404 {
			return fmt.Errorf("delete document failed: %s", resp.String())
		}
		return nil
	}

	var buf strings.Builder
	for _, id := range ids {
		buf.WriteString(fmt.Sprintf(`{"delete":{"_index":"%s","_id":"%d"}}`, ci.Name, id))
		buf.WriteString("\n")
	}

	resp, err := Bulk(ctx, strings.NewReader(buf.String()), false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("bulk delete failed: %s", resp.String())
	}
	return nil
}

// BulkSync 批量同步评论到 ES
func (ci *CommentIndex) BulkSync(ctx context.Context, comments []model.Comment) (success, failed int, err error) {
	var buf strings.Builder
	for i := range comments {
		docBody, err := json.Marshal(commentToESDoc(&comments[i]))
		if err != nil {
			failed++
			continue
		}
		buf.WriteString(fmt.Sprintf(`{"index":{"_index":"%s","_id":"%d"}}`, ci.Name, comments[i].ID))
		buf.WriteString("\n")
		buf.Write(docBody)
		buf.WriteString("\n")
	}

	if buf.Len() == 0 {
		return 0, failed, nil
	}

	resp, err := Bulk(ctx, strings.NewReader(buf.String()), false)
	if err != nil {
		return 0, len(comments), err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, len(comments), fmt.Errorf("bulk failed: %s", resp.String())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return len(comments) - failed, failed, nil
	}

	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failed++
		}
	}

	logger.Info("Bulk sync comments to ES completed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}
