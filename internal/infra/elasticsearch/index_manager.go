package elasticsearch

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"cinema-go/pkg/logger"

	"go.uber.org/zap"
)

// CommentsIndexMapping 返回 comments 索引的 mapping
func CommentsIndexMapping() string {
	return `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0,
			"analysis": {
				"analyzer": {
					"comment_text": {
						"type": "custom",
						"tokenizer": "standard",
						"filter": ["lowercase", "asciifolding"]
					}
				}
			}
		},
		"mappings": {
			"properties": {
				"id": {"type": "long"},
				"user_id": {"type": "long"},
				"username": {"type": "keyword"},
				"movie_id": {"type": "long"},
				"parent_id": {"type": "long"},
				"content": {"type": "text", "analyzer": "comment_text"},
				"is_spoiler": {"type": "boolean"},
				"upvotes": {"type": "long"},
				"downvotes": {"type": "long"},
				"score": {"type": "long"},
				"created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
				"updated_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
			}
		}
	}`
}

// EnsureCommentsIndex 确保评论索引存在，不存在则创建
func EnsureCommentsIndex(ctx context.Context, indexName string) error {
	exists, err := IndicesExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		logger.Info("Elasticsearch comments index already exists", zap.String("index", indexName))
		return nil
	}

	resp, err := IndicesCreate(ctx, indexName, bytes.NewReader([]byte(CommentsIndexMapping())))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("create index failed: %s", resp.String())
	}

	logger.Info("Elasticsearch comments index created", zap.String("index", indexName))
	return nil
}

// InitIndexes 初始化所有索引（启动时调用）
func InitIndexes(indexName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return EnsureCommentsIndex(ctx, indexName)
}
