package kafka

import (
	"context"
	"encoding/json"
	"time"

	"cinema-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventHandler 处理评论事件的回调函数
type EventHandler func(ctx context.Context, ev *CommentEvent) error

// StartCommentEventConsumer 启动评论事件消费者（阻塞，需在 goroutine 中运行）
// ctx 取消后会自动停止
func StartCommentEventConsumer(ctx context.Context, brokers []string, topic, groupID string, handler EventHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka comment event consumer stopped")
	}()

	logger.Info("Kafka comment event consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var ev CommentEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			logger.Error("Failed to unmarshal comment event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		if err := handler(ctx, &ev); err != nil {
			logger.Error("Failed to handle comment event",
				zap.String("event_id", ev.EventID),
				zap.String("type", ev.Type),
				zap.Int64("comment_id", ev.CommentID),
				zap.Error(err),
			)
		}
	}
}
