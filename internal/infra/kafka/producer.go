package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cinema-go/internal/config"
	"cinema-go/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var producer *kafka.Writer

var errProducerNotInitialized = errors.New("kafka producer not initialized")

// 评论事件类型
const (
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentDeleted = "comment.deleted"
	EventCommentVoted   = "comment.voted"
)

// CommentEvent 评论变更事件消息体
type CommentEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	CommentID  int64     `json:"comment_id"`
	MovieID    int64     `json:"movie_id"`
	UserID     int64     `json:"user_id"`
	ParentID   *int64    `json:"parent_id,omitempty"`
	ReplyIDs   []int64   `json:"reply_ids,omitempty"`
	VoteType   string    `json:"vote_type,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewCommentEvent 构造带事件 ID 和时间戳的事件
func NewCommentEvent(eventType string, commentID, movieID, userID int64) *CommentEvent {
	return &CommentEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		CommentID:  commentID,
		MovieID:    movieID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("kafka brokers is empty")
	}

	producer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// SendCommentEvent 发送评论事件，以评论 ID 为 key 保证同一评论的事件有序
func SendCommentEvent(ctx context.Context, topic string, ev *CommentEvent) error {
	if producer == nil {
		return errProducerNotInitialized
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal comment event: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(fmt.Sprintf("comment-%d", ev.CommentID)),
		Value: payload,
	}

	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send comment event: %w", err)
	}

	logger.Debug("Comment event sent",
		zap.String("type", ev.Type),
		zap.Int64("comment_id", ev.CommentID),
		zap.String("topic", topic),
	)

	return nil
}

// CommentEventPublisher 将评论事件写入固定 topic
type CommentEventPublisher struct {
	Topic string
}

func NewCommentEventPublisher(topic string) *CommentEventPublisher {
	return &CommentEventPublisher{Topic: topic}
}

func (p *CommentEventPublisher) PublishCommentEvent(ctx context.Context, ev *CommentEvent) error {
	return SendCommentEvent(ctx, p.Topic, ev)
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
