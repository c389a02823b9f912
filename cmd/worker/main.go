package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cinema-go/internal/config"
	"cinema-go/internal/infra/database"
	infraES "cinema-go/internal/infra/elasticsearch"
	infraKafka "cinema-go/internal/infra/kafka"
	"cinema-go/internal/repository"
	"cinema-go/internal/service"
	"cinema-go/pkg/logger"
	"cinema-go/pkg/utils"

	"go.uber.org/zap"
)

// 评论索引同步 worker：消费评论事件，把变更写入 Elasticsearch
func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := database.Init(ctx, &cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	indexName := cfg.Elasticsearch.CommentsIndex()
	if err := utils.Retry(ctx, func() error {
		return infraES.Init(&cfg.Elasticsearch)
	}, utils.ConnectRetryOptions()); err != nil {
		logger.Fatal("Failed to init elasticsearch", zap.Error(err))
	}
	defer infraES.Close()

	if err := infraES.InitIndexes(indexName); err != nil {
		logger.Fatal("Failed to init comments index", zap.Error(err))
	}

	commentRepo := repository.NewCommentRepository(database.Get())
	searchService := service.NewSearchService(commentRepo, commentRepo, infraES.NewCommentIndex(indexName))

	if cfg.Elasticsearch.ReindexOnStart {
		success, failed, err := searchService.SyncAllCommentsToES(ctx)
		if err != nil {
			logger.Error("Full reindex failed", zap.Error(err))
		} else {
			logger.Info("Full reindex completed", zap.Int("success", success), zap.Int("failed", failed))
		}
	}

	topic := cfg.Kafka.CommentEventsTopic()
	logger.Info("Comment index worker started",
		zap.String("topic", topic),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("index", indexName),
	)

	infraKafka.StartCommentEventConsumer(ctx, cfg.Kafka.Brokers, topic, cfg.Kafka.GroupID, newEventHandler(searchService))
}

// newEventHandler 按事件类型更新索引，失败按指数退避重试
func newEventHandler(searchService *service.SearchService) infraKafka.EventHandler {
	return func(ctx context.Context, ev *infraKafka.CommentEvent) error {
		var op func() error
		switch ev.Type {
		case infraKafka.EventCommentCreated, infraKafka.EventCommentUpdated, infraKafka.EventCommentVoted:
			op = func() error { return searchService.SyncCommentToES(ctx, ev.CommentID) }
		case infraKafka.EventCommentDeleted:
			ids := append([]int64{ev.CommentID}, ev.ReplyIDs...)
			op = func() error { return searchService.RemoveCommentsFromES(ctx, ids) }
		default:
			logger.Warn("Unknown comment event type", zap.String("type", ev.Type), zap.String("event_id", ev.EventID))
			return nil
		}

		if err := utils.Retry(ctx, op, utils.IndexRetryOptions()); err != nil {
			return fmt.Errorf("index comment %d: %w", ev.CommentID, err)
		}

		logger.Debug("Comment event indexed",
			zap.String("event_id", ev.EventID),
			zap.String("type", ev.Type),
			zap.Int64("comment_id", ev.CommentID),
		)
		return nil
	}
}
