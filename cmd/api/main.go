package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"cinema-go/internal/api/handler"
	"cinema-go/internal/api/middleware"
	"cinema-go/internal/api/router"
	"cinema-go/internal/config"
	"cinema-go/internal/infra/database"
	infraES "cinema-go/internal/infra/elasticsearch"
	infraKafka "cinema-go/internal/infra/kafka"
	infraRedis "cinema-go/internal/infra/redis"
	"cinema-go/internal/repository"
	"cinema-go/internal/service"
	"cinema-go/pkg/logger"

	_ "cinema-go/api/openapi"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Cinema-Go Comment API
// @version 1.0
// @description 电影评论服务 API

// @contact.name API Support

// @host 127.0.0.1:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

func main() {
	// 加载配置文件
	cfg, err := config.Load(configPath())
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 初始化数据库
	if err := database.Init(context.Background(), &cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	// 初始化Redis（可选，失败则关闭接口限流）
	var throttle gin.HandlerFunc
	if err := infraRedis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis init failed, request throttling disabled", zap.Error(err))
	} else {
		defer infraRedis.Close()
		if cfg.Throttle.Enabled {
			throttle = middleware.NewThrottle(infraRedis.Get(), cfg.Throttle.Requests, cfg.Throttle.Window()).Handler()
		}
	}

	// 初始化Kafka生产者（可选，失败则不发布评论事件）
	var publisher service.EventPublisher
	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Warn("Kafka producer init failed, comment events disabled", zap.Error(err))
	} else {
		defer infraKafka.CloseProducer()
		publisher = infraKafka.NewCommentEventPublisher(cfg.Kafka.CommentEventsTopic())
	}

	// 初始化 Elasticsearch（可选，失败则搜索降级到 DB）
	var commentIndex service.CommentIndex
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, search will fallback to DB", zap.Error(err))
	} else {
		defer infraES.Close()
		if err := infraES.InitIndexes(cfg.Elasticsearch.CommentsIndex()); err != nil {
			logger.Warn("Elasticsearch index init failed", zap.Error(err))
		}
		commentIndex = infraES.NewCommentIndex(cfg.Elasticsearch.CommentsIndex())
	}

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	// 创建Gin路由器（不使用默认中间件）
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())

	// 初始化依赖（Repository -> Service -> Handler）
	commentRepo := repository.NewCommentRepository(database.Get())

	spamService := service.NewSpamService(commentRepo, cfg.Comment)
	commentService := service.NewCommentService(commentRepo, spamService, publisher)
	voteService := service.NewVoteService(commentRepo, publisher)
	queryService := service.NewCommentQueryService(commentRepo, cfg.Comment)
	searchService := service.NewSearchService(commentRepo, commentRepo, commentIndex)

	commentHandler := handler.NewCommentHandler(commentService, voteService, queryService)
	searchHandler := handler.NewSearchHandler(searchService)

	// 注册基础路由
	r.GET("/healthz", healthCheckHandler)
	r.GET("/", rootHandler)

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册业务路由
	router.Setup(r, commentHandler, searchHandler, throttle)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("redis", cfg.Redis.Addr()),
		zap.String("comment_events_topic", cfg.Kafka.CommentEventsTopic()),
		zap.String("comments_index", cfg.Elasticsearch.CommentsIndex()),
	)

	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// healthCheckHandler 健康检查接口，数据库不可用时返回 503
func healthCheckHandler(c *gin.Context) {
	cfg := config.Get()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	deps := gin.H{"database": "ok", "redis": "ok", "elasticsearch": "disabled"}

	if sqlDB, err := database.Get().DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		deps["database"] = "down"
		status, code = "degraded", http.StatusServiceUnavailable
	}
	if err := infraRedis.Ping(ctx); err != nil {
		deps["redis"] = "down"
	}
	if infraES.Ready() {
		deps["elasticsearch"] = "ok"
	}

	c.JSON(code, gin.H{
		"status":       status,
		"timestamp":    time.Now().Format(time.RFC3339),
		"service":      cfg.App.Name,
		"version":      cfg.App.Version,
		"mode":         cfg.App.Mode,
		"dependencies": deps,
	})
}

// rootHandler 根路径处理器
func rootHandler(c *gin.Context) {
	cfg := config.Get()

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome to %s API", cfg.App.Name),
		"project": cfg.App.Name,
		"version": cfg.App.Version,
		"mode":    cfg.App.Mode,
		"docs":    fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.App.Port),
	})
}
