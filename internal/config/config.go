package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Comment       CommentConfig       `mapstructure:"comment"`
	Throttle      ThrottleConfig      `mapstructure:"throttle"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Mode    string `mapstructure:"mode"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
	GroupID string            `mapstructure:"group_id"`
}

// CommentEventsTopic 评论事件 topic，未配置时使用默认值
func (k *KafkaConfig) CommentEventsTopic() string {
	if t := k.Topics["comment_events"]; t != "" {
		return t
	}
	return "comment-events"
}

// ElasticsearchConfig Elasticsearch配置
type ElasticsearchConfig struct {
	Hosts          []string          `mapstructure:"hosts"`
	Index          map[string]string `mapstructure:"index"`
	ReindexOnStart bool              `mapstructure:"reindex_on_start"`
}

// CommentsIndex 评论索引名
func (e *ElasticsearchConfig) CommentsIndex() string {
	if name := e.Index["comments"]; name != "" {
		return name
	}
	return "comments"
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// ExpireDuration 返回过期时间
func (j *JWTConfig) ExpireDuration() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// CommentConfig 评论反垃圾与列表配置
type CommentConfig struct {
	RateLimitWindowMinutes int `mapstructure:"rate_limit_window_minutes"`
	RateLimitMax           int `mapstructure:"rate_limit_max"`
	DuplicateWindowMinutes int `mapstructure:"duplicate_window_minutes"`
	RecentDefaultLimit     int `mapstructure:"recent_default_limit"`
	RecentMaxLimit         int `mapstructure:"recent_max_limit"`
}

// RateLimitWindow 限流窗口
func (c *CommentConfig) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMinutes) * time.Minute
}

// DuplicateWindow 重复内容检测窗口
func (c *CommentConfig) DuplicateWindow() time.Duration {
	return time.Duration(c.DuplicateWindowMinutes) * time.Minute
}

// ThrottleConfig 接口级 IP 限流配置（Redis 固定窗口）
type ThrottleConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Requests      int  `mapstructure:"requests"`
	WindowSeconds int  `mapstructure:"window_seconds"`
}

// Window 返回限流窗口
func (t *ThrottleConfig) Window() time.Duration {
	return time.Duration(t.WindowSeconds) * time.Second
}

// DefaultCommentConfig 与产品约定一致的默认值：1 分钟 5 条，5 分钟内去重
func DefaultCommentConfig() CommentConfig {
	return CommentConfig{
		RateLimitWindowMinutes: 1,
		RateLimitMax:           5,
		DuplicateWindowMinutes: 5,
		RecentDefaultLimit:     10,
		RecentMaxLimit:         50,
	}
}

// 全局配置实例
var globalConfig *Config

func setDefaults(v *viper.Viper) {
	def := DefaultCommentConfig()
	v.SetDefault("app.name", "cinema-go")
	v.SetDefault("app.mode", "debug")
	v.SetDefault("app.port", 8000)
	v.SetDefault("comment.rate_limit_window_minutes", def.RateLimitWindowMinutes)
	v.SetDefault("comment.rate_limit_max", def.RateLimitMax)
	v.SetDefault("comment.duplicate_window_minutes", def.DuplicateWindowMinutes)
	v.SetDefault("comment.recent_default_limit", def.RecentDefaultLimit)
	v.SetDefault("comment.recent_max_limit", def.RecentMaxLimit)
	v.SetDefault("throttle.enabled", true)
	v.SetDefault("throttle.requests", 120)
	v.SetDefault("throttle.window_seconds", 60)
	v.SetDefault("kafka.group_id", "cinema-go-comment-indexer")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// 设置配置文件路径
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 读取环境变量，如 DATABASE_HOST 覆盖 database.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &cfg

	return &cfg, nil
}

// Set 直接设置全局配置（测试或嵌入式场景使用）
func Set(cfg *Config) {
	globalConfig = cfg
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}

// GetApp 获取应用配置
func GetApp() *AppConfig {
	return &Get().App
}

// GetJWT 获取JWT配置
func GetJWT() *JWTConfig {
	return &Get().JWT
}

// GetElasticsearch 获取Elasticsearch配置
func GetElasticsearch() *ElasticsearchConfig {
	return &Get().Elasticsearch
}

// GetComment 获取评论配置
func GetComment() *CommentConfig {
	return &Get().Comment
}
