package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App     AppConfig
	Server  ServerConfig
	OpenAI  OpenAIConfig
	Session SessionConfig
	Search  SearchConfig
	Upload  UploadConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string
	Environment string
	Version     string
	Debug       bool
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string
	Port         int
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

// OpenAIConfig OpenAI Assistants 配置
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	AssistantID     string
	PollIntervalMs  int
	MaxPollAttempts int
	Timeout         int
}

// SessionConfig 会话配置
type SessionConfig struct {
	TTLMinutes           int
	SweepIntervalMinutes int
}

// SearchConfig 网络证据采集配置
type SearchConfig struct {
	RedditURL  string
	NewsURL    string
	UserAgent  string
	Timeout    int
	MaxResults int
}

// UploadConfig 文件上传配置
type UploadConfig struct {
	Dir           string
	MaxFileSizeMB int
}

var globalConfig *Config

// Load 加载配置
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 环境变量
	v.SetEnvPrefix("MARKET_PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded")
	}
	return globalConfig
}

// GetAddr 获取服务器地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PollInterval 获取运行轮询间隔
func (c *OpenAIConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// TTL 获取会话保留时长
func (c *SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// SweepInterval 获取会话清理间隔
func (c *SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

// MaxFileSize 获取单文件大小上限（字节）
func (c *UploadConfig) MaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "market-pulse")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", true)

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 120)

	// OpenAI
	v.SetDefault("openai.baseUrl", "https://api.openai.com/v1")
	v.SetDefault("openai.pollIntervalMs", 1500)
	v.SetDefault("openai.maxPollAttempts", 200)
	v.SetDefault("openai.timeout", 30)

	// Session
	v.SetDefault("session.ttlMinutes", 15)
	v.SetDefault("session.sweepIntervalMinutes", 15)

	// Search
	v.SetDefault("search.redditUrl", "https://www.reddit.com/search.json")
	v.SetDefault("search.newsUrl", "https://news.google.com/rss/search")
	v.SetDefault("search.userAgent", "MarketPulse/1.0")
	v.SetDefault("search.timeout", 10)
	v.SetDefault("search.maxResults", 3)

	// Upload
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.maxFileSizeMB", 5)
}
