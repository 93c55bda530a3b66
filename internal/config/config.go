package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// 题目来源
const (
	SourceOpenTDB = "opentdb"
	SourceFile    = "file"
)

// 默认值
const (
	defaultHost               = "0.0.0.0"
	defaultPort               = 9000
	defaultMaxConnections     = 1000
	defaultRedisAddr          = "localhost:6379"
	defaultRoundDuration      = 10
	defaultInterRoundDuration = 5
	defaultTickInterval       = 1000
	defaultFetchTimeout       = 10
	defaultQuestionsURL       = "https://opentdb.com/api.php"
	defaultQuestionAmount     = 10
)

// Config 服务端配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Game      GameConfig      `yaml:"game"`
	Questions QuestionsConfig `yaml:"questions"`
	Security  SecurityConfig  `yaml:"security"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"` // 最大并发连接数
}

// RedisConfig Redis 配置，关闭时房间快照和题库缓存均不启用
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	RoundDuration         int `yaml:"round_duration"`          // 答题时长（秒）
	InterRoundDuration    int `yaml:"inter_round_duration"`    // 回合间隔（秒）
	TickInterval          int `yaml:"tick_interval"`           // 推进周期（毫秒）
	FetchTimeout          int `yaml:"fetch_timeout"`           // 拉取题目超时（秒）
	ShutdownTimeout       int `yaml:"shutdown_timeout"`        // 优雅关闭等待时长（秒）
	ShutdownCheckInterval int `yaml:"shutdown_check_interval"` // 关闭时检查间隔（秒）
}

// RoundDurationTime 返回答题时长
func (c *GameConfig) RoundDurationTime() time.Duration {
	return time.Duration(c.RoundDuration) * time.Second
}

// InterRoundDurationTime 返回回合间隔
func (c *GameConfig) InterRoundDurationTime() time.Duration {
	return time.Duration(c.InterRoundDuration) * time.Second
}

// TickIntervalDuration 返回推进周期
func (c *GameConfig) TickIntervalDuration() time.Duration {
	return time.Duration(c.TickInterval) * time.Millisecond
}

// FetchTimeoutDuration 返回拉取题目超时
func (c *GameConfig) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

// ShutdownTimeoutDuration 返回优雅关闭等待时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// ShutdownCheckIntervalDuration 返回关闭时检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// QuestionsConfig 题目来源配置
type QuestionsConfig struct {
	Source     string `yaml:"source"` // opentdb | file
	URL        string `yaml:"url"`
	Amount     int    `yaml:"amount"`
	Difficulty string `yaml:"difficulty"`
	File       string `yaml:"file"`
	CacheSize  int    `yaml:"cache_size"` // Redis 中保留的题组数量
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 封禁时长（秒）
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig 消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
	File   string `yaml:"file"`   // 为空则只输出到标准错误
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}

	if c.Game.RoundDuration == 0 {
		c.Game.RoundDuration = defaultRoundDuration
	}
	if c.Game.InterRoundDuration == 0 {
		c.Game.InterRoundDuration = defaultInterRoundDuration
	}
	if c.Game.TickInterval == 0 {
		c.Game.TickInterval = defaultTickInterval
	}
	if c.Game.FetchTimeout == 0 {
		c.Game.FetchTimeout = defaultFetchTimeout
	}
	if c.Game.ShutdownTimeout == 0 {
		c.Game.ShutdownTimeout = 60
	}
	if c.Game.ShutdownCheckInterval == 0 {
		c.Game.ShutdownCheckInterval = 5
	}

	if c.Questions.Source == "" {
		c.Questions.Source = SourceOpenTDB
	}
	if c.Questions.URL == "" {
		c.Questions.URL = defaultQuestionsURL
	}
	if c.Questions.Amount == 0 {
		c.Questions.Amount = defaultQuestionAmount
	}
	if c.Questions.Difficulty == "" {
		c.Questions.Difficulty = "easy"
	}
	if c.Questions.CacheSize == 0 {
		c.Questions.CacheSize = 20
	}

	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
	if c.Security.RateLimit.MaxPerSecond == 0 {
		c.Security.RateLimit.MaxPerSecond = 10
	}
	if c.Security.RateLimit.MaxPerMinute == 0 {
		c.Security.RateLimit.MaxPerMinute = 60
	}
	if c.Security.RateLimit.BanDuration == 0 {
		c.Security.RateLimit.BanDuration = 60
	}
	if c.Security.MessageLimit.MaxPerSecond == 0 {
		c.Security.MessageLimit.MaxPerSecond = 20
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("无效的端口: %d", c.Server.Port)
	}
	if c.Server.MaxConnections < 0 {
		return errors.New("max_connections 不能为负数")
	}
	if c.Game.RoundDuration < 0 || c.Game.InterRoundDuration < 0 ||
		c.Game.TickInterval < 0 || c.Game.FetchTimeout < 0 {
		return errors.New("游戏时长配置不能为负数")
	}
	switch c.Questions.Source {
	case SourceOpenTDB:
	case SourceFile:
		if c.Questions.File == "" {
			return errors.New("questions.source 为 file 时必须配置 questions.file")
		}
	default:
		return fmt.Errorf("未知的题目来源: %q", c.Questions.Source)
	}
	if c.Questions.Amount < 0 {
		return errors.New("questions.amount 不能为负数")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("未知的日志格式: %q", c.Log.Format)
	}
	return nil
}

// ApplyEnv 使用环境变量覆盖配置
func (c *Config) ApplyEnv() {
	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil && port > 0 {
		c.Server.Port = port
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.Redis.Password = password
	}
	if enabled, err := strconv.ParseBool(os.Getenv("REDIS_ENABLED")); err == nil {
		c.Redis.Enabled = enabled
	}
	if source := os.Getenv("QUESTIONS_SOURCE"); source != "" {
		c.Questions.Source = source
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// Addr 返回监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
