package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/quiz-party/internal/config"
	"github.com/palemoky/quiz-party/internal/game/question"
	"github.com/palemoky/quiz-party/internal/game/room"
	"github.com/palemoky/quiz-party/internal/game/round"
	"github.com/palemoky/quiz-party/internal/game/tick"
	"github.com/palemoky/quiz-party/internal/server/broadcast"
	"github.com/palemoky/quiz-party/internal/server/handler"
	"github.com/palemoky/quiz-party/internal/server/session"
	"github.com/palemoky/quiz-party/internal/server/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 来源已由 OriginChecker 在升级前校验
	CheckOrigin:       func(*http.Request) bool { return true },
	EnableCompression: false,
}

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	clock       clockwork.Clock
	redis       *redis.Client
	redisStore  *storage.RedisStore
	registry    *session.Registry
	roomManager *room.RoomManager
	fanout      *broadcast.Fanout
	handler     *handler.Handler
	driver      *tick.Driver

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	httpServer *http.Server
	cancel     context.CancelFunc
	lifeMu     sync.Mutex
}

// Option 服务器选项
type Option func(*options)

type options struct {
	clock    clockwork.Clock
	provider question.Provider
	redis    *redis.Client
}

// WithClock 替换时钟（测试使用假时钟）
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithProvider 替换题目来源
func WithProvider(p question.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithRedis 使用已创建的 Redis 客户端，忽略 Redis 配置中的地址
func WithRedis(client *redis.Client) Option {
	return func(o *options) { o.redis = client }
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	rdb := o.redis
	if rdb == nil && cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis 连接失败: %w", err)
		}
	}

	s := &Server{
		config:      cfg,
		clock:       o.clock,
		redis:       rdb,
		redisStore:  storage.NewRedisStore(rdb),
		registry:    session.NewRegistry(o.clock),
		rateLimiter: NewRateLimiter(o.clock,
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(o.clock, cfg.Security.MessageLimit.MaxPerSecond),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.redisStore.SetQuestionSetLimit(cfg.Questions.CacheSize)

	provider := o.provider
	if provider == nil {
		var err error
		if provider, err = newProvider(cfg.Questions, s.questionCache()); err != nil {
			return nil, err
		}
	}

	timing := round.Timing{
		RoundDuration:      cfg.Game.RoundDurationTime(),
		InterRoundDuration: cfg.Game.InterRoundDurationTime(),
	}
	var store room.RoomStore
	if s.redisStore.Enabled() {
		store = s.redisStore
	}
	s.roomManager = room.NewRoomManager(store, timing, o.clock)
	s.fanout = broadcast.NewFanout(s.registry)

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:       s,
		Registry:     s.registry,
		RoomManager:  s.roomManager,
		Fanout:       s.fanout,
		Provider:     provider,
		Clock:        o.clock,
		FetchTimeout: cfg.Game.FetchTimeoutDuration(),
	})
	s.driver = tick.NewDriver(o.clock, cfg.Game.TickIntervalDuration(), s.roomManager, s.registry, s.handler)

	log.Info().
		Int("conn_rate", cfg.Security.RateLimit.MaxPerSecond).
		Int("msg_rate", cfg.Security.MessageLimit.MaxPerSecond).
		Int("max_conns", cfg.Server.MaxConnections).
		Bool("redis", rdb != nil).
		Str("questions", cfg.Questions.Source).
		Msg("🔒 服务器配置已加载")

	return s, nil
}

// questionCache Redis 启用时作为题目缓存
func (s *Server) questionCache() question.Cache {
	if !s.redisStore.Enabled() {
		return nil
	}
	return s.redisStore
}

// newProvider 按配置选择题目来源，有缓存时包装为带回退的来源
func newProvider(cfg config.QuestionsConfig, cache question.Cache) (question.Provider, error) {
	var provider question.Provider
	switch cfg.Source {
	case config.SourceFile:
		fp, err := question.LoadFileProvider(cfg.File, cfg.Amount)
		if err != nil {
			return nil, fmt.Errorf("加载题库失败: %w", err)
		}
		provider = fp
	default:
		provider = question.NewOpenTDBProvider(cfg.URL, cfg.Amount, cfg.Difficulty)
	}

	if cache != nil {
		provider = question.NewCachingProvider(provider, cache)
	}
	return provider, nil
}

// Handler HTTP 路由（含 CORS）
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /game/{id}", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /rooms", s.handleRooms)

	return cors.New(cors.Options{
		AllowedOrigins: s.originChecker.Origins(),
		AllowedMethods: []string{http.MethodGet},
	}).Handler(mux)
}

// Start 启动后台任务并监听 HTTP，Shutdown 后返回 nil
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	addr := s.config.Server.Addr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.lifeMu.Lock()
	s.cancel = cancel
	s.httpServer = httpServer
	s.lifeMu.Unlock()

	s.startBackground(ctx)

	log.Info().Str("addr", addr).Int("cpus", runtime.NumCPU()).Msgf("🚀 服务器启动在 ws://%s/game/{id}", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		return err
	}
	return nil
}

// startBackground 启动时钟驱动、统计与限流清理
func (s *Server) startBackground(ctx context.Context) {
	s.purgeStaleRooms(ctx)

	go s.driver.Run(ctx)
	go s.rateLimiter.RunCleanup(ctx)
	go s.monitorStats(ctx)
}

// purgeStaleRooms 房间只存在于内存，启动时清理上次运行留下的快照
func (s *Server) purgeStaleRooms(ctx context.Context) {
	if !s.redisStore.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ids, err := s.redisStore.GetAllRoomIDs(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("读取房间快照失败")
		return
	}
	for _, id := range ids {
		if err := s.redisStore.DeleteRoom(ctx, id); err != nil {
			log.Warn().Err(err).Str("room", id).Msg("清理房间快照失败")
		}
	}
	if len(ids) > 0 {
		log.Info().Int("rooms", len(ids)).Msg("🧹 已清理过期房间快照")
	}
}
