package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/quiz-party/internal/config"
	"github.com/palemoky/quiz-party/internal/logger"
	"github.com/palemoky/quiz-party/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	envPath := flag.String("env", ".env", "环境变量文件路径")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", *envPath).Msg("读取环境变量文件失败")
	}

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Msg("加载配置文件失败，使用默认配置")
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	// 环境变量可能覆盖出非法组合，需要重新校验
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("配置校验失败")
	}

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatal().Err(err).Msg("初始化日志失败")
	}
	defer logger.Close()

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("创建服务器失败")
	}

	// 优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		stop()
		log.Info().Msg("正在关闭服务器...")
		srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
	}()

	log.Info().Msg("🎮 答题派对服务器启动中...")
	if err := srv.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("服务器启动失败")
	}
	<-done
}
