package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/quiz-party/internal/logger"
	"github.com/palemoky/quiz-party/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:9000", "服务器地址")
	roomID := flag.String("room", "", "房间号，留空时创建新房间")
	flag.Parse()

	if err := logger.InitFile(".quiz-party"); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
	}
	defer logger.Close()

	room := *roomID
	if room == "" {
		room = uuid.NewString()[:8]
	}

	serverURL := url.URL{Scheme: "ws", Host: *serverAddr, Path: "/game/" + room}
	log.Info().Str("url", serverURL.String()).Msg("🚀 客户端启动")

	if err := ui.Run(serverURL.String()); err != nil {
		log.Error().Err(err).Msg("客户端异常退出")
		fmt.Fprintf(os.Stderr, "启动客户端时出错: %v\n", err)
		if path := logger.Path(); path != "" {
			fmt.Fprintf(os.Stderr, "详细日志: %s\n", path)
		}
		logger.Close()
		os.Exit(1)
	}
}
