package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/quiz-party/internal/protocol"
	"github.com/palemoky/quiz-party/internal/protocol/codec"
)

// statsInterval 统计日志周期
const statsInterval = 30 * time.Second

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := s.clock.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		log.Info().
			Int("online", s.GetOnlineCount()).
			Int("rooms", s.GetRoomCount()).
			Int("active_games", s.roomManager.GetActiveGamesCount()).
			Int("goroutines", runtime.NumGoroutine()).
			Str("conns", fmt.Sprintf("%d/%d", len(s.semaphore), s.maxConnections)).
			Float64("mem_mb", float64(m.Alloc)/1024/1024).
			Msg("📊 [监控]")
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接与开始新游戏
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.fanout.BroadcastToAll(codec.NewErrorMessageWithText(
		protocol.ErrCodeServerMaintenance,
		"👷🏻‍♂️ 维护模式：暂停新连接和新游戏",
	))

	log.Info().Msg("🔧 进入维护模式：停止新连接和新游戏")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 等待进行中的游戏结束（最多 timeout）后关闭服务器
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := s.clock.Now().Add(timeout)
	ticker := s.clock.NewTicker(s.config.Game.ShutdownCheckIntervalDuration())
	defer ticker.Stop()

	for s.clock.Now().Before(deadline) {
		activeGames := s.roomManager.GetActiveGamesCount()
		if activeGames == 0 {
			log.Info().Msg("✅ 所有房间已结束")
			break
		}
		log.Info().Int("rooms", activeGames).Msg("⏳ 等待房间结束")
		<-ticker.Chan()
	}

	if activeGames := s.roomManager.GetActiveGamesCount(); activeGames > 0 {
		log.Warn().Int("rooms", activeGames).Msg("⚠️ 超时，仍有房间进行中，强制关闭")
	}

	s.fanout.BroadcastToAll(codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance, "🚧 服务器即将停机维护！"))

	s.Shutdown()
}

// Shutdown 停止后台任务，关闭所有连接、HTTP 服务与 Redis
func (s *Server) Shutdown() {
	s.lifeMu.Lock()
	cancel, httpServer := s.cancel, s.httpServer
	s.lifeMu.Unlock()

	if cancel != nil {
		cancel()
	}

	for _, conn := range s.registry.All() {
		conn.Close()
	}

	if httpServer != nil {
		ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("HTTP 服务关闭失败")
		}
	}

	s.handler.Wait()
	// 快照写完再关闭 Redis
	s.roomManager.Close()

	if s.redis != nil {
		_ = s.redis.Close()
	}

	log.Info().Msg("服务器已关闭")
}
