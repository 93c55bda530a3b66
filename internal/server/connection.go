package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// handleWebSocket 处理 /game/{id} 的 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)
	roomID := r.PathValue("id")
	if roomID == "" {
		http.Error(w, "Room id required", http.StatusBadRequest)
		return
	}

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		log.Info().Str("ip", clientIP).Msg("🔧 维护模式，拒绝新连接")
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	// 连接数限制检查，连接结束时释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Warn().Int("max", s.maxConnections).Str("ip", clientIP).Msg("🚫 达到最大连接数限制")
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}
	release := func() { <-s.semaphore }

	if !s.originChecker.Check(r) {
		release()
		log.Warn().Str("origin", r.Header.Get("Origin")).Str("ip", clientIP).Msg("🚫 来源验证失败")
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	if !s.rateLimiter.Allow(clientIP) {
		release()
		log.Warn().Str("ip", clientIP).Msg("🚫 连接过于频繁")
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		release()
		log.Warn().Err(err).Str("ip", clientIP).Msg("WebSocket 升级失败")
		return
	}

	client := NewClient(s, conn, roomID)
	client.IP = clientIP

	go client.WritePump()
	p := s.handler.OnConnect(client, roomID)
	log.Info().Str("room", roomID).Str("player", p.ID).Str("ip", clientIP).Msg("✅ 玩家已连接")

	go func() {
		defer release()
		client.ReadPump()
	}()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleRooms 房间列表
func (s *Server) handleRooms(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.roomManager.Summaries(s.registry.CountOf)); err != nil {
		log.Warn().Err(err).Msg("房间列表编码失败")
	}
}
