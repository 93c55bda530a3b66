package handler

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/quiz-party/internal/game/round"
	"github.com/palemoky/quiz-party/internal/protocol"
	"github.com/palemoky/quiz-party/internal/protocol/codec"
	"github.com/palemoky/quiz-party/internal/server/session"
	"github.com/palemoky/quiz-party/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(conn types.Connection, _ session.Participant, msg *protocol.ClientMessage) {
	// 立即回复 pong
	conn.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: msg.Timestamp,
		ServerTimestamp: h.clock.Now().UnixMilli(),
	}))
}

// handleJoinGame 设置昵称并通知房间
func (h *Handler) handleJoinGame(conn types.Connection, p session.Participant, msg *protocol.ClientMessage) {
	renamed, ok := h.registry.Rename(conn, msg.Name)
	if !ok {
		return
	}

	r := h.roomManager.GetRoom(renamed.RoomID)
	if r == nil {
		conn.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRoomNotFound))
		return
	}

	r.WithEngine(func(e *round.Engine) {
		h.fanout.BroadcastToRoom(renamed.RoomID, codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
			ParticipantID: renamed.ID,
			Name:          renamed.Name,
		}))
		h.PublishState(renamed.RoomID, e.Snapshot())
	})

	log.Info().Str("room", renamed.RoomID).Str("player", p.ID).Str("from", p.Name).Str("to", renamed.Name).Msg("✏️ 玩家改名")
}

// handleLeaveGame 通知房间玩家离开，连接本身保持
func (h *Handler) handleLeaveGame(_ types.Connection, p session.Participant, _ *protocol.ClientMessage) {
	r := h.roomManager.GetRoom(p.RoomID)
	if r == nil {
		return
	}

	r.WithEngine(func(*round.Engine) {
		h.fanout.BroadcastToRoom(p.RoomID, codec.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
			ParticipantID: p.ID,
			Name:          p.Name,
		}))
	})
}
