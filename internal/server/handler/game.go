package handler

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/quiz-party/internal/apperrors"
	"github.com/palemoky/quiz-party/internal/game/room"
	"github.com/palemoky/quiz-party/internal/game/round"
	"github.com/palemoky/quiz-party/internal/protocol"
	"github.com/palemoky/quiz-party/internal/protocol/codec"
	"github.com/palemoky/quiz-party/internal/server/session"
	"github.com/palemoky/quiz-party/internal/types"
)

// handleStartGame 开始游戏：在房间锁内进入 starting，锁外异步拉取题目
func (h *Handler) handleStartGame(conn types.Connection, p session.Participant, _ *protocol.ClientMessage) {
	if h.server != nil && h.server.IsMaintenanceMode() {
		conn.SendMessage(codec.NewErrorFromErr(apperrors.ErrServerMaintenance))
		return
	}

	r := h.roomManager.GetRoom(p.RoomID)
	if r == nil {
		conn.SendMessage(codec.NewErrorFromErr(apperrors.ErrRoomNotFound))
		return
	}

	var err error
	r.WithEngine(func(e *round.Engine) {
		if err = e.BeginStart(); err != nil {
			return
		}
		h.PublishState(r.ID, e.Snapshot())
	})
	if err != nil {
		conn.SendMessage(codec.NewErrorFromErr(err))
		return
	}

	log.Info().Str("room", r.ID).Str("player", p.ID).Msg("🎬 开始拉取题目")
	h.inflight.Go(func() { h.fetchAndStart(r, p) })
}

// fetchAndStart 拉取题目后进入第一回合，失败时退回开始前的状态
func (h *Handler) fetchAndStart(r *room.Room, p session.Participant) {
	ctx, cancel := context.WithTimeout(context.Background(), h.fetchTimeout)
	defer cancel()

	questions, err := h.provider.FetchQuestions(ctx)

	// 房间已被回收，不再广播或写入快照
	alive := h.roomManager.GetRoom(r.ID) == r

	r.WithEngine(func(e *round.Engine) {
		if err != nil {
			e.AbortStart()
		} else {
			err = e.CompleteStart(questions, h.clock.Now())
		}
		if alive {
			h.PublishState(r.ID, e.Snapshot())
		}
	})

	if err != nil {
		log.Warn().Err(err).Str("room", r.ID).Msg("❌ 题目拉取失败，房间保持未开始")
		h.fanout.SendToParticipant(p.ID, codec.NewErrorFromErr(apperrors.QuestionProviderFailure(err)))
		return
	}

	log.Info().Str("room", r.ID).Int("questions", len(questions)).Msg("🚀 游戏开始")
}

// handleSendAnswer 记录答案并向房间确认，不公开所选答案
func (h *Handler) handleSendAnswer(conn types.Connection, p session.Participant, msg *protocol.ClientMessage) {
	r := h.roomManager.GetRoom(p.RoomID)
	if r == nil {
		conn.SendMessage(codec.NewErrorFromErr(apperrors.ErrRoomNotFound))
		return
	}

	var err error
	r.WithEngine(func(e *round.Engine) {
		err = e.SubmitAnswer(round.SubmittedAnswer{
			ParticipantID: p.ID,
			QuestionID:    msg.QuestionID,
			AnswerID:      msg.AnswerID,
			SubmittedAt:   h.clock.Now(),
		})
		if err != nil {
			return
		}
		h.fanout.BroadcastToRoom(r.ID, codec.MustNewMessage(protocol.MsgAnswerReceived, protocol.AnswerReceivedPayload{
			ParticipantID: p.ID,
			QuestionID:    msg.QuestionID,
		}))
	})
	if err != nil {
		conn.SendMessage(codec.NewErrorFromErr(err))
	}
}
