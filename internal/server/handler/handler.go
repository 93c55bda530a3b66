package handler

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/quiz-party/internal/game/question"
	"github.com/palemoky/quiz-party/internal/game/room"
	"github.com/palemoky/quiz-party/internal/game/round"
	"github.com/palemoky/quiz-party/internal/protocol"
	"github.com/palemoky/quiz-party/internal/protocol/codec"
	"github.com/palemoky/quiz-party/internal/protocol/convert"
	"github.com/palemoky/quiz-party/internal/server/broadcast"
	"github.com/palemoky/quiz-party/internal/server/session"
	"github.com/palemoky/quiz-party/internal/server/storage"
	"github.com/palemoky/quiz-party/internal/types"
)

// defaultFetchTimeout 未配置时拉取题目的超时
const defaultFetchTimeout = 10 * time.Second

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server       types.ServerInterface
	Registry     *session.Registry
	RoomManager  *room.RoomManager
	Fanout       *broadcast.Fanout
	Provider     question.Provider
	Clock        clockwork.Clock
	FetchTimeout time.Duration
}

// Handler 消息处理器
type Handler struct {
	server       types.ServerInterface
	registry     *session.Registry
	roomManager  *room.RoomManager
	fanout       *broadcast.Fanout
	provider     question.Provider
	clock        clockwork.Clock
	fetchTimeout time.Duration
	handlers     map[protocol.MessageType]handlerFunc
	inflight     sync.WaitGroup
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(conn types.Connection, p session.Participant, msg *protocol.ClientMessage)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.FetchTimeout <= 0 {
		deps.FetchTimeout = defaultFetchTimeout
	}
	if deps.Fanout == nil {
		deps.Fanout = broadcast.NewFanout(deps.Registry)
	}

	h := &Handler{
		server:       deps.Server,
		registry:     deps.Registry,
		roomManager:  deps.RoomManager,
		fanout:       deps.Fanout,
		provider:     deps.Provider,
		clock:        deps.Clock,
		fetchTimeout: deps.FetchTimeout,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing:      h.handlePing,
		protocol.MsgJoinGame:  h.handleJoinGame,
		protocol.MsgLeaveGame: h.handleLeaveGame,

		// 游戏操作
		protocol.MsgStartGame:  h.handleStartGame,
		protocol.MsgSendAnswer: h.handleSendAnswer,
	}
}

// OnConnect 连接建立：加入（必要时创建）房间，单播身份后广播房间状态
func (h *Handler) OnConnect(conn types.Connection, roomID string) session.Participant {
	var p session.Participant
	r, _ := h.roomManager.JoinOrCreate(roomID, func(*room.Room) {
		p = h.registry.Register(conn, roomID)
		conn.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
			ParticipantID: p.ID,
			RoomID:        roomID,
			Name:          p.Name,
		}))
	})

	r.WithEngine(func(e *round.Engine) {
		h.PublishState(roomID, e.Snapshot())
	})

	log.Info().Str("room", roomID).Str("player", p.ID).Str("name", p.Name).Msg("👤 玩家加入房间")
	return p
}

// OnMessage 处理一条原始消息。未注册的连接直接丢弃，格式错误只回复发送者
func (h *Handler) OnMessage(conn types.Connection, raw []byte) {
	p, ok := h.registry.Lookup(conn)
	if !ok {
		log.Debug().Int("bytes", len(raw)).Msg("丢弃未注册连接的消息")
		return
	}

	msg, err := codec.DecodeClientMessage(raw)
	if err != nil {
		log.Debug().Err(err).Str("player", p.ID).Msg("⚠️ 无效消息")
		conn.SendMessage(codec.NewErrorFromErr(err))
		return
	}

	if handler, ok := h.handlers[msg.Type]; ok {
		handler(conn, p, msg)
		return
	}

	log.Warn().Str("type", string(msg.Type)).Str("player", p.ID).Msg("⚠️ 未注册的消息类型")
	conn.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// OnDisconnect 连接断开：注销玩家，最后一人离开时删除房间，否则通知房间
func (h *Handler) OnDisconnect(conn types.Connection) {
	p, roomEmpty, ok := h.registry.Unregister(conn)
	if !ok {
		return
	}
	log.Info().Str("room", p.RoomID).Str("player", p.ID).Msg("👋 玩家断开连接")

	if roomEmpty {
		h.roomManager.DeleteIfEmpty(p.RoomID, func() bool { return h.registry.CountOf(p.RoomID) == 0 })
		return
	}

	r := h.roomManager.GetRoom(p.RoomID)
	if r == nil {
		return
	}
	r.WithEngine(func(e *round.Engine) {
		h.fanout.BroadcastToRoom(p.RoomID, codec.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
			ParticipantID: p.ID,
			Name:          p.Name,
		}))
		h.PublishState(p.RoomID, e.Snapshot())
	})
}

// PublishState 广播房间状态并异步写入快照。调用方需持有房间锁以保证顺序
func (h *Handler) PublishState(roomID string, st round.State) {
	now := h.clock.Now()
	participants := h.registry.ParticipantsOf(roomID)

	payload := convert.GameState(roomID, st, participants, now)
	h.fanout.BroadcastToRoom(roomID, codec.MustNewMessage(protocol.MsgGameState, payload))

	players := make([]storage.PlayerData, len(participants))
	for i, p := range participants {
		players[i] = storage.PlayerData{ID: p.ID, Name: p.Name}
	}
	h.roomManager.Persist(roomID, room.ToRoomData(roomID, st, players, now))
}

// Wait 等待所有进行中的题目拉取结束
func (h *Handler) Wait() {
	h.inflight.Wait()
}
