package room

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/palemoky/quiz-party/internal/game/round"
	"github.com/palemoky/quiz-party/internal/server/storage"
)

// RoomStore 房间快照存储
type RoomStore interface {
	SaveRoom(ctx context.Context, roomID string, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, roomID string) error
}

// Room 游戏房间，每个房间独占一个状态机，由房间锁串行化所有修改
type Room struct {
	ID        string    // 房间 ID，同时是广播地址
	CreatedAt time.Time // 创建时间

	engine *round.Engine
	mu     sync.Mutex
}

// WithEngine 在房间锁内操作状态机。fn 内发出的广播保持提交顺序
func (r *Room) WithEngine(fn func(e *round.Engine)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.engine)
}

// Snapshot 状态快照
func (r *Room) Snapshot() round.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Snapshot()
}

// Status 当前状态
func (r *Room) Status() round.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Status()
}

// RoomManager 房间管理器
type RoomManager struct {
	store  RoomStore
	timing round.Timing
	clock  clockwork.Clock
	rooms  map[string]*Room
	mu     sync.RWMutex

	writer *snapshotWriter
}

// NewRoomManager 创建房间管理器，store 可为 nil
func NewRoomManager(store RoomStore, timing round.Timing, clock clockwork.Clock) *RoomManager {
	rm := &RoomManager{
		store:  store,
		timing: timing,
		clock:  clock,
		rooms:  make(map[string]*Room),
	}
	if store != nil {
		rm.writer = newSnapshotWriter(store, func(roomID string) bool { return rm.GetRoom(roomID) != nil })
	}
	return rm
}

// Close 等待已登记的快照操作写完，之后的 Persist 与删除不再写入存储
func (rm *RoomManager) Close() {
	if rm.writer != nil {
		rm.writer.close()
	}
}
