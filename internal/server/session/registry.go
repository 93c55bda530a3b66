package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/palemoky/quiz-party/internal/types"
)

// Participant 房间内的玩家
type Participant struct {
	ID       string
	Name     string
	RoomID   string
	JoinedAt time.Time
}

// Registry 连接 ↔ 玩家 ↔ 房间 的双向映射。
// 注册表不会在持锁时回调外部代码，可以在房间锁内安全调用
type Registry struct {
	byConn        map[types.Connection]*Participant
	byParticipant map[string]types.Connection
	rooms         map[string]map[types.Connection]struct{}
	clock         clockwork.Clock
	mu            sync.RWMutex
}

// NewRegistry 创建注册表，clock 为 nil 时使用真实时钟
func NewRegistry(clock clockwork.Clock) *Registry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Registry{
		clock:         clock,
		byConn:        make(map[types.Connection]*Participant),
		byParticipant: make(map[string]types.Connection),
		rooms:         make(map[string]map[types.Connection]struct{}),
	}
}

// Register 为连接分配新玩家 ID 并加入房间。同一连接重复注册会先离开原房间
func (r *Registry) Register(conn types.Connection, roomID string) Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byConn[conn]; ok {
		r.removeLocked(conn, old)
	}

	p := &Participant{
		ID:       uuid.NewString(),
		Name:     GenerateNickname(),
		RoomID:   roomID,
		JoinedAt: r.clock.Now(),
	}
	r.byConn[conn] = p
	r.byParticipant[p.ID] = conn

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[types.Connection]struct{})
		r.rooms[roomID] = members
	}
	members[conn] = struct{}{}

	return *p
}

// Unregister 注销连接，roomEmpty 表示这是房间最后一名玩家。未知连接返回 ok=false
func (r *Registry) Unregister(conn types.Connection) (p Participant, roomEmpty bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, found := r.byConn[conn]
	if !found {
		return Participant{}, false, false
	}

	roomEmpty = r.removeLocked(conn, existing)
	return *existing, roomEmpty, true
}

func (r *Registry) removeLocked(conn types.Connection, p *Participant) bool {
	delete(r.byConn, conn)
	delete(r.byParticipant, p.ID)

	members := r.rooms[p.RoomID]
	delete(members, conn)
	if len(members) == 0 {
		delete(r.rooms, p.RoomID)
		return true
	}
	return false
}

// Lookup 查询连接对应的玩家
func (r *Registry) Lookup(conn types.Connection) (Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byConn[conn]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// ConnOf 查询玩家对应的连接
func (r *Registry) ConnOf(participantID string) (types.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byParticipant[participantID]
	return conn, ok
}

// MembersOf 房间内的全部连接
func (r *Registry) MembersOf(roomID string) []types.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	conns := make([]types.Connection, 0, len(members))
	for conn := range members {
		conns = append(conns, conn)
	}
	return conns
}

// ParticipantsOf 房间内的玩家，按加入时间排序
func (r *Registry) ParticipantsOf(roomID string) []Participant {
	r.mu.RLock()
	members := r.rooms[roomID]
	participants := make([]Participant, 0, len(members))
	for conn := range members {
		participants = append(participants, *r.byConn[conn])
	}
	r.mu.RUnlock()

	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].JoinedAt.Equal(participants[j].JoinedAt) {
			return participants[i].ID < participants[j].ID
		}
		return participants[i].JoinedAt.Before(participants[j].JoinedAt)
	})
	return participants
}

// CountOf 房间人数
func (r *Registry) CountOf(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// Rename 修改玩家昵称
func (r *Registry) Rename(conn types.Connection, name string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byConn[conn]
	if !ok {
		return Participant{}, false
	}
	p.Name = name
	return *p, true
}

// All 全部连接
func (r *Registry) All() []types.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]types.Connection, 0, len(r.byConn))
	for conn := range r.byConn {
		conns = append(conns, conn)
	}
	return conns
}

// Count 在线连接数
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
