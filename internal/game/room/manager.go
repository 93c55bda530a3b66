package room

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/quiz-party/internal/game/round"
	"github.com/palemoky/quiz-party/internal/protocol"
	"github.com/palemoky/quiz-party/internal/server/storage"
)

// JoinOrCreate 获取或创建房间，并在管理器锁内执行 join，
// 保证"房间存在"与"加入玩家"之间没有竞态窗口
func (rm *RoomManager) JoinOrCreate(roomID string, join func(r *Room)) (room *Room, created bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, exists := rm.rooms[roomID]
	if !exists {
		room = &Room{
			ID:        roomID,
			CreatedAt: rm.clock.Now(),
			engine:    round.NewEngine(rm.timing),
		}
		rm.rooms[roomID] = room
		created = true
		log.Info().Str("room", roomID).Msg("🏠 房间已创建")
	}

	if join != nil {
		join(room)
	}
	return room, created
}

// GetRoom 获取房间，不存在时返回 nil
func (rm *RoomManager) GetRoom(roomID string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[roomID]
}

// Rooms 当前全部房间
func (rm *RoomManager) Rooms() []*Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// DeleteIfEmpty 在管理器锁内复查 isEmpty 后删除房间，避免与并发加入竞争
func (rm *RoomManager) DeleteIfEmpty(roomID string, isEmpty func() bool) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, exists := rm.rooms[roomID]; !exists || !isEmpty() {
		return false
	}
	delete(rm.rooms, roomID)

	if rm.writer != nil {
		rm.writer.enqueue(storeOp{roomID: roomID})
	}

	log.Info().Str("room", roomID).Msg("🏠 房间已解散")
	return true
}

// Persist 异步写入房间快照。写入与删除由同一协程按登记顺序执行，
// 同一房间只写最新的快照
func (rm *RoomManager) Persist(roomID string, data *storage.RoomData) {
	if rm.writer == nil || data == nil {
		return
	}
	rm.writer.enqueue(storeOp{roomID: roomID, data: data})
}

// Count 房间数
func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// GetActiveGamesCount 进行中的房间数（答题或回合间隔）
func (rm *RoomManager) GetActiveGamesCount() int {
	count := 0
	for _, room := range rm.Rooms() {
		if room.Status().Running() {
			count++
		}
	}
	return count
}

// Summaries 房间列表，按房间 ID 排序
func (rm *RoomManager) Summaries(countOf func(roomID string) int) []protocol.RoomSummary {
	rooms := rm.Rooms()
	summaries := make([]protocol.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		snap := room.Snapshot()
		summaries = append(summaries, protocol.RoomSummary{
			RoomID:       room.ID,
			Status:       string(snap.Status),
			CurrentRound: snap.CurrentRound,
			TotalRounds:  snap.TotalRounds,
			Participants: countOf(room.ID),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].RoomID < summaries[j].RoomID })
	return summaries
}

