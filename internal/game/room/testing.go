//go:build !production

package room

import (
	"github.com/palemoky/quiz-party/internal/game/round"
)

// NewRoomForTest 创建不归属任何管理器的房间
func NewRoomForTest(roomID string, timing round.Timing) *Room {
	return &Room{
		ID:     roomID,
		engine: round.NewEngine(timing),
	}
}

// AddRoomForTest 添加房间用于测试
func (rm *RoomManager) AddRoomForTest(room *Room) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rooms[room.ID] = room
}
