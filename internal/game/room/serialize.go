package room

import (
	"time"

	"github.com/palemoky/quiz-party/internal/game/round"
	"github.com/palemoky/quiz-party/internal/server/storage"
)

// ToRoomData 将状态快照转换为 Redis 存储格式
func ToRoomData(roomID string, st round.State, players []storage.PlayerData, now time.Time) *storage.RoomData {
	return &storage.RoomData{
		RoomID:       roomID,
		Status:       string(st.Status),
		CurrentRound: st.CurrentRound,
		TotalRounds:  st.TotalRounds,
		Starting:     st.Starting,
		Players:      players,
		AnswerCount:  len(st.Answers),
		Scores:       st.Scores(),
		UpdatedAt:    now.Unix(),
	}
}
