// Package broadcast delivers messages to the connections of a room, a single
// participant, or everyone. Membership is resolved from the registry on every
// call and never cached.
package broadcast

import (
	"github.com/palemoky/quiz-party/internal/protocol"
	"github.com/palemoky/quiz-party/internal/types"
)

// Membership 成员查询，由 session.Registry 实现
type Membership interface {
	MembersOf(roomID string) []types.Connection
	ConnOf(participantID string) (types.Connection, bool)
	All() []types.Connection
}

// Fanout 广播器
type Fanout struct {
	members Membership
}

// NewFanout 创建广播器
func NewFanout(members Membership) *Fanout {
	return &Fanout{members: members}
}

// BroadcastToRoom 发送给房间内的全部连接，已关闭的连接直接跳过
func (f *Fanout) BroadcastToRoom(roomID string, msg *protocol.Message) int {
	return deliver(f.members.MembersOf(roomID), msg)
}

// SendToParticipant 发送给指定玩家，玩家不存在时为空操作
func (f *Fanout) SendToParticipant(participantID string, msg *protocol.Message) bool {
	conn, ok := f.members.ConnOf(participantID)
	if !ok || !conn.IsOpen() {
		return false
	}
	conn.SendMessage(msg)
	return true
}

// BroadcastToAll 发送给所有在线连接，忽略房间边界
func (f *Fanout) BroadcastToAll(msg *protocol.Message) int {
	return deliver(f.members.All(), msg)
}

func deliver(conns []types.Connection, msg *protocol.Message) int {
	sent := 0
	for _, conn := range conns {
		if !conn.IsOpen() {
			continue
		}
		conn.SendMessage(msg)
		sent++
	}
	return sent
}
