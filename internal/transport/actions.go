package transport

import (
	"time"

	"github.com/palemoky/quiz-party/internal/protocol"
)

// --- 便捷方法 ---

// JoinGame 设置昵称
func (c *Client) JoinGame(name string) error {
	return c.SendClientMessage(&protocol.ClientMessage{Type: protocol.MsgJoinGame, Name: name})
}

// LeaveGame 通知房间离开
func (c *Client) LeaveGame() error {
	return c.SendClientMessage(&protocol.ClientMessage{Type: protocol.MsgLeaveGame})
}

// StartGame 开始游戏
func (c *Client) StartGame() error {
	return c.SendClientMessage(&protocol.ClientMessage{Type: protocol.MsgStartGame})
}

// SendAnswer 提交答案
func (c *Client) SendAnswer(questionID, answerID string) error {
	return c.SendClientMessage(&protocol.ClientMessage{
		Type:       protocol.MsgSendAnswer,
		QuestionID: questionID,
		AnswerID:   answerID,
	})
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendClientMessage(&protocol.ClientMessage{
		Type:      protocol.MsgPing,
		Timestamp: time.Now().UnixMilli(),
	})
}

// StartHeartbeat 启动心跳检测
func (c *Client) StartHeartbeat() {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.IsConnected() {
					_ = c.Ping()
				}
			case <-c.done:
				return
			}
		}
	}()
}
