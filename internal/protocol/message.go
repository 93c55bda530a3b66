package protocol

import "encoding/json"

// Message 服务端下发的消息信封
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgJoinGame   MessageType = "join-game"   // 设置昵称并通知房间
	MsgLeaveGame  MessageType = "leave-game"  // 通知房间离开
	MsgSendAnswer MessageType = "send-answer" // 提交答案
	MsgStartGame  MessageType = "start-game"  // 开始游戏
	MsgPing       MessageType = "ping"        // 心跳 ping
)

// 服务端 → 客户端 消息类型
const (
	MsgConnected      MessageType = "connected"       // 连接成功
	MsgGameState      MessageType = "game-state"      // 房间状态快照
	MsgPlayerJoined   MessageType = "player-joined"   // 玩家加入
	MsgPlayerLeft     MessageType = "player-left"     // 玩家离开
	MsgAnswerReceived MessageType = "answer-received" // 答案已收到
	MsgPong           MessageType = "pong"            // 心跳 pong
	MsgError          MessageType = "error"           // 错误
)

// ClientMessage 客户端上行消息，字段平铺在同一层
type ClientMessage struct {
	Type       MessageType `json:"type"`
	Name       string      `json:"name,omitempty"`
	QuestionID string      `json:"questionId,omitempty"`
	AnswerID   string      `json:"answerId,omitempty"`
	Timestamp  int64       `json:"timestamp,omitempty"`
}
