package types

import (
	"github.com/palemoky/quiz-party/internal/protocol"
)

// Connection 一条玩家连接（用于打破 server 与 session/broadcast 之间的循环依赖）
type Connection interface {
	SendMessage(msg *protocol.Message)
	IsOpen() bool
	Close()
}

// ServerInterface 定义服务器接口
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
}
