// Package model contains the UI model implementation.
package model

import (
	"time"

	"github.com/palemoky/quiz-party/internal/protocol"
)

// Conn 界面使用的连接操作，由 transport.Client 实现
type Conn interface {
	Connect() error
	Receive() (*protocol.Message, error)
	StartHeartbeat()
	Latency() int64
	Close()

	JoinGame(name string) error
	LeaveGame() error
	StartGame() error
	SendAnswer(questionID, answerID string) error
}

// SoundPlayer 提示音播放，由 sound.SoundManager 实现
type SoundPlayer interface {
	Init() error
	Play(name string)
	Close()
}

// --- Tea Messages ---

// ServerMessage wraps a protocol message for tea.Msg.
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg indicates successful connection.
type ConnectedMsg struct{}

// ConnectionErrorMsg indicates a connection error.
type ConnectionErrorMsg struct {
	Err error
}

// TickMsg 刷新倒计时
type TickMsg time.Time
