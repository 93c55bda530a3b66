//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/quiz-party/internal/protocol"
)

// MockClient 实现 types.Connection 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) IsOpen() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 线程安全的记录型客户端，不使用 testify（用于不需要断言调用的测试）
type SimpleClient struct {
	mu       sync.Mutex
	messages []*protocol.Message
	closed   bool
}

// NewSimpleClient 创建处于打开状态的客户端
func NewSimpleClient() *SimpleClient {
	return &SimpleClient{}
}

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Messages 返回已收到消息的副本
func (c *SimpleClient) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*protocol.Message(nil), c.messages...)
}

// MessagesOfType 返回指定类型的消息
func (c *SimpleClient) MessagesOfType(msgType protocol.MessageType) []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*protocol.Message
	for _, msg := range c.messages {
		if msg.Type == msgType {
			out = append(out, msg)
		}
	}
	return out
}

// LastMessage 最后一条消息，没有时返回 nil
func (c *SimpleClient) LastMessage() *protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// Reset 清空已收到的消息
func (c *SimpleClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
