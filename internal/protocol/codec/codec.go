package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/palemoky/quiz-party/internal/apperrors"
	"github.com/palemoky/quiz-party/internal/protocol"
)

// MaxNameLength 昵称最大长度（按字符计）
const MaxNameLength = 32

// NewMessage 创建一个新消息
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	var data json.RawMessage
	if payload != nil {
		var err error
		if data, err = marshalPayload(payload); err != nil {
			return nil, err
		}
	}
	return &protocol.Message{
		Type:    msgType,
		Payload: data,
	}, nil
}

// marshalPayload 与 Encode 一致，不转义 HTML 字符
func marshalPayload(payload any) (json.RawMessage, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return bytes.Clone(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 将消息编码为 JSON 字节
func Encode(msg *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}

	// Encoder 会追加换行，这里去掉并复制出缓冲区
	return bytes.Clone(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Decode 从 JSON 字节解码服务端消息
func Decode(data []byte) (*protocol.Message, error) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *protocol.Message {
	return NewErrorMessageWithText(code, protocol.ErrorMessages[code])
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *protocol.Message {
	msg, _ := NewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: text,
	})
	return msg
}

// NewErrorFromErr 将错误转换为错误消息，非 GameError 按未知错误处理
func NewErrorFromErr(err error) *protocol.Message {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		return NewErrorMessageWithText(gameErr.Code, gameErr.Message)
	}
	return NewErrorMessage(protocol.ErrCodeUnknown)
}

// EncodeClientMessage 编码客户端上行消息
func EncodeClientMessage(msg *protocol.ClientMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeClientMessage 解析并校验客户端上行消息
func DecodeClientMessage(data []byte) (*protocol.ClientMessage, error) {
	// 先确认是 JSON 对象，避免 "null"、数组等被当成空消息
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, apperrors.InvalidMessage("消息不是有效的 JSON 对象")
	}

	var msg protocol.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, apperrors.InvalidMessage(fmt.Sprintf("字段类型错误: %v", err))
	}

	switch msg.Type {
	case "":
		return nil, apperrors.InvalidMessage("缺少字段 type")
	case protocol.MsgJoinGame:
		if msg.Name == "" {
			return nil, apperrors.InvalidMessage("缺少字段 name")
		}
		if utf8.RuneCountInString(msg.Name) > MaxNameLength {
			return nil, apperrors.InvalidMessage(fmt.Sprintf("昵称不能超过 %d 个字符", MaxNameLength))
		}
	case protocol.MsgSendAnswer:
		if msg.QuestionID == "" {
			return nil, apperrors.InvalidMessage("缺少字段 questionId")
		}
		if msg.AnswerID == "" {
			return nil, apperrors.InvalidMessage("缺少字段 answerId")
		}
	case protocol.MsgLeaveGame, protocol.MsgStartGame, protocol.MsgPing:
	default:
		return nil, apperrors.InvalidMessage(fmt.Sprintf("未知的消息类型: %s", msg.Type))
	}

	return &msg, nil
}
