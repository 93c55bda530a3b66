package apperrors

import (
	"github.com/palemoky/quiz-party/internal/protocol"
)

// GameError 游戏错误（房间、会话与消息处理共享）
type GameError struct {
	Code    int
	Message string
	Err     error // 底层原因，可为空
}

func (e *GameError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *GameError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，派生错误也能匹配预定义错误
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// 预定义错误
var (
	ErrInvalidMessage      = newError(protocol.ErrCodeInvalidMsg)
	ErrAlreadyRunning      = newError(protocol.ErrCodeAlreadyRunning)
	ErrNotAcceptingAnswers = newError(protocol.ErrCodeNotAccepting)
	ErrQuestionProvider    = newError(protocol.ErrCodeQuestionProvider)
	ErrUnknownParticipant  = newError(protocol.ErrCodeUnknownParticipant)
	ErrRoomNotFound        = newError(protocol.ErrCodeRoomNotFound)
	ErrServerMaintenance   = newError(protocol.ErrCodeServerMaintenance)
)

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// InvalidMessage 带具体描述的消息格式错误
func InvalidMessage(detail string) *GameError {
	return &GameError{Code: protocol.ErrCodeInvalidMsg, Message: detail}
}

// QuestionProviderFailure 包装题目获取失败的原因
func QuestionProviderFailure(err error) *GameError {
	return &GameError{
		Code:    protocol.ErrCodeQuestionProvider,
		Message: protocol.ErrorMessages[protocol.ErrCodeQuestionProvider],
		Err:     err,
	}
}
