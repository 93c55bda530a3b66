package protocol

// 错误码
const (
	ErrCodeUnknown            = 1000
	ErrCodeInvalidMsg         = 1001
	ErrCodeRateLimit          = 1002 // 速率限制
	ErrCodeUnknownParticipant = 1003
	ErrCodeRoomNotFound       = 2001
	ErrCodeAlreadyRunning     = 3001 // 游戏已在进行中
	ErrCodeNotAccepting       = 3002 // 当前不接受答案
	ErrCodeQuestionProvider   = 3003 // 题目获取失败
	ErrCodeServerMaintenance  = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:            "未知错误",
	ErrCodeInvalidMsg:         "无效的消息格式",
	ErrCodeRateLimit:          "请求过于频繁",
	ErrCodeUnknownParticipant: "未知的玩家",
	ErrCodeRoomNotFound:       "房间不存在",
	ErrCodeAlreadyRunning:     "游戏已在进行中",
	ErrCodeNotAccepting:       "当前不在答题阶段",
	ErrCodeQuestionProvider:   "获取题目失败，请稍后再试",
	ErrCodeServerMaintenance:  "服务器维护中",
}
