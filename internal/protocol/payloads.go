package protocol

// --- 连接相关 ---

// ConnectedPayload 连接成功
type ConnectedPayload struct {
	ParticipantID string `json:"participantId"`
	RoomID        string `json:"roomId"`
	Name          string `json:"name"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

// ErrorPayload 错误
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- 房间通知 ---

// PlayerJoinedPayload 玩家加入
type PlayerJoinedPayload struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
}

// PlayerLeftPayload 玩家离开
type PlayerLeftPayload struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
}

// AnswerReceivedPayload 答案已收到（不公开所选答案）
type AnswerReceivedPayload struct {
	ParticipantID string `json:"participantId"`
	QuestionID    string `json:"questionId"`
}

// --- 状态快照 ---

// ParticipantInfo 玩家信息
type ParticipantInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AnswerInfo 选项
type AnswerInfo struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionInfo 题目，CorrectAnswerID 仅在本回合结束后下发
type QuestionInfo struct {
	ID              string       `json:"id"`
	Round           int          `json:"round"`
	Text            string       `json:"text"`
	Category        string       `json:"category,omitempty"`
	Difficulty      string       `json:"difficulty,omitempty"`
	Answers         []AnswerInfo `json:"answers"`
	CorrectAnswerID string       `json:"correctAnswerId,omitempty"`
}

// GameStatePayload 房间状态快照
type GameStatePayload struct {
	RoomID             string            `json:"roomId"`
	Status             string            `json:"status"`
	CurrentRound       int               `json:"currentRound"`
	TotalRounds        int               `json:"totalRounds"`
	Starting           bool              `json:"starting"`
	RoundEndsInMs      int64             `json:"roundEndsInMs"`
	InterRoundEndsInMs int64             `json:"interRoundEndsInMs"`
	Question           *QuestionInfo     `json:"question,omitempty"`
	Questions          []QuestionInfo    `json:"questions,omitempty"`
	Participants       []ParticipantInfo `json:"participants"`
	Scores             map[string]int    `json:"scores"`
	AnswerCount        int               `json:"answerCount"`
}

// RoomSummary 房间列表项（HTTP /rooms）
type RoomSummary struct {
	RoomID       string `json:"roomId"`
	Status       string `json:"status"`
	CurrentRound int    `json:"currentRound"`
	TotalRounds  int    `json:"totalRounds"`
	Participants int    `json:"participants"`
}
