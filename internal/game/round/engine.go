// Package round implements the per-room trivia state machine.
//
// The engine holds absolute deadlines and is advanced by AdvanceIfDue, a pure
// comparison against the supplied time, so a single global ticker can drive
// every room. The engine is not safe for concurrent use; the owning room
// serializes access.
package round

import (
	"time"

	"github.com/palemoky/quiz-party/internal/apperrors"
	"github.com/palemoky/quiz-party/internal/game/question"
)

// Status 房间游戏状态
type Status string

const (
	StatusWaitingToStart       Status = "WAITING_TO_START"
	StatusPlaying              Status = "PLAYING"
	StatusWaitingBetweenRounds Status = "WAITING_BETWEEN_ROUNDS"
	StatusFinished             Status = "FINISHED"
)

// Running 是否处于进行中（答题或回合间隔）
func (s Status) Running() bool {
	return s == StatusPlaying || s == StatusWaitingBetweenRounds
}

// Timing 回合计时
type Timing struct {
	RoundDuration      time.Duration
	InterRoundDuration time.Duration
}

// DefaultTiming 默认计时：答题 10 秒，间隔 5 秒
var DefaultTiming = Timing{
	RoundDuration:      10 * time.Second,
	InterRoundDuration: 5 * time.Second,
}

// SubmittedAnswer 答题记录
type SubmittedAnswer struct {
	ParticipantID string    `json:"participantId"`
	QuestionID    string    `json:"questionId"`
	AnswerID      string    `json:"answerId"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// State 状态机数据
type State struct {
	Status             Status
	CurrentRound       int
	TotalRounds        int
	Questions          []question.Question
	Answers            []SubmittedAnswer
	RoundDeadline      time.Time
	InterRoundDeadline time.Time
	// Starting 为 true 时正在拉取题目，此时拒绝答题和重复开始
	Starting bool
}

// Engine 单个房间的状态机
type Engine struct {
	timing Timing
	state  State
}

// NewEngine 创建状态机，初始为 WAITING_TO_START
func NewEngine(timing Timing) *Engine {
	return &Engine{
		timing: timing,
		state:  State{Status: StatusWaitingToStart},
	}
}

// Status 当前状态
func (e *Engine) Status() Status {
	return e.state.Status
}

// Starting 是否正在拉取题目
func (e *Engine) Starting() bool {
	return e.state.Starting
}

// BeginStart 进入 starting 子状态，调用方随后异步拉取题目，
// 再调用 CompleteStart 或 AbortStart
func (e *Engine) BeginStart() error {
	if e.state.Starting || e.state.Status.Running() {
		return apperrors.ErrAlreadyRunning
	}
	e.state.Starting = true
	return nil
}

// CompleteStart 题目到达后进入第一回合。题目为空视为拉取失败，状态保持不变
func (e *Engine) CompleteStart(questions []question.Question, now time.Time) error {
	if !e.state.Starting {
		return apperrors.ErrAlreadyRunning
	}
	e.state.Starting = false

	if len(questions) == 0 {
		return apperrors.QuestionProviderFailure(question.ErrEmptyQuestionSet)
	}

	qs := make([]question.Question, len(questions))
	for i, q := range questions {
		qs[i] = q.Clone()
	}

	e.state = State{
		Status:        StatusPlaying,
		CurrentRound:  1,
		TotalRounds:   len(qs),
		Questions:     qs,
		RoundDeadline: now.Add(e.timing.RoundDuration),
	}
	return nil
}

// AbortStart 拉取失败，退出 starting 子状态，保持原状态
func (e *Engine) AbortStart() {
	e.state.Starting = false
}

// SubmitAnswer 记录答案，仅在答题阶段接受。不校验对错，同一题可重复提交
func (e *Engine) SubmitAnswer(answer SubmittedAnswer) error {
	if e.state.Status != StatusPlaying || e.state.Starting {
		return apperrors.ErrNotAcceptingAnswers
	}
	e.state.Answers = append(e.state.Answers, answer)
	return nil
}

// AdvanceIfDue 截止时间已到则推进一步，返回是否变化及新状态。
// 同一 now 重复调用不会产生第二次变化
func (e *Engine) AdvanceIfDue(now time.Time) (bool, Status) {
	s := &e.state
	if s.Starting {
		return false, s.Status
	}

	switch s.Status {
	case StatusPlaying:
		if now.Before(s.RoundDeadline) {
			return false, s.Status
		}
		if s.CurrentRound >= s.TotalRounds {
			s.Status = StatusFinished
			return true, s.Status
		}
		s.Status = StatusWaitingBetweenRounds
		s.InterRoundDeadline = now.Add(e.timing.InterRoundDuration)
		return true, s.Status

	case StatusWaitingBetweenRounds:
		if now.Before(s.InterRoundDeadline) {
			return false, s.Status
		}
		s.Status = StatusPlaying
		s.CurrentRound++
		s.RoundDeadline = now.Add(e.timing.RoundDuration)
		return true, s.Status
	}

	return false, s.Status
}

// Snapshot 返回状态的只读深拷贝
func (e *Engine) Snapshot() State {
	snap := e.state
	if e.state.Questions != nil {
		snap.Questions = make([]question.Question, len(e.state.Questions))
		for i, q := range e.state.Questions {
			snap.Questions[i] = q.Clone()
		}
	}
	snap.Answers = append([]SubmittedAnswer(nil), e.state.Answers...)
	return snap
}
