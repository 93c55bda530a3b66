// Package client keeps the terminal client's view of its room, rebuilt from
// server messages.
package client

import (
	"fmt"
	"sort"
	"time"

	"github.com/palemoky/quiz-party/internal/protocol"
	"github.com/palemoky/quiz-party/internal/protocol/codec"
)

// 房间状态，与服务端取值一致
const (
	StatusWaitingToStart      = "WAITING_TO_START"
	StatusPlaying             = "PLAYING"
	StatusWaitingBetweenRound = "WAITING_BETWEEN_ROUNDS"
	StatusFinished            = "FINISHED"
)

// maxNotices 保留的通知条数
const maxNotices = 5

// Event 一条消息引起的可感知变化，界面据此播放提示音
type Event int

const (
	EventNone Event = iota
	EventRoundStarted
	EventRoundClosed
	EventGameOver
	EventAnswerAccepted
	EventError
)

// ScoreEntry 排行榜条目
type ScoreEntry struct {
	ID    string
	Name  string
	Score int
}

// GameState 客户端侧的房间状态
type GameState struct {
	// 本机身份
	ParticipantID string
	Name          string
	RoomID        string

	Status       string
	CurrentRound int
	TotalRounds  int
	Starting     bool
	Question     *protocol.QuestionInfo
	History      []protocol.QuestionInfo
	Participants []protocol.ParticipantInfo
	Scores       map[string]int
	AnswerCount  int

	// 截止时间在收到快照时换算为本地时刻
	RoundDeadline      time.Time
	InterRoundDeadline time.Time

	// 本机在各题上的选择
	MyAnswers map[string]string

	Notices   []string
	LastError string
}

// NewGameState 创建空状态
func NewGameState() *GameState {
	return &GameState{
		Status:    StatusWaitingToStart,
		Scores:    make(map[string]int),
		MyAnswers: make(map[string]string),
	}
}

// Apply 应用一条服务端消息
func (gs *GameState) Apply(msg *protocol.Message, now time.Time) (Event, error) {
	switch msg.Type {
	case protocol.MsgConnected:
		p, err := codec.ParsePayload[protocol.ConnectedPayload](msg)
		if err != nil {
			return EventNone, err
		}
		gs.ParticipantID, gs.Name, gs.RoomID = p.ParticipantID, p.Name, p.RoomID
		gs.addNotice(fmt.Sprintf("已进入房间 %s，你的昵称是 %s", p.RoomID, p.Name))

	case protocol.MsgGameState:
		p, err := codec.ParsePayload[protocol.GameStatePayload](msg)
		if err != nil {
			return EventNone, err
		}
		return gs.applySnapshot(p, now), nil

	case protocol.MsgPlayerJoined:
		p, err := codec.ParsePayload[protocol.PlayerJoinedPayload](msg)
		if err != nil {
			return EventNone, err
		}
		if p.ParticipantID == gs.ParticipantID {
			gs.Name = p.Name
		}
		gs.addNotice(fmt.Sprintf("👋 %s 加入了游戏", p.Name))

	case protocol.MsgPlayerLeft:
		p, err := codec.ParsePayload[protocol.PlayerLeftPayload](msg)
		if err != nil {
			return EventNone, err
		}
		gs.addNotice(fmt.Sprintf("🚪 %s 离开了游戏", p.Name))

	case protocol.MsgAnswerReceived:
		p, err := codec.ParsePayload[protocol.AnswerReceivedPayload](msg)
		if err != nil {
			return EventNone, err
		}
		if p.ParticipantID == gs.ParticipantID {
			return EventAnswerAccepted, nil
		}
		gs.addNotice(fmt.Sprintf("✍️ %s 已作答", gs.NameOf(p.ParticipantID)))

	case protocol.MsgError:
		p, err := codec.ParsePayload[protocol.ErrorPayload](msg)
		if err != nil {
			return EventNone, err
		}
		gs.LastError = p.Message
		return EventError, nil
	}
	return EventNone, nil
}

func (gs *GameState) applySnapshot(p *protocol.GameStatePayload, now time.Time) Event {
	prevStatus, prevRound := gs.Status, gs.CurrentRound

	gs.RoomID = p.RoomID
	gs.Status = p.Status
	gs.CurrentRound = p.CurrentRound
	gs.TotalRounds = p.TotalRounds
	gs.Starting = p.Starting
	gs.Question = p.Question
	gs.History = p.Questions
	gs.Participants = p.Participants
	gs.AnswerCount = p.AnswerCount
	gs.Scores = p.Scores
	if gs.Scores == nil {
		gs.Scores = make(map[string]int)
	}

	gs.RoundDeadline = time.Time{}
	gs.InterRoundDeadline = time.Time{}
	if p.RoundEndsInMs > 0 {
		gs.RoundDeadline = now.Add(time.Duration(p.RoundEndsInMs) * time.Millisecond)
	}
	if p.InterRoundEndsInMs > 0 {
		gs.InterRoundDeadline = now.Add(time.Duration(p.InterRoundEndsInMs) * time.Millisecond)
	}

	for _, pi := range p.Participants {
		if pi.ID == gs.ParticipantID {
			gs.Name = pi.Name
		}
	}

	switch {
	case p.Status == StatusPlaying && (prevStatus != StatusPlaying || prevRound != p.CurrentRound):
		if p.CurrentRound == 1 {
			// 新一局
			gs.MyAnswers = make(map[string]string)
			gs.LastError = ""
		}
		return EventRoundStarted
	case p.Status == StatusWaitingBetweenRound && prevStatus == StatusPlaying:
		return EventRoundClosed
	case p.Status == StatusFinished && prevStatus != StatusFinished:
		return EventGameOver
	}
	return EventNone
}

// RecordAnswer 记录本机的选择，同一题只记第一次
func (gs *GameState) RecordAnswer(questionID, answerID string) bool {
	if _, ok := gs.MyAnswers[questionID]; ok {
		return false
	}
	gs.MyAnswers[questionID] = answerID
	return true
}

// MyAnswer 本机在某题上的选择
func (gs *GameState) MyAnswer(questionID string) (string, bool) {
	a, ok := gs.MyAnswers[questionID]
	return a, ok
}

// CanAnswer 当前是否可以作答
func (gs *GameState) CanAnswer() bool {
	if gs.Status != StatusPlaying || gs.Question == nil {
		return false
	}
	_, answered := gs.MyAnswers[gs.Question.ID]
	return !answered
}

// NameOf 根据 ID 查询昵称
func (gs *GameState) NameOf(participantID string) string {
	for _, p := range gs.Participants {
		if p.ID == participantID {
			return p.Name
		}
	}
	return participantID
}

// Leaderboard 按分数降序排列，同分按昵称
func (gs *GameState) Leaderboard() []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(gs.Participants))
	for _, p := range gs.Participants {
		entries = append(entries, ScoreEntry{ID: p.ID, Name: p.Name, Score: gs.Scores[p.ID]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Remaining 当前阶段剩余时间
func (gs *GameState) Remaining(now time.Time) time.Duration {
	var deadline time.Time
	switch gs.Status {
	case StatusPlaying:
		deadline = gs.RoundDeadline
	case StatusWaitingBetweenRound:
		deadline = gs.InterRoundDeadline
	default:
		return 0
	}
	if deadline.IsZero() || !deadline.After(now) {
		return 0
	}
	return deadline.Sub(now)
}

func (gs *GameState) addNotice(text string) {
	gs.Notices = append(gs.Notices, text)
	if len(gs.Notices) > maxNotices {
		gs.Notices = gs.Notices[len(gs.Notices)-maxNotices:]
	}
}
