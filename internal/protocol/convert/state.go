package convert

import (
	"time"

	"github.com/palemoky/quiz-party/internal/game/question"
	"github.com/palemoky/quiz-party/internal/game/round"
	"github.com/palemoky/quiz-party/internal/protocol"
	"github.com/palemoky/quiz-party/internal/server/session"
)

// QuestionToInfo 将 question.Question 转换为 protocol.QuestionInfo，
// reveal 为 false 时不携带正确答案
func QuestionToInfo(q question.Question, roundNo int, reveal bool) protocol.QuestionInfo {
	answers := make([]protocol.AnswerInfo, len(q.Answers))
	for i, a := range q.Answers {
		answers[i] = protocol.AnswerInfo{ID: a.ID, Text: a.Text}
	}

	info := protocol.QuestionInfo{
		ID:         q.ID,
		Round:      roundNo,
		Text:       q.Text,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Answers:    answers,
	}
	if reveal {
		info.CorrectAnswerID = q.CorrectAnswerID
	}
	return info
}

// ParticipantsToInfos 将 []session.Participant 转换为 []protocol.ParticipantInfo
func ParticipantsToInfos(participants []session.Participant) []protocol.ParticipantInfo {
	infos := make([]protocol.ParticipantInfo, len(participants))
	for i, p := range participants {
		infos[i] = protocol.ParticipantInfo{ID: p.ID, Name: p.Name}
	}
	return infos
}

// GameState 构造对外广播的房间状态。
// 未结束答题的回合不公开正确答案，已结束的回合全部公开
func GameState(roomID string, st round.State, participants []session.Participant, now time.Time) *protocol.GameStatePayload {
	payload := &protocol.GameStatePayload{
		RoomID:       roomID,
		Status:       string(st.Status),
		CurrentRound: st.CurrentRound,
		TotalRounds:  st.TotalRounds,
		Starting:     st.Starting,
		Participants: ParticipantsToInfos(participants),
		Scores:       st.Scores(),
		AnswerCount:  len(st.Answers),
	}

	switch st.Status {
	case round.StatusPlaying:
		payload.RoundEndsInMs = round.Remaining(st.RoundDeadline, now).Milliseconds()
	case round.StatusWaitingBetweenRounds:
		payload.InterRoundEndsInMs = round.Remaining(st.InterRoundDeadline, now).Milliseconds()
	}

	if q, ok := st.CurrentQuestion(); ok {
		info := QuestionToInfo(q, st.CurrentRound, st.RoundClosed(st.CurrentRound))
		payload.Question = &info
	}

	for i, q := range st.Questions {
		roundNo := i + 1
		if !st.RoundClosed(roundNo) {
			break
		}
		payload.Questions = append(payload.Questions, QuestionToInfo(q, roundNo, true))
	}

	return payload
}
