package round

import (
	"time"

	"github.com/palemoky/quiz-party/internal/game/question"
)

// CurrentQuestion 当前回合的题目
func (s State) CurrentQuestion() (question.Question, bool) {
	if s.CurrentRound < 1 || s.CurrentRound > len(s.Questions) {
		return question.Question{}, false
	}
	return s.Questions[s.CurrentRound-1], true
}

// RoundClosed 指定回合（从 1 开始）是否已结束答题，结束后才公开正确答案
func (s State) RoundClosed(round int) bool {
	if round < 1 || round > s.CurrentRound {
		return false
	}
	if round < s.CurrentRound {
		return true
	}
	return s.Status == StatusWaitingBetweenRounds || s.Status == StatusFinished
}

// Scores 按答题记录计分：每人每题只认第一次提交，答对得 1 分
func (s State) Scores() map[string]int {
	correct := make(map[string]string, len(s.Questions))
	for _, q := range s.Questions {
		correct[q.ID] = q.CorrectAnswerID
	}

	type key struct{ participant, question string }
	seen := make(map[key]bool, len(s.Answers))
	scores := make(map[string]int)

	for _, a := range s.Answers {
		k := key{a.ParticipantID, a.QuestionID}
		if seen[k] {
			continue
		}
		seen[k] = true

		if _, ok := scores[a.ParticipantID]; !ok {
			scores[a.ParticipantID] = 0
		}
		if want, ok := correct[a.QuestionID]; ok && want == a.AnswerID {
			scores[a.ParticipantID]++
		}
	}
	return scores
}

// Remaining 距离截止时间的剩余时长，不为负
func Remaining(deadline, now time.Time) time.Duration {
	if deadline.IsZero() {
		return 0
	}
	if d := deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}
