package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/quiz-party/internal/game/question"
	"github.com/palemoky/quiz-party/internal/game/round"
	"github.com/palemoky/quiz-party/internal/server/session"
)

func twoQuestions() []question.Question {
	return []question.Question{
		{
			ID:   "q1",
			Text: "2+2?",
			Answers: []question.Answer{
				{ID: "A", Text: "4"},
				{ID: "B", Text: "5"},
			},
			CorrectAnswerID: "A",
		},
		{
			ID:   "q2",
			Text: "Capital of France?",
			Answers: []question.Answer{
				{ID: "A", Text: "Lyon"},
				{ID: "B", Text: "Paris"},
			},
			CorrectAnswerID: "B",
		},
	}
}

func TestGameState_WaitingToStart(t *testing.T) {
	t.Parallel()

	st := round.State{Status: round.StatusWaitingToStart}
	ps := []session.Participant{{ID: "p1", Name: "Ada"}}

	got := GameState("r1", st, ps, time.Now())

	assert.Equal(t, "r1", got.RoomID)
	assert.Equal(t, "WAITING_TO_START", got.Status)
	assert.Nil(t, got.Question)
	assert.Empty(t, got.Questions)
	assert.Zero(t, got.RoundEndsInMs)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, "Ada", got.Participants[0].Name)
}

func TestGameState_HidesAnswerWhilePlaying(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	st := round.State{
		Status:        round.StatusPlaying,
		CurrentRound:  1,
		TotalRounds:   2,
		Questions:     twoQuestions(),
		RoundDeadline: now.Add(7 * time.Second),
		Answers: []round.SubmittedAnswer{
			{ParticipantID: "p1", QuestionID: "q1", AnswerID: "A"},
		},
	}

	got := GameState("r1", st, nil, now)

	require.NotNil(t, got.Question)
	assert.Equal(t, "q1", got.Question.ID)
	assert.Equal(t, 1, got.Question.Round)
	assert.Empty(t, got.Question.CorrectAnswerID)
	assert.Empty(t, got.Questions)
	assert.Equal(t, int64(7000), got.RoundEndsInMs)
	assert.Equal(t, 1, got.AnswerCount)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correctAnswerId")
}

func TestGameState_RevealsClosedRounds(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	st := round.State{
		Status:             round.StatusWaitingBetweenRounds,
		CurrentRound:       1,
		TotalRounds:        2,
		Questions:          twoQuestions(),
		InterRoundDeadline: now.Add(3 * time.Second),
	}

	got := GameState("r1", st, nil, now)

	require.NotNil(t, got.Question)
	assert.Equal(t, "A", got.Question.CorrectAnswerID)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "A", got.Questions[0].CorrectAnswerID)
	assert.Equal(t, int64(3000), got.InterRoundEndsInMs)
	assert.Zero(t, got.RoundEndsInMs)
}

func TestGameState_SecondRoundKeepsPreviousRevealed(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	st := round.State{
		Status:        round.StatusPlaying,
		CurrentRound:  2,
		TotalRounds:   2,
		Questions:     twoQuestions(),
		RoundDeadline: now.Add(time.Second),
	}

	got := GameState("r1", st, nil, now)

	require.NotNil(t, got.Question)
	assert.Equal(t, "q2", got.Question.ID)
	assert.Empty(t, got.Question.CorrectAnswerID)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "q1", got.Questions[0].ID)
}

func TestGameState_FinishedRevealsAllAndScores(t *testing.T) {
	t.Parallel()

	st := round.State{
		Status:       round.StatusFinished,
		CurrentRound: 2,
		TotalRounds:  2,
		Questions:    twoQuestions(),
		Answers: []round.SubmittedAnswer{
			{ParticipantID: "p1", QuestionID: "q1", AnswerID: "A"},
			{ParticipantID: "p1", QuestionID: "q2", AnswerID: "B"},
			{ParticipantID: "p2", QuestionID: "q1", AnswerID: "B"},
		},
	}

	got := GameState("r1", st, nil, time.Now())

	require.Len(t, got.Questions, 2)
	assert.Equal(t, "B", got.Questions[1].CorrectAnswerID)
	assert.Equal(t, map[string]int{"p1": 2, "p2": 0}, got.Scores)
}

func TestParticipantsToInfos_Empty(t *testing.T) {
	t.Parallel()

	infos := ParticipantsToInfos(nil)
	assert.NotNil(t, infos)
	assert.Empty(t, infos)
}
