package round

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/quiz-party/internal/apperrors"
	"github.com/palemoky/quiz-party/internal/game/question"
)

func makeQuestions(n int) []question.Question {
	qs := make([]question.Question, n)
	for i := range qs {
		qs[i] = question.Question{
			ID:   fmt.Sprintf("q%d", i+1),
			Text: fmt.Sprintf("question %d", i+1),
			Answers: []question.Answer{
				{ID: "A", Text: "right"},
				{ID: "B", Text: "wrong"},
			},
			CorrectAnswerID: "A",
		}
	}
	return qs
}

func startedEngine(t *testing.T, clock clockwork.Clock, n int) *Engine {
	t.Helper()

	e := NewEngine(DefaultTiming)
	require.NoError(t, e.BeginStart())
	require.NoError(t, e.CompleteStart(makeQuestions(n), clock.Now()))
	return e
}

func TestNewEngine_WaitingToStart(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultTiming)
	snap := e.Snapshot()

	assert.Equal(t, StatusWaitingToStart, snap.Status)
	assert.Zero(t, snap.CurrentRound)
	assert.Zero(t, snap.TotalRounds)
	assert.False(t, snap.Starting)
}

func TestEngine_TwoQuestionScenario(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	e := startedEngine(t, clock, 2)

	snap := e.Snapshot()
	assert.Equal(t, StatusPlaying, snap.Status)
	assert.Equal(t, 1, snap.CurrentRound)
	assert.Equal(t, 2, snap.TotalRounds)

	clock.Advance(DefaultTiming.RoundDuration)
	changed, status := e.AdvanceIfDue(clock.Now())
	assert.True(t, changed)
	assert.Equal(t, StatusWaitingBetweenRounds, status)

	clock.Advance(DefaultTiming.InterRoundDuration)
	changed, status = e.AdvanceIfDue(clock.Now())
	assert.True(t, changed)
	assert.Equal(t, StatusPlaying, status)
	assert.Equal(t, 2, e.Snapshot().CurrentRound)

	clock.Advance(DefaultTiming.RoundDuration)
	changed, status = e.AdvanceIfDue(clock.Now())
	assert.True(t, changed)
	assert.Equal(t, StatusFinished, status)
	assert.Equal(t, 2, e.Snapshot().CurrentRound)
}

func TestEngine_RoundSequenceNeverSkips(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	e := startedEngine(t, clock, 3)

	rounds := []int{e.Snapshot().CurrentRound}
	// 以 1 秒为周期推进，模拟 Tick Driver
	for range 200 {
		clock.Advance(time.Second)
		changed, status := e.AdvanceIfDue(clock.Now())
		if changed && status == StatusPlaying {
			rounds = append(rounds, e.Snapshot().CurrentRound)
		}
		if status == StatusFinished {
			break
		}
	}

	assert.Equal(t, []int{1, 2, 3}, rounds)
	assert.Equal(t, StatusFinished, e.Status())
}

func TestEngine_AdvanceIfDueIsIdempotent(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	e := startedEngine(t, clock, 3)

	clock.Advance(DefaultTiming.RoundDuration)
	now := clock.Now()

	changed, _ := e.AdvanceIfDue(now)
	assert.True(t, changed)
	before := e.Snapshot()

	changed, status := e.AdvanceIfDue(now)
	assert.False(t, changed)
	assert.Equal(t, StatusWaitingBetweenRounds, status)
	assert.Equal(t, before, e.Snapshot())
}

func TestEngine_NoChangeBeforeDeadline(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	e := startedEngine(t, clock, 2)

	clock.Advance(DefaultTiming.RoundDuration - time.Millisecond)
	changed, status := e.AdvanceIfDue(clock.Now())
	assert.False(t, changed)
	assert.Equal(t, StatusPlaying, status)
}

func TestEngine_WaitingToStartNeverAdvances(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	e := NewEngine(DefaultTiming)

	for range 5 {
		clock.Advance(time.Hour)
		changed, status := e.AdvanceIfDue(clock.Now())
		assert.False(t, changed)
		assert.Equal(t, StatusWaitingToStart, status)
	}
}

func TestEngine_FinishedIsTerminalForTicks(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	e := startedEngine(t, clock, 1)

	clock.Advance(DefaultTiming.RoundDuration)
	changed, status := e.AdvanceIfDue(clock.Now())
	require.True(t, changed)
	require.Equal(t, StatusFinished, status)

	clock.Advance(time.Hour)
	changed, status = e.AdvanceIfDue(clock.Now())
	assert.False(t, changed)
	assert.Equal(t, StatusFinished, status)
}

func TestEngine_BeginStartRejectsWhileRunning(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	e := startedEngine(t, clock, 2)
	assert.ErrorIs(t, e.BeginStart(), apperrors.ErrAlreadyRunning)

	clock.Advance(DefaultTiming.RoundDuration)
	e.AdvanceIfDue(clock.Now())
	require.Equal(t, StatusWaitingBetweenRounds, e.Status())
	assert.ErrorIs(t, e.BeginStart(), apperrors.ErrAlreadyRunning)
}

func TestEngine_StartingSubState(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultTiming)
	require.NoError(t, e.BeginStart())
	assert.True(t, e.Starting())
	assert.Equal(t, StatusWaitingToStart, e.Status())

	assert.ErrorIs(t, e.BeginStart(), apperrors.ErrAlreadyRunning)
	assert.ErrorIs(t, e.SubmitAnswer(SubmittedAnswer{ParticipantID: "p1", QuestionID: "q1", AnswerID: "A"}),
		apperrors.ErrNotAcceptingAnswers)
	assert.Empty(t, e.Snapshot().Answers)
}

func TestEngine_AbortStartKeepsPreStartStatus(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultTiming)
	require.NoError(t, e.BeginStart())
	e.AbortStart()

	snap := e.Snapshot()
	assert.Equal(t, StatusWaitingToStart, snap.Status)
	assert.False(t, snap.Starting)
	assert.Zero(t, snap.CurrentRound)

	// 失败后可以再次开始
	assert.NoError(t, e.BeginStart())
}

func TestEngine_CompleteStartWithNoQuestionsFails(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultTiming)
	require.NoError(t, e.BeginStart())

	err := e.CompleteStart(nil, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrQuestionProvider)
	assert.Equal(t, StatusWaitingToStart, e.Status())
	assert.False(t, e.Starting())
}

func TestEngine_CompleteStartWithoutBeginFails(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultTiming)
	assert.Error(t, e.CompleteStart(makeQuestions(1), time.Now()))
	assert.Equal(t, StatusWaitingToStart, e.Status())
}

func TestEngine_SubmitAnswerOnlyWhilePlaying(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	answer := SubmittedAnswer{ParticipantID: "p1", QuestionID: "q1", AnswerID: "A"}

	// WAITING_TO_START
	e := NewEngine(DefaultTiming)
	assert.ErrorIs(t, e.SubmitAnswer(answer), apperrors.ErrNotAcceptingAnswers)

	// PLAYING
	e = startedEngine(t, clock, 2)
	assert.NoError(t, e.SubmitAnswer(answer))

	// WAITING_BETWEEN_ROUNDS
	clock.Advance(DefaultTiming.RoundDuration)
	e.AdvanceIfDue(clock.Now())
	assert.ErrorIs(t, e.SubmitAnswer(answer), apperrors.ErrNotAcceptingAnswers)

	// FINISHED
	clock.Advance(DefaultTiming.InterRoundDuration)
	e.AdvanceIfDue(clock.Now())
	clock.Advance(DefaultTiming.RoundDuration)
	e.AdvanceIfDue(clock.Now())
	require.Equal(t, StatusFinished, e.Status())
	assert.ErrorIs(t, e.SubmitAnswer(answer), apperrors.ErrNotAcceptingAnswers)

	assert.Len(t, e.Snapshot().Answers, 1)
}

func TestEngine_DuplicateAnswersAreLoggedFirstCounts(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	e := startedEngine(t, clock, 1)

	require.NoError(t, e.SubmitAnswer(SubmittedAnswer{ParticipantID: "p1", QuestionID: "q1", AnswerID: "B"}))
	require.NoError(t, e.SubmitAnswer(SubmittedAnswer{ParticipantID: "p1", QuestionID: "q1", AnswerID: "A"}))
	require.NoError(t, e.SubmitAnswer(SubmittedAnswer{ParticipantID: "p2", QuestionID: "q1", AnswerID: "A"}))

	snap := e.Snapshot()
	assert.Len(t, snap.Answers, 3)
	assert.Equal(t, map[string]int{"p1": 0, "p2": 1}, snap.Scores())
}

func TestEngine_RestartFromFinishedClearsAnswers(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	e := startedEngine(t, clock, 1)
	require.NoError(t, e.SubmitAnswer(SubmittedAnswer{ParticipantID: "p1", QuestionID: "q1", AnswerID: "A"}))

	clock.Advance(DefaultTiming.RoundDuration)
	e.AdvanceIfDue(clock.Now())
	require.Equal(t, StatusFinished, e.Status())

	require.NoError(t, e.BeginStart())
	require.NoError(t, e.CompleteStart(makeQuestions(3), clock.Now()))

	snap := e.Snapshot()
	assert.Equal(t, StatusPlaying, snap.Status)
	assert.Equal(t, 1, snap.CurrentRound)
	assert.Equal(t, 3, snap.TotalRounds)
	assert.Empty(t, snap.Answers)
	assert.Equal(t, clock.Now().Add(DefaultTiming.RoundDuration), snap.RoundDeadline)
}

func TestEngine_SnapshotIsIsolated(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	e := startedEngine(t, clock, 1)
	require.NoError(t, e.SubmitAnswer(SubmittedAnswer{ParticipantID: "p1", QuestionID: "q1", AnswerID: "A"}))

	snap := e.Snapshot()
	snap.Questions[0].Answers[0].Text = "mutated"
	snap.Answers[0].AnswerID = "B"

	fresh := e.Snapshot()
	assert.Equal(t, "right", fresh.Questions[0].Answers[0].Text)
	assert.Equal(t, "A", fresh.Answers[0].AnswerID)
}

func TestState_RoundClosedAndCurrentQuestion(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	e := startedEngine(t, clock, 2)

	snap := e.Snapshot()
	q, ok := snap.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "q1", q.ID)
	assert.False(t, snap.RoundClosed(1))

	clock.Advance(DefaultTiming.RoundDuration)
	e.AdvanceIfDue(clock.Now())
	snap = e.Snapshot()
	assert.True(t, snap.RoundClosed(1))
	assert.False(t, snap.RoundClosed(2))

	_, ok = NewEngine(DefaultTiming).Snapshot().CurrentQuestion()
	assert.False(t, ok)
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	now := time.Now()
	assert.Equal(t, 3*time.Second, Remaining(now.Add(3*time.Second), now))
	assert.Zero(t, Remaining(now.Add(-time.Second), now))
	assert.Zero(t, Remaining(time.Time{}, now))
}
