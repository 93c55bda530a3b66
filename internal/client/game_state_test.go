package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/quiz-party/internal/protocol"
	"github.com/palemoky/quiz-party/internal/protocol/codec"
)

var t0 = time.Unix(1_700_000_000, 0)

func snapshot(status string, round int, mods ...func(*protocol.GameStatePayload)) *protocol.Message {
	p := protocol.GameStatePayload{
		RoomID:       "r1",
		Status:       status,
		CurrentRound: round,
		TotalRounds:  2,
		Participants: []protocol.ParticipantInfo{{ID: "p1", Name: "Ada"}, {ID: "p2", Name: "Bob"}},
		Scores:       map[string]int{},
	}
	for _, mod := range mods {
		mod(&p)
	}
	return codec.MustNewMessage(protocol.MsgGameState, p)
}

func connected(t *testing.T, gs *GameState) {
	t.Helper()
	_, err := gs.Apply(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		ParticipantID: "p1", RoomID: "r1", Name: "Ada",
	}), t0)
	require.NoError(t, err)
}

func TestNewGameState(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	assert.Equal(t, StatusWaitingToStart, gs.Status)
	assert.NotNil(t, gs.Scores)
	assert.NotNil(t, gs.MyAnswers)
	assert.False(t, gs.CanAnswer())
}

func TestApply_Connected(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	connected(t, gs)

	assert.Equal(t, "p1", gs.ParticipantID)
	assert.Equal(t, "Ada", gs.Name)
	assert.Equal(t, "r1", gs.RoomID)
	assert.Len(t, gs.Notices, 1)
}

func TestApply_GameProgressionEvents(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	connected(t, gs)

	q1 := &protocol.QuestionInfo{ID: "q1", Round: 1, Text: "2+2?", Answers: []protocol.AnswerInfo{{ID: "A", Text: "4"}}}

	ev, err := gs.Apply(snapshot(StatusWaitingToStart, 0, func(p *protocol.GameStatePayload) { p.Starting = true }), t0)
	require.NoError(t, err)
	assert.Equal(t, EventNone, ev)
	assert.True(t, gs.Starting)

	ev, err = gs.Apply(snapshot(StatusPlaying, 1, func(p *protocol.GameStatePayload) {
		p.Question = q1
		p.RoundEndsInMs = 10_000
	}), t0)
	require.NoError(t, err)
	assert.Equal(t, EventRoundStarted, ev)
	assert.True(t, gs.CanAnswer())
	assert.Equal(t, 10*time.Second, gs.Remaining(t0))
	assert.Equal(t, 4*time.Second, gs.Remaining(t0.Add(6*time.Second)))

	ev, err = gs.Apply(snapshot(StatusWaitingBetweenRound, 1, func(p *protocol.GameStatePayload) {
		p.InterRoundEndsInMs = 5_000
		p.Scores = map[string]int{"p1": 1}
	}), t0.Add(10*time.Second))
	require.NoError(t, err)
	assert.Equal(t, EventRoundClosed, ev)
	assert.False(t, gs.CanAnswer())
	assert.Equal(t, 5*time.Second, gs.Remaining(t0.Add(10*time.Second)))

	ev, err = gs.Apply(snapshot(StatusPlaying, 2), t0.Add(15*time.Second))
	require.NoError(t, err)
	assert.Equal(t, EventRoundStarted, ev)

	ev, err = gs.Apply(snapshot(StatusFinished, 2), t0.Add(25*time.Second))
	require.NoError(t, err)
	assert.Equal(t, EventGameOver, ev)
	assert.Zero(t, gs.Remaining(t0.Add(25*time.Second)))

	// 重复快照不再触发事件
	ev, err = gs.Apply(snapshot(StatusFinished, 2), t0.Add(26*time.Second))
	require.NoError(t, err)
	assert.Equal(t, EventNone, ev)
}

func TestApply_NewGameClearsMyAnswers(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	connected(t, gs)
	gs.Status = StatusFinished
	gs.MyAnswers["old"] = "A"
	gs.LastError = "stale"

	_, err := gs.Apply(snapshot(StatusPlaying, 1, func(p *protocol.GameStatePayload) {
		p.Question = &protocol.QuestionInfo{ID: "q1"}
	}), t0)
	require.NoError(t, err)

	assert.Empty(t, gs.MyAnswers)
	assert.Empty(t, gs.LastError)
}

func TestApply_AnswerReceived(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	connected(t, gs)
	_, _ = gs.Apply(snapshot(StatusWaitingToStart, 0), t0)

	ev, err := gs.Apply(codec.MustNewMessage(protocol.MsgAnswerReceived, protocol.AnswerReceivedPayload{
		ParticipantID: "p1", QuestionID: "q1",
	}), t0)
	require.NoError(t, err)
	assert.Equal(t, EventAnswerAccepted, ev)

	before := len(gs.Notices)
	ev, err = gs.Apply(codec.MustNewMessage(protocol.MsgAnswerReceived, protocol.AnswerReceivedPayload{
		ParticipantID: "p2", QuestionID: "q1",
	}), t0)
	require.NoError(t, err)
	assert.Equal(t, EventNone, ev)
	require.Len(t, gs.Notices, before+1)
	assert.Contains(t, gs.Notices[len(gs.Notices)-1], "Bob")
}

func TestApply_ErrorAndNotices(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	connected(t, gs)

	ev, err := gs.Apply(codec.NewErrorMessage(protocol.ErrCodeAlreadyRunning), t0)
	require.NoError(t, err)
	assert.Equal(t, EventError, ev)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeAlreadyRunning], gs.LastError)

	for i := range 10 {
		_, err := gs.Apply(codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
			ParticipantID: "x", Name: string(rune('a' + i)),
		}), t0)
		require.NoError(t, err)
	}
	assert.Len(t, gs.Notices, maxNotices)
	assert.Contains(t, gs.Notices[maxNotices-1], "j")
}

func TestApply_OwnRenameUpdatesName(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	connected(t, gs)

	_, err := gs.Apply(codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		ParticipantID: "p1", Name: "Grace",
	}), t0)
	require.NoError(t, err)
	assert.Equal(t, "Grace", gs.Name)
}

func TestApply_BadPayload(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	_, err := gs.Apply(&protocol.Message{Type: protocol.MsgGameState, Payload: []byte(`"nope"`)}, t0)
	assert.Error(t, err)
}

func TestRecordAnswer_FirstWins(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	assert.True(t, gs.RecordAnswer("q1", "A"))
	assert.False(t, gs.RecordAnswer("q1", "B"))

	a, ok := gs.MyAnswer("q1")
	assert.True(t, ok)
	assert.Equal(t, "A", a)
}

func TestLeaderboard(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	gs.Participants = []protocol.ParticipantInfo{
		{ID: "p1", Name: "Cleo"},
		{ID: "p2", Name: "Ada"},
		{ID: "p3", Name: "Bob"},
	}
	gs.Scores = map[string]int{"p1": 1, "p3": 1}

	board := gs.Leaderboard()
	require.Len(t, board, 3)
	assert.Equal(t, []string{"Bob", "Cleo", "Ada"}, []string{board[0].Name, board[1].Name, board[2].Name})
	assert.Equal(t, 0, board[2].Score)
}
