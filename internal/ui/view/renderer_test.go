package view

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	gameClient "github.com/palemoky/quiz-party/internal/client"
	"github.com/palemoky/quiz-party/internal/protocol"
)

func newState() *gameClient.GameState {
	gs := gameClient.NewGameState()
	gs.ParticipantID = "p1"
	gs.Name = "Ada"
	gs.RoomID = "r1"
	gs.Participants = []protocol.ParticipantInfo{{ID: "p1", Name: "Ada"}, {ID: "p2", Name: "Bob"}}
	return gs
}

func question(correct string) *protocol.QuestionInfo {
	return &protocol.QuestionInfo{
		ID:              "q1",
		Round:           1,
		Text:            "What is 2+2?",
		Category:        "Math",
		Difficulty:      "easy",
		Answers:         []protocol.AnswerInfo{{ID: "x", Text: "3"}, {ID: "y", Text: "4"}},
		CorrectAnswerID: correct,
	}
}

func TestRender_ConnectingAndError(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Render(Screen{Connecting: true, Spinner: "*"}), "正在连接服务器")
	assert.Contains(t, Render(Screen{ConnError: "refused"}), "refused")
}

func TestRender_Lobby(t *testing.T) {
	t.Parallel()

	out := Render(Screen{State: newState(), Width: 80})
	assert.Contains(t, out, "房间 r1")
	assert.Contains(t, out, "在线玩家: 2")
	assert.Contains(t, out, "s 开始")
}

func TestRender_EditingShowsInput(t *testing.T) {
	t.Parallel()

	out := Render(Screen{State: newState(), Editing: true, InputView: "> Grace"})
	assert.Contains(t, out, "昵称: > Grace")
	assert.NotContains(t, out, "s 开始")
}

func TestRoundView_PlayingHidesAnswer(t *testing.T) {
	t.Parallel()

	gs := newState()
	now := time.Now()
	gs.Status = gameClient.StatusPlaying
	gs.CurrentRound, gs.TotalRounds = 1, 3
	gs.Question = question("")
	gs.RoundDeadline = now.Add(7 * time.Second)

	out := RoundView(gs, now)
	assert.Contains(t, out, "第 1/3 题")
	assert.Contains(t, out, "7s")
	assert.Contains(t, out, "A. 3")
	assert.Contains(t, out, "B. 4")
	assert.NotContains(t, out, "✅")
}

func TestQuestionView_RevealMarksChoices(t *testing.T) {
	t.Parallel()

	gs := newState()
	gs.RecordAnswer("q1", "x")

	out := QuestionView(question("y"), gs)
	assert.Contains(t, out, "B. 4 ✅")
	assert.Contains(t, out, "A. 3 ❌")

	pending := QuestionView(question(""), gs)
	assert.Contains(t, pending, "A. 3 ←")
}

func TestScoreboardView_SortedByScore(t *testing.T) {
	t.Parallel()

	gs := newState()
	gs.Scores = map[string]int{"p2": 2}

	out := ScoreboardView(gs)
	bob := strings.Index(out, "Bob")
	ada := strings.Index(out, "Ada")
	assert.True(t, bob >= 0 && ada >= 0 && bob < ada, out)
}

func TestGameOverView(t *testing.T) {
	t.Parallel()

	gs := newState()
	gs.Status = gameClient.StatusFinished
	gs.Scores = map[string]int{"p1": 1, "p2": 1}
	gs.History = []protocol.QuestionInfo{*question("y"), {ID: "q2", CorrectAnswerID: "z"}}
	gs.RecordAnswer("q1", "y")

	out := GameOverView(gs)
	assert.Contains(t, out, "Ada、Bob")
	assert.Contains(t, out, "你答对了 1/2 题")
}

func TestHelpView(t *testing.T) {
	t.Parallel()

	gs := newState()
	gs.Status = gameClient.StatusPlaying
	gs.Question = question("")
	assert.Contains(t, HelpView(gs), "作答")

	gs.RecordAnswer("q1", "x")
	assert.Contains(t, HelpView(gs), "已作答")

	gs.Status = gameClient.StatusWaitingBetweenRound
	assert.Contains(t, HelpView(gs), "改昵称")
}
