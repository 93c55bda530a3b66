// Package view provides UI rendering functions.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	gameClient "github.com/palemoky/quiz-party/internal/client"
	"github.com/palemoky/quiz-party/internal/protocol"
	"github.com/palemoky/quiz-party/internal/ui/common"
)

const nameWidth = 12

// Screen 一帧渲染所需的全部输入
type Screen struct {
	State   *gameClient.GameState
	Now     time.Time
	Width   int
	Latency int64

	Connecting bool
	Spinner    string
	ConnError  string

	Editing   bool
	InputView string
}

// Render 渲染整屏
func Render(s Screen) string {
	if s.ConnError != "" {
		return common.DocStyle.Render(common.ErrorStyle.Render("❌ 连接失败: "+s.ConnError) + "\n\n按 q 退出")
	}
	if s.Connecting || s.State == nil {
		return common.DocStyle.Render(fmt.Sprintf("%s 正在连接服务器...", s.Spinner))
	}

	var sb strings.Builder
	sb.WriteString(center(s.Width, HeaderView(s.State, s.Latency)))
	sb.WriteString("\n\n")

	switch s.State.Status {
	case gameClient.StatusWaitingToStart:
		sb.WriteString(center(s.Width, LobbyView(s.State)))
	case gameClient.StatusFinished:
		sb.WriteString(center(s.Width, GameOverView(s.State)))
	default:
		sb.WriteString(center(s.Width, RoundView(s.State, s.Now)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(center(s.Width, ScoreboardView(s.State)))

	if notices := NoticesView(s.State.Notices); notices != "" {
		sb.WriteString("\n\n")
		sb.WriteString(notices)
	}
	if s.State.LastError != "" {
		sb.WriteString("\n")
		sb.WriteString(common.ErrorStyle.Render("⚠️ " + s.State.LastError))
	}

	sb.WriteString("\n")
	if s.Editing {
		sb.WriteString(common.PromptStyle.Render("昵称: " + s.InputView))
	} else {
		sb.WriteString(common.PromptStyle.Render(HelpView(s.State)))
	}

	return common.DocStyle.Render(sb.String())
}

// HeaderView 房间、身份与延迟
func HeaderView(gs *gameClient.GameState, latency int64) string {
	title := common.TitleStyle(fmt.Sprintf("🎯 房间 %s", gs.RoomID))
	me := fmt.Sprintf("%s %s", common.MeIcon, gs.Name)
	if latency > 0 {
		me += common.MutedStyle.Render(fmt.Sprintf("  %dms", latency))
	}
	return title + "   " + me
}

// LobbyView 等待开始
func LobbyView(gs *gameClient.GameState) string {
	var sb strings.Builder
	if gs.Starting {
		sb.WriteString("⏳ 正在准备题目...\n\n")
	} else {
		sb.WriteString("等待开始，任何人按 s 即可开局\n\n")
	}
	sb.WriteString(fmt.Sprintf("在线玩家: %d", len(gs.Participants)))
	return common.BoxStyle.Render(sb.String())
}

// RoundView 当前回合：题目、选项与倒计时
func RoundView(gs *gameClient.GameState, now time.Time) string {
	var sb strings.Builder

	phase := "答题中"
	if gs.Status == gameClient.StatusWaitingBetweenRound {
		phase = "下一题即将开始"
	}
	sb.WriteString(fmt.Sprintf("第 %d/%d 题 · %s · %s\n\n",
		gs.CurrentRound, gs.TotalRounds, phase,
		common.CountdownStyle.Render(common.FormatCountdown(gs.Remaining(now)))))

	if gs.Question != nil {
		sb.WriteString(QuestionView(gs.Question, gs))
	}
	return common.BoxStyle.Render(sb.String())
}

// QuestionView 题干与选项，揭晓后标出正确答案
func QuestionView(q *protocol.QuestionInfo, gs *gameClient.GameState) string {
	var sb strings.Builder
	if q.Category != "" {
		sb.WriteString(common.MutedStyle.Render(fmt.Sprintf("[%s · %s]", q.Category, q.Difficulty)))
		sb.WriteString("\n")
	}
	sb.WriteString(q.Text)
	sb.WriteString("\n")

	mine, _ := gs.MyAnswer(q.ID)
	for i, a := range q.Answers {
		line := fmt.Sprintf("  %s. %s", common.AnswerKey(i), a.Text)
		switch {
		case q.CorrectAnswerID != "" && a.ID == q.CorrectAnswerID:
			line = common.CorrectStyle.Render(line + " " + common.CorrectIcon)
		case a.ID == mine && q.CorrectAnswerID != "":
			line = common.ErrorStyle.Render(line + " " + common.WrongIcon)
		case a.ID == mine:
			line = common.SelectedStyle.Render(line + " ←")
		}
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	return sb.String()
}

// ScoreboardView 排行榜
func ScoreboardView(gs *gameClient.GameState) string {
	var sb strings.Builder
	sb.WriteString("🏆 排行榜\n")
	for i, e := range gs.Leaderboard() {
		icon := common.PlayerIcon
		if e.ID == gs.ParticipantID {
			icon = common.MeIcon
		}
		sb.WriteString(fmt.Sprintf("\n%d. %s %-*s %d", i+1, icon, nameWidth, common.TruncateName(e.Name, nameWidth), e.Score))
	}
	return common.BoxStyle.Render(sb.String())
}

// GameOverView 终局
func GameOverView(gs *gameClient.GameState) string {
	board := gs.Leaderboard()
	if len(board) == 0 {
		return common.BoxStyle.Render("🏁 游戏结束")
	}

	var winners []string
	for _, e := range board {
		if e.Score == board[0].Score {
			winners = append(winners, e.Name)
		}
	}

	correct := 0
	for _, q := range gs.History {
		if a, ok := gs.MyAnswer(q.ID); ok && a == q.CorrectAnswerID {
			correct++
		}
	}

	text := fmt.Sprintf("🏁 游戏结束\n\n🥇 %s (%d 分)\n你答对了 %d/%d 题\n\n按 s 再来一局",
		strings.Join(winners, "、"), board[0].Score, correct, len(gs.History))
	return common.BoxStyle.Render(text)
}

// NoticesView 最近的房间通知
func NoticesView(notices []string) string {
	if len(notices) == 0 {
		return ""
	}
	return common.MutedStyle.Render(strings.Join(notices, "\n"))
}

// HelpView 按键提示
func HelpView(gs *gameClient.GameState) string {
	switch gs.Status {
	case gameClient.StatusPlaying:
		if gs.CanAnswer() {
			return "A-D / 1-4 作答 · q 退出"
		}
		return "已作答，等待本题结束 · q 退出"
	case gameClient.StatusWaitingToStart, gameClient.StatusFinished:
		return "s 开始 · n 改昵称 · q 退出"
	default:
		return "n 改昵称 · q 退出"
	}
}

func center(width int, s string) string {
	if width <= 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
