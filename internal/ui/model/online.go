package model

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	gameClient "github.com/palemoky/quiz-party/internal/client"
	"github.com/palemoky/quiz-party/internal/sound"
	"github.com/palemoky/quiz-party/internal/transport"
	"github.com/palemoky/quiz-party/internal/ui/view"
)

// 倒计时刷新周期
const refreshInterval = 250 * time.Millisecond

var eventCues = map[gameClient.Event]string{
	gameClient.EventRoundStarted:   sound.CueRoundStart,
	gameClient.EventRoundClosed:    sound.CueRoundEnd,
	gameClient.EventGameOver:       sound.CueGameOver,
	gameClient.EventAnswerAccepted: sound.CueAnswer,
	gameClient.EventError:          sound.CueError,
}

// 选项按键，字母和数字两套
var answerKeys = map[string]int{
	"a": 0, "b": 1, "c": 2, "d": 3,
	"1": 0, "2": 1, "3": 2, "4": 3,
}

// OnlineModel is the main model of the terminal client.
type OnlineModel struct {
	conn  Conn
	sound SoundPlayer
	clock clockwork.Clock
	state *gameClient.GameState

	connecting bool
	connErr    string
	editing    bool
	latency    int64

	// UI components
	input   textinput.Model
	spinner spinner.Model
	width   int
	height  int
}

// NewOnlineModel creates a new OnlineModel.
func NewOnlineModel(serverURL string) *OnlineModel {
	return newOnlineModel(transport.NewClient(serverURL), sound.NewSoundManager(), clockwork.NewRealClock())
}

func newOnlineModel(conn Conn, player SoundPlayer, clock clockwork.Clock) *OnlineModel {
	ti := textinput.New()
	ti.Placeholder = "输入新昵称，回车确认，Esc 取消"
	ti.CharLimit = 20
	ti.Width = 30

	return &OnlineModel{
		conn:       conn,
		sound:      player,
		clock:      clock,
		state:      gameClient.NewGameState(),
		connecting: true,
		input:      ti,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m *OnlineModel) Init() tea.Cmd {
	go func() {
		if err := m.sound.Init(); err != nil {
			log.Warn().Err(err).Msg("🔇 音效初始化失败")
		}
	}()

	return tea.Batch(
		m.connectToServer(),
		m.spinner.Tick,
		tick(),
	)
}

func (m *OnlineModel) connectToServer() tea.Cmd {
	return func() tea.Msg {
		if err := m.conn.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

func (m *OnlineModel) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.conn.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConnectedMsg:
		m.connecting = false
		m.conn.StartHeartbeat()
		log.Info().Msg("🔗 已连接服务器")
		return m, m.listenForMessages()

	case ConnectionErrorMsg:
		m.connecting = false
		m.connErr = msg.Err.Error()
		log.Error().Err(msg.Err).Msg("❌ 连接中断")
		return m, nil

	case ServerMessage:
		m.handleServerMessage(msg)
		return m, m.listenForMessages()

	case TickMsg:
		m.latency = m.conn.Latency()
		return m, tick()

	case spinner.TickMsg:
		if !m.connecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *OnlineModel) handleServerMessage(msg ServerMessage) {
	ev, err := m.state.Apply(msg.Msg, m.clock.Now())
	if err != nil {
		log.Warn().Err(err).Str("type", string(msg.Msg.Type)).Msg("⚠️ 无法解析服务器消息")
		return
	}
	if cue, ok := eventCues[ev]; ok {
		m.sound.Play(cue)
	}
}

func (m *OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.quit()
	}
	if m.editing {
		return m.handleEditingKey(msg)
	}
	// 连接建立前只响应退出
	if m.connecting || m.connErr != "" {
		if msg.String() == "q" {
			return m, m.quit()
		}
		return m, nil
	}

	key := strings.ToLower(msg.String())
	switch key {
	case "q":
		return m, m.quit()
	case "n":
		m.editing = true
		m.input.SetValue(m.state.Name)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "s":
		m.startGame()
		return m, nil
	}

	if idx, ok := answerKeys[key]; ok {
		m.answer(idx)
	}
	return m, nil
}

func (m *OnlineModel) handleEditingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		m.stopEditing()
		if name == "" || name == m.state.Name {
			return m, nil
		}
		m.report(m.conn.JoinGame(name))
		return m, nil
	case tea.KeyEsc:
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *OnlineModel) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.Reset()
}

func (m *OnlineModel) startGame() {
	switch m.state.Status {
	case gameClient.StatusWaitingToStart, gameClient.StatusFinished:
	default:
		return
	}
	if m.state.Starting {
		return
	}
	m.state.LastError = ""
	m.report(m.conn.StartGame())
}

func (m *OnlineModel) answer(idx int) {
	if !m.state.CanAnswer() {
		return
	}
	q := m.state.Question
	if idx >= len(q.Answers) {
		return
	}
	if err := m.conn.SendAnswer(q.ID, q.Answers[idx].ID); err != nil {
		m.report(err)
		return
	}
	m.state.RecordAnswer(q.ID, q.Answers[idx].ID)
}

func (m *OnlineModel) report(err error) {
	if err == nil {
		return
	}
	m.state.LastError = err.Error()
	m.sound.Play(sound.CueError)
}

func (m *OnlineModel) quit() tea.Cmd {
	if !m.connecting && m.connErr == "" {
		_ = m.conn.LeaveGame()
	}
	m.conn.Close()
	m.sound.Close()
	return tea.Quit
}

func (m *OnlineModel) View() string {
	return view.Render(view.Screen{
		State:      m.state,
		Now:        m.clock.Now(),
		Width:      m.width,
		Latency:    m.latency,
		Connecting: m.connecting,
		Spinner:    m.spinner.View(),
		ConnError:  m.connErr,
		Editing:    m.editing,
		InputView:  m.input.View(),
	})
}

// State 当前房间状态
func (m *OnlineModel) State() *gameClient.GameState { return m.state }
