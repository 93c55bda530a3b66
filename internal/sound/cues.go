package sound

import "time"

// 提示音名称
const (
	CueRoundStart = "round_start"
	CueRoundEnd   = "round_end"
	CueGameOver   = "game_over"
	CueAnswer     = "answer"
	CueError      = "error"
)

type note struct {
	freq   float64
	length time.Duration
}

var cueNotes = map[string][]note{
	CueRoundStart: {{660, 90 * time.Millisecond}, {880, 120 * time.Millisecond}},
	CueRoundEnd:   {{880, 90 * time.Millisecond}, {660, 120 * time.Millisecond}},
	CueGameOver:   {{523, 120 * time.Millisecond}, {659, 120 * time.Millisecond}, {784, 240 * time.Millisecond}},
	CueAnswer:     {{1046, 60 * time.Millisecond}},
	CueError:      {{220, 200 * time.Millisecond}},
}
