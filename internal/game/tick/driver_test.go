package tick

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/quiz-party/internal/game/question"
	"github.com/palemoky/quiz-party/internal/game/room"
	"github.com/palemoky/quiz-party/internal/game/round"
)

type counter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCounter() *counter { return &counter{counts: make(map[string]int)} }

func (c *counter) set(roomID string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[roomID] = n
}

func (c *counter) CountOf(roomID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[roomID]
}

type recorder struct {
	mu     sync.Mutex
	states []round.State
}

func (r *recorder) PublishState(_ string, st round.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *recorder) published() []round.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]round.State(nil), r.states...)
}

func startRoom(t *testing.T, r *room.Room, now time.Time, n int) {
	t.Helper()

	qs := make([]question.Question, n)
	for i := range qs {
		qs[i] = question.Question{ID: string(rune('a' + i)), CorrectAnswerID: "A"}
	}
	r.WithEngine(func(e *round.Engine) {
		require.NoError(t, e.BeginStart())
		require.NoError(t, e.CompleteStart(qs, now))
	})
}

type fixture struct {
	clock   *clockwork.FakeClock
	rooms   *room.RoomManager
	members *counter
	pub     *recorder
	driver  *Driver
}

func newFixture() *fixture {
	clock := clockwork.NewFakeClock()
	f := &fixture{
		clock:   clock,
		rooms:   room.NewRoomManager(nil, round.DefaultTiming, clock),
		members: newCounter(),
		pub:     &recorder{},
	}
	f.driver = NewDriver(clock, time.Second, f.rooms, f.members, f.pub)
	return f
}

func TestTick_ReapsEmptyRoomsInOneCycle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.rooms.JoinOrCreate("empty", nil)
	f.rooms.JoinOrCreate("busy", nil)
	f.members.set("busy", 1)

	reaped, advanced := f.driver.Tick(f.clock.Now())

	assert.Equal(t, 1, reaped)
	assert.Equal(t, 0, advanced)
	assert.Nil(t, f.rooms.GetRoom("empty"))
	assert.NotNil(t, f.rooms.GetRoom("busy"))
	assert.Empty(t, f.pub.published())
}

func TestTick_PublishesOnlyOnChange(t *testing.T) {
	t.Parallel()

	f := newFixture()
	r, _ := f.rooms.JoinOrCreate("r1", nil)
	f.members.set("r1", 2)
	startRoom(t, r, f.clock.Now(), 2)

	// 截止前不推进
	_, advanced := f.driver.Tick(f.clock.Now().Add(9 * time.Second))
	assert.Equal(t, 0, advanced)
	assert.Empty(t, f.pub.published())

	_, advanced = f.driver.Tick(f.clock.Now().Add(10 * time.Second))
	assert.Equal(t, 1, advanced)
	states := f.pub.published()
	require.Len(t, states, 1)
	assert.Equal(t, round.StatusWaitingBetweenRounds, states[0].Status)

	// 同一时刻再次驱动不产生新广播
	_, advanced = f.driver.Tick(f.clock.Now().Add(10 * time.Second))
	assert.Equal(t, 0, advanced)
	assert.Len(t, f.pub.published(), 1)
}

func TestTick_FullGameProgression(t *testing.T) {
	t.Parallel()

	f := newFixture()
	r, _ := f.rooms.JoinOrCreate("r1", nil)
	f.members.set("r1", 1)
	start := f.clock.Now()
	startRoom(t, r, start, 2)

	f.driver.Tick(start.Add(10 * time.Second))
	f.driver.Tick(start.Add(15 * time.Second))
	f.driver.Tick(start.Add(25 * time.Second))

	states := f.pub.published()
	require.Len(t, states, 3)
	assert.Equal(t, round.StatusWaitingBetweenRounds, states[0].Status)
	assert.Equal(t, round.StatusPlaying, states[1].Status)
	assert.Equal(t, 2, states[1].CurrentRound)
	assert.Equal(t, round.StatusFinished, states[2].Status)
	assert.Equal(t, round.StatusFinished, r.Status())
}

func TestTick_WaitingRoomIsUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.rooms.AddRoomForTest(room.NewRoomForTest("lobby", round.DefaultTiming))
	f.members.set("lobby", 3)

	reaped, advanced := f.driver.Tick(f.clock.Now().Add(time.Hour))
	assert.Zero(t, reaped)
	assert.Zero(t, advanced)
	assert.Empty(t, f.pub.published())
}

func TestRun_DrivesOnTickerAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	f := newFixture()
	r, _ := f.rooms.JoinOrCreate("r1", nil)
	f.members.set("r1", 1)
	startRoom(t, r, f.clock.Now(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.driver.Run(ctx)
		close(done)
	}()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	for range 10 {
		f.clock.Advance(time.Second)
	}

	assert.Eventually(t, func() bool {
		return r.Status() == round.StatusFinished
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("driver did not stop")
	}
}

func TestNewDriver_DefaultInterval(t *testing.T) {
	t.Parallel()

	d := NewDriver(clockwork.NewFakeClock(), 0, nil, nil, nil)
	assert.Equal(t, DefaultInterval, d.interval)
}
