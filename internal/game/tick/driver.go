// Package tick drives time-based progression for every live room.
//
// Each cycle first reaps rooms without participants, then advances the state
// machine of each remaining room and publishes a snapshot only when something
// changed. A slow cycle is never queued: missed ticks are dropped and the next
// cycle catches up against the current time.
package tick

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/quiz-party/internal/game/room"
	"github.com/palemoky/quiz-party/internal/game/round"
)

// DefaultInterval 默认驱动周期
const DefaultInterval = time.Second

// RoomSource 房间来源，由 room.RoomManager 实现
type RoomSource interface {
	Rooms() []*room.Room
	DeleteIfEmpty(roomID string, isEmpty func() bool) bool
}

// MemberCounter 房间人数查询，由 session.Registry 实现
type MemberCounter interface {
	CountOf(roomID string) int
}

// Publisher 状态变化后的广播出口
type Publisher interface {
	PublishState(roomID string, st round.State)
}

// Driver 全局时钟驱动器
type Driver struct {
	clock     clockwork.Clock
	interval  time.Duration
	rooms     RoomSource
	members   MemberCounter
	publisher Publisher
}

// NewDriver 创建驱动器，interval <= 0 时使用默认周期
func NewDriver(clock clockwork.Clock, interval time.Duration, rooms RoomSource, members MemberCounter, publisher Publisher) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Driver{
		clock:     clock,
		interval:  interval,
		rooms:     rooms,
		members:   members,
		publisher: publisher,
	}
}

// Run 按周期驱动，直到 ctx 取消
func (d *Driver) Run(ctx context.Context) {
	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", d.interval).Msg("⏱️ 时钟驱动已启动")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("⏱️ 时钟驱动已停止")
			return
		case <-ticker.Chan():
			d.Tick(d.clock.Now())
		}
	}
}

// Tick 执行一个周期，返回回收的房间数和发生推进的房间数
func (d *Driver) Tick(now time.Time) (reaped, advanced int) {
	for _, r := range d.rooms.Rooms() {
		if d.members.CountOf(r.ID) == 0 {
			if d.rooms.DeleteIfEmpty(r.ID, func() bool { return d.members.CountOf(r.ID) == 0 }) {
				reaped++
			}
			continue
		}

		if d.advance(r, now) {
			advanced++
		}
	}

	if reaped > 0 {
		log.Debug().Int("reaped", reaped).Msg("🧹 回收空房间")
	}
	return reaped, advanced
}

func (d *Driver) advance(r *room.Room, now time.Time) bool {
	var changed bool
	r.WithEngine(func(e *round.Engine) {
		var status round.Status
		changed, status = e.AdvanceIfDue(now)
		if !changed {
			return
		}
		log.Debug().Str("room", r.ID).Str("status", string(status)).Msg("回合推进")
		d.publisher.PublishState(r.ID, e.Snapshot())
	})
	return changed
}
