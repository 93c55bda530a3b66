package room

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/quiz-party/internal/server/storage"
)

// storeTimeout Redis 写入超时
const storeTimeout = 3 * time.Second

// storeOp 待执行的快照操作，data 为 nil 表示删除
type storeOp struct {
	roomID string
	data   *storage.RoomData
}

// snapshotWriter 单协程按顺序执行快照写入与删除。
// 同一房间未执行的操作只保留最新一条，因此最终写入的总是最新快照
type snapshotWriter struct {
	store  RoomStore
	exists func(roomID string) bool

	mu      sync.Mutex
	pending map[string]storeOp
	order   []string
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func newSnapshotWriter(store RoomStore, exists func(roomID string) bool) *snapshotWriter {
	w := &snapshotWriter{
		store:   store,
		exists:  exists,
		pending: make(map[string]storeOp),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue 登记操作，不阻塞调用方
func (w *snapshotWriter) enqueue(op storeOp) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if _, queued := w.pending[op.roomID]; !queued {
		w.order = append(w.order, op.roomID)
	}
	w.pending[op.roomID] = op
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// next 取出最早登记的房间的最新操作
func (w *snapshotWriter) next() (storeOp, bool, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.order) == 0 {
		return storeOp{}, false, w.closed
	}
	roomID := w.order[0]
	w.order = w.order[1:]
	op := w.pending[roomID]
	delete(w.pending, roomID)
	return op, true, false
}

func (w *snapshotWriter) run() {
	defer close(w.done)
	for {
		op, ok, closed := w.next()
		if closed {
			return
		}
		if !ok {
			<-w.wake
			continue
		}
		w.apply(op)
	}
}

func (w *snapshotWriter) apply(op storeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if op.data == nil {
		if err := w.store.DeleteRoom(ctx, op.roomID); err != nil {
			log.Warn().Err(err).Str("room", op.roomID).Msg("删除房间快照失败")
		}
		return
	}

	// 房间已解散时跳过，避免迟到的写入让它重新出现
	if !w.exists(op.roomID) {
		return
	}
	if err := w.store.SaveRoom(ctx, op.roomID, op.data); err != nil {
		log.Warn().Err(err).Str("room", op.roomID).Msg("保存房间快照失败")
	}
}

// close 拒绝新操作，执行完已登记的操作后返回
func (w *snapshotWriter) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	<-w.done
}
