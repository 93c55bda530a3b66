package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/palemoky/quiz-party/internal/protocol"
	"github.com/palemoky/quiz-party/internal/protocol/codec"
	"github.com/palemoky/quiz-party/internal/server/session"
	"github.com/palemoky/quiz-party/internal/testutil"
)

func notice(name string) *protocol.Message {
	return codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{Name: name})
}

func TestBroadcastToRoom_OnlyReachesRoomMembers(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry(nil)
	f := NewFanout(reg)

	a1 := testutil.NewSimpleClient()
	a2 := testutil.NewSimpleClient()
	b1 := testutil.NewSimpleClient()
	reg.Register(a1, "a")
	reg.Register(a2, "a")
	reg.Register(b1, "b")

	msg := notice("hello a")
	assert.Equal(t, 2, f.BroadcastToRoom("a", msg))

	assert.Equal(t, []*protocol.Message{msg}, a1.Messages())
	assert.Equal(t, []*protocol.Message{msg}, a2.Messages())
	assert.Empty(t, b1.Messages())
}

func TestBroadcastToRoom_ResolvesMembershipAtCallTime(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry(nil)
	f := NewFanout(reg)

	early := testutil.NewSimpleClient()
	late := testutil.NewSimpleClient()
	reg.Register(early, "r1")

	f.BroadcastToRoom("r1", notice("first"))
	reg.Register(late, "r1")
	reg.Unregister(early)
	f.BroadcastToRoom("r1", notice("second"))

	assert.Len(t, early.Messages(), 1)
	assert.Len(t, late.Messages(), 1)
}

func TestBroadcastToRoom_SkipsClosedConnections(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry(nil)
	f := NewFanout(reg)

	open := testutil.NewSimpleClient()
	closed := &testutil.MockClient{}
	closed.On("IsOpen").Return(false)
	reg.Register(open, "r1")
	reg.Register(closed, "r1")

	assert.Equal(t, 1, f.BroadcastToRoom("r1", notice("x")))
	assert.Len(t, open.Messages(), 1)
	closed.AssertNotCalled(t, "SendMessage", mock.Anything)
}

func TestSendToParticipant(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry(nil)
	f := NewFanout(reg)

	c1 := testutil.NewSimpleClient()
	c2 := testutil.NewSimpleClient()
	p1 := reg.Register(c1, "r1")
	reg.Register(c2, "r1")

	assert.True(t, f.SendToParticipant(p1.ID, notice("direct")))
	assert.Len(t, c1.Messages(), 1)
	assert.Empty(t, c2.Messages())

	assert.False(t, f.SendToParticipant("gone", notice("lost")))
}

func TestBroadcastToAll_IgnoresRooms(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry(nil)
	f := NewFanout(reg)

	a := testutil.NewSimpleClient()
	b := testutil.NewSimpleClient()
	reg.Register(a, "a")
	reg.Register(b, "b")

	assert.Equal(t, 2, f.BroadcastToAll(notice("everyone")))
	assert.Len(t, a.Messages(), 1)
	assert.Len(t, b.Messages(), 1)
}
