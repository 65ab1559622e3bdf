package gateway

import (
	"errors"
	"testing"
	"time"

	"Wordspy/models/messages"
	"Wordspy/models/postgres"
	redis_models "Wordspy/models/redis"
	"Wordspy/services/game/core"
	"Wordspy/services/game/core/coretest"
	"Wordspy/services/game/directory"
	"Wordspy/services/registry"
	"Wordspy/services/relay"
	"Wordspy/services/social"
	"Wordspy/utils/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSocial struct {
	mock.Mock
}

func (m *mockSocial) EnsureProfile(username, avatar string) (*postgres.GameProfile, error) {
	args := m.Called(username, avatar)
	p, _ := args.Get(0).(*postgres.GameProfile)
	return p, args.Error(1)
}

func (m *mockSocial) Profile(username string) (*postgres.GameProfile, error) {
	args := m.Called(username)
	p, _ := args.Get(0).(*postgres.GameProfile)
	return p, args.Error(1)
}

func (m *mockSocial) SendRequest(from, to string) error {
	return m.Called(from, to).Error(0)
}

func (m *mockSocial) AcceptRequest(recipient, sender string) error {
	return m.Called(recipient, sender).Error(0)
}

func (m *mockSocial) PendingRequests(username string) ([]string, error) {
	args := m.Called(username)
	list, _ := args.Get(0).([]string)
	return list, args.Error(1)
}

func (m *mockSocial) Friends(username string) ([]string, error) {
	args := m.Called(username)
	list, _ := args.Get(0).([]string)
	return list, args.Error(1)
}

func (m *mockSocial) AreFriends(a, b string) (bool, error) {
	args := m.Called(a, b)
	return args.Bool(0), args.Error(1)
}

type memoryQueue struct {
	items map[string][]redis_models.ChatMessage
}

func (q *memoryQueue) PushOfflineMessage(userID string, msg redis_models.ChatMessage) error {
	q.items[userID] = append(q.items[userID], msg)
	return nil
}

func (q *memoryQueue) GetOfflineMessages(userID string) ([]redis_models.ChatMessage, error) {
	return q.items[userID], nil
}

func (q *memoryQueue) TrimOfflineMessages(userID string, count int) error {
	if count >= len(q.items[userID]) {
		delete(q.items, userID)
		return nil
	}
	q.items[userID] = q.items[userID][count:]
	return nil
}

func (q *memoryQueue) ExpireOfflineMessages(string, time.Duration) error { return nil }

type fixture struct {
	gw     *Gateway
	reg    *registry.Registry
	rooms  *directory.Directory
	queue  *memoryQueue
	social *mockSocial
	clock  *clock.Fake
}

func newFixture(t *testing.T, withSocial bool) *fixture {
	t.Helper()
	fake := clock.NewFake(time.Unix(0, 0))
	reg := registry.New(registry.Options{Clock: fake})
	rooms := directory.New(directory.Options{
		Clock: fake,
		Pick:  func(int) int { return 0 },
		NewID: func() string { return "room1" },
	})
	queue := &memoryQueue{items: map[string][]redis_models.ChatMessage{}}
	f := &fixture{reg: reg, rooms: rooms, queue: queue, clock: fake}

	opts := Options{
		Registry:     reg,
		Rooms:        rooms,
		Relay:        relay.New(queue, reg, fake),
		MessageRate:  1000,
		MessageBurst: 1000,
	}
	if withSocial {
		f.social = &mockSocial{}
		f.social.On("EnsureProfile", mock.Anything, "").Return(&postgres.GameProfile{}, nil)
		opts.Social = f.social
	}
	f.gw = New(opts)
	return f
}

func (f *fixture) connect(userID string) *coretest.Conn {
	conn := coretest.NewConn("c-" + userID)
	f.gw.Handle(conn, messages.Inbound{Type: messages.DirectMessage, UserID: userID, To: userID + "-self", Message: "hello"})
	conn.Reset()
	return conn
}

func TestFirstMessageBindsIdentity(t *testing.T) {
	f := newFixture(t, false)
	conn := coretest.NewConn("c-ana")

	f.gw.Handle(conn, messages.Inbound{Type: messages.CreateRoom, UserID: "ana"})

	identity, ok := f.reg.IdentityOf(conn)
	require.True(t, ok)
	assert.Equal(t, "ana", identity)
	assert.True(t, f.rooms.Has("room1"))
	assert.Equal(t, 1, conn.Count("room_created"))
}

func TestBoundIdentityOverridesClaims(t *testing.T) {
	f := newFixture(t, false)
	ana := f.connect("ana")

	f.gw.Handle(ana, messages.Inbound{Type: messages.CreateRoom, UserID: "mallory"})

	summary, ok := f.rooms.Info("room1")
	require.True(t, ok)
	assert.Equal(t, "ana", summary.Host)
}

func TestRelayTypesNeedIdentity(t *testing.T) {
	f := newFixture(t, false)
	conn := coretest.NewConn("c-anon")

	f.gw.Handle(conn, messages.Inbound{Type: messages.DirectMessage, To: "bob", Message: "hi"})

	got, ok := conn.Last("error")
	require.True(t, ok)
	assert.Equal(t, "missing_user", got["code"])
}

func TestDirectMessageQueuedThenFlushedOnConnect(t *testing.T) {
	f := newFixture(t, false)
	ana := f.connect("ana")

	f.gw.Handle(ana, messages.Inbound{Type: messages.DirectMessage, To: "bob", Message: "are you there?"})
	status, ok := ana.Last(relay.EventMessageStatus)
	require.True(t, ok)
	assert.Equal(t, true, status["queued"])

	bob := coretest.NewConn("c-bob")
	f.gw.Handle(bob, messages.Inbound{Type: messages.JoinRoom, UserID: "bob", RoomID: "nowhere"})

	msg, ok := bob.Last(relay.EventDirectMessage)
	require.True(t, ok)
	assert.Equal(t, "are you there?", msg["message"])
	assert.Equal(t, "ana", msg["from"])
	assert.Empty(t, f.queue.items["bob"])
	assert.Equal(t, 1, bob.Count(messages.EventRoomNotFound))
}

func TestDirectMessageLive(t *testing.T) {
	f := newFixture(t, false)
	ana, bob := f.connect("ana"), f.connect("bob")

	f.gw.Handle(ana, messages.Inbound{Type: messages.DirectMessage, To: "bob", Message: "hi"})

	assert.Equal(t, 1, bob.Count(relay.EventDirectMessage))
	status, _ := ana.Last(relay.EventMessageStatus)
	assert.Equal(t, true, status["delivered"])
}

func TestFriendRequestFlow(t *testing.T) {
	f := newFixture(t, true)
	ana, bob := f.connect("ana"), f.connect("bob")
	f.social.On("SendRequest", "ana", "bob").Return(nil).Once()
	f.social.On("AcceptRequest", "bob", "ana").Return(nil).Once()

	f.gw.Handle(ana, messages.Inbound{Type: messages.SendFriendRequest, To: "bob"})
	req, ok := bob.Last(EventFriendRequest)
	require.True(t, ok)
	assert.Equal(t, "ana", req["from"])
	assert.Equal(t, 1, ana.Count(EventFriendRequestSent))

	f.gw.Handle(bob, messages.Inbound{Type: messages.AcceptFriendRequest, To: "ana"})
	accepted, ok := ana.Last(EventFriendRequestAccepted)
	require.True(t, ok)
	assert.Equal(t, "bob", accepted["userId"])
	accepted, ok = bob.Last(EventFriendRequestAccepted)
	require.True(t, ok)
	assert.Equal(t, "ana", accepted["userId"])

	f.social.AssertExpectations(t)
	f.social.AssertCalled(t, "EnsureProfile", "ana", "")
}

func TestFriendRequestErrors(t *testing.T) {
	f := newFixture(t, true)
	ana := f.connect("ana")
	f.social.On("SendRequest", "ana", "ana").Return(social.ErrSelf)
	f.social.On("SendRequest", "ana", "bob").Return(social.ErrAlreadyFriends)
	f.social.On("AcceptRequest", "ana", "eve").Return(social.ErrNoRequest)
	f.social.On("AcceptRequest", "ana", "zed").Return(errors.New("connection reset"))

	cases := []struct {
		msg  messages.Inbound
		code string
	}{
		{messages.Inbound{Type: messages.SendFriendRequest, To: "ana"}, "invalid_friend_request"},
		{messages.Inbound{Type: messages.SendFriendRequest, To: "bob"}, "already_friends"},
		{messages.Inbound{Type: messages.AcceptFriendRequest, To: "eve"}, "no_friend_request"},
		{messages.Inbound{Type: messages.AcceptFriendRequest, To: "zed"}, "internal_error"},
		{messages.Inbound{Type: messages.SendFriendRequest}, "missing_recipient"},
	}
	for _, tc := range cases {
		ana.Reset()
		f.gw.Handle(ana, tc.msg)
		got, ok := ana.Last("error")
		require.True(t, ok, tc.code)
		assert.Equal(t, tc.code, got["code"])
	}
}

func TestFriendRequestsWithoutDatabase(t *testing.T) {
	f := newFixture(t, false)
	ana := f.connect("ana")

	f.gw.Handle(ana, messages.Inbound{Type: messages.SendFriendRequest, To: "bob"})

	got, ok := ana.Last("error")
	require.True(t, ok)
	assert.Equal(t, "social_unavailable", got["code"])
}

func TestInviteToRoom(t *testing.T) {
	f := newFixture(t, false)
	ana, bob := f.connect("ana"), f.connect("bob")
	f.gw.Handle(ana, messages.Inbound{Type: messages.CreateSkribbleRoom, Username: "Ana"})

	f.gw.Handle(ana, messages.Inbound{Type: messages.InviteToRoom, To: "bob", RoomID: "room1"})
	invite, ok := bob.Last(EventRoomInvite)
	require.True(t, ok)
	assert.Equal(t, "ana", invite["from"])
	assert.Equal(t, "skribble", invite["gameMode"])

	f.gw.Handle(ana, messages.Inbound{Type: messages.InviteToRoom, To: "carl", RoomID: "room1"})
	got, ok := ana.Last("error")
	require.True(t, ok)
	assert.Equal(t, "user_offline", got["code"])

	f.gw.Handle(ana, messages.Inbound{Type: messages.InviteToRoom, To: "bob", RoomID: "gone"})
	assert.Equal(t, 1, ana.Count(messages.EventRoomNotFound))
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, false)
	f.gw.limit, f.gw.burst = 0.0001, 2
	conn := coretest.NewConn("c-spam")

	for i := 0; i < 4; i++ {
		f.gw.Handle(conn, messages.Inbound{Type: messages.JoinRoom, UserID: "spam", RoomID: "x"})
	}

	assert.Equal(t, 2, conn.Count(messages.EventRoomNotFound))
	assert.Equal(t, 2, conn.Count(messages.EventRateLimited))
}

func TestDisconnectLeavesRoomsAndGoesOffline(t *testing.T) {
	f := newFixture(t, false)
	ana, bob := f.connect("ana"), f.connect("bob")
	f.gw.Handle(ana, messages.Inbound{Type: messages.CreateRoom})
	f.gw.Handle(bob, messages.Inbound{Type: messages.JoinRoom, RoomID: "room1"})
	bob.Reset()

	f.gw.Disconnect(ana)

	summary, ok := f.rooms.Info("room1")
	require.True(t, ok)
	assert.Equal(t, "bob", summary.Host)
	assert.Equal(t, []string{"bob"}, summary.Players)

	presence, ok := bob.Last(messages.EventPresence)
	require.True(t, ok)
	assert.Equal(t, "offline", presence["status"])
	_, online := f.reg.Lookup("ana")
	assert.False(t, online)

	f.gw.Disconnect(bob)
	assert.False(t, f.rooms.Has("room1"))
}

type panicRooms struct{}

func (panicRooms) Route(core.Conn, messages.Inbound) { panic("boom") }
func (panicRooms) Disconnect(core.Conn)              {}
func (panicRooms) Info(string) (core.Summary, bool)  { return core.Summary{}, false }

func TestPanicsAreContained(t *testing.T) {
	reg := registry.New(registry.Options{})
	gw := New(Options{Registry: reg, Rooms: panicRooms{}})
	conn := coretest.NewConn("c-1")

	assert.NotPanics(t, func() {
		gw.Handle(conn, messages.Inbound{Type: messages.JoinRoom, UserID: "ana"})
	})
	got, ok := conn.Last("error")
	require.True(t, ok)
	assert.Equal(t, "internal_error", got["code"])
}

func TestConnectBindsHandshakeIdentity(t *testing.T) {
	f := newFixture(t, false)
	conn := coretest.NewConn("c-ana")

	f.gw.Connect(conn, "")
	_, ok := f.reg.IdentityOf(conn)
	assert.False(t, ok)

	f.gw.Connect(conn, "ana")
	f.gw.Handle(conn, messages.Inbound{Type: messages.CreateRoom, UserID: "someone-else"})

	summary, ok := f.rooms.Info("room1")
	require.True(t, ok)
	assert.Equal(t, "ana", summary.Host)
}
