package messages

// Namespaces carried in the EventFrom field of an envelope.
const (
	NamespaceSpy      = "spy"
	NamespaceSkribble = "skribble"
	NamespaceRelay    = "relay"
)

// Spy inbound message types
const (
	CreateRoom            = "CREATE_ROOM"
	JoinRoom              = "join_room"
	Ready                 = "ready"
	NotReady              = "notready"
	Vote                  = "vote"
	SendChat              = "send_chat"
	LeaveRoom             = "leave_room"
	SkipSpeakingStatement = "skip_speaking_statement"
)

// Skribble inbound message types
const (
	CreateSkribbleRoom   = "CREATE_SKRIBBLE_ROOM"
	JoinSkribbleRoom     = "JOIN_SKRIBBLE_ROOM"
	LeaveSkribbleRoom    = "LEAVE_SKRIBBLE_ROOM"
	StartSkribbleGame    = "START_SKRIBBLE_GAME"
	SkribbleGameSettings = "SKRIBBLE_GAME_SETTINGS"
	SkribbleMessage      = "SKRIBBLE_MESSAGE"
	SkribbleDraw         = "SKRIBBLE_DRAW"
	SkribbleClearCanvas  = "SKRIBBLE_CLEAR_CANVAS"
	SkribbleUndo         = "SKRIBBLE_UNDO"
	SkribbleRoundEnd     = "SKRIBBLE_ROUND_END"
)

// Relay / social inbound message types
const (
	DirectMessage       = "direct_message"
	SendFriendRequest   = "send_friend_request"
	AcceptFriendRequest = "accept_friend_request"
	InviteToRoom        = "invite_to_room"
)

// Outbound events shared by the gateway and both room kinds
const (
	EventError           = "error"
	EventRoomNotFound    = "room_not_found"
	EventSessionReplaced = "session_replaced"
	EventPresence        = "presence"
	EventRateLimited     = "rate_limited"
)

// SpyTypes is the closed set of message types a Spy room handles.
func SpyTypes() []string {
	return []string{JoinRoom, Ready, NotReady, Vote, SendChat, LeaveRoom, SkipSpeakingStatement}
}

// SkribbleTypes is the closed set of message types a Skribble room handles.
func SkribbleTypes() []string {
	return []string{
		JoinSkribbleRoom, LeaveSkribbleRoom, StartSkribbleGame, SkribbleGameSettings,
		SkribbleMessage, SkribbleDraw, SkribbleClearCanvas, SkribbleUndo, SkribbleRoundEnd,
	}
}

// RelayTypes are handled by the gateway without a room.
func RelayTypes() []string {
	return []string{DirectMessage, SendFriendRequest, AcceptFriendRequest, InviteToRoom}
}

// CreateTypes allocate a new room.
func CreateTypes() []string {
	return []string{CreateRoom, CreateSkribbleRoom}
}

// AllTypes lists every inbound type the server accepts.
func AllTypes() []string {
	all := append([]string{}, CreateTypes()...)
	all = append(all, SpyTypes()...)
	all = append(all, SkribbleTypes()...)
	return append(all, RelayTypes()...)
}

func IsKnown(messageType string) bool {
	for _, t := range AllTypes() {
		if t == messageType {
			return true
		}
	}
	return false
}
