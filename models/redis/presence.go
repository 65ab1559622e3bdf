package redis

type PlayerStatus string

const (
	StatusOnline  PlayerStatus = "online"
	StatusOffline PlayerStatus = "offline"
)

type PlayerPresence struct {
	UserID   string       `json:"userId"`
	Status   PlayerStatus `json:"status"`
	LastSeen int64        `json:"last_seen"` // Unix timestamp
	ConnID   string       `json:"conn_id,omitempty"`
}
