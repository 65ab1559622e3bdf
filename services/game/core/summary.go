package core

// Summary is the public, secret-free view of a room used by the directory
// listing and the REST surface.
type Summary struct {
	RoomID   string   `json:"roomId"`
	Mode     string   `json:"gameMode"`
	Host     string   `json:"host"`
	Players  []string `json:"players"`
	Phase    string   `json:"phase"`
	Round    int      `json:"round"`
	Capacity int      `json:"capacity"`
}
