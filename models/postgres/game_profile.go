package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'GameProfile' is the public profile of a player. It is referenced by
 * Friendship and FriendshipRequest
 */
type GameProfile struct {
	Username    string         `gorm:"primaryKey;size:50;not null"`
	Avatar      string         `gorm:"size:255;default:''"`
	Preferences datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	CreatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP"`

	Friendships1   []Friendship        `gorm:"foreignKey:Username1"`
	Friendships2   []Friendship        `gorm:"foreignKey:Username2"`
	FriendRequests []FriendshipRequest `gorm:"foreignKey:Recipient"`
}
