package postgres

import (
	"time"
)

// FriendshipRequest is a pending request from Sender to Recipient.
type FriendshipRequest struct {
	Sender    string    `gorm:"primaryKey;size:50;not null"`
	Recipient string    `gorm:"primaryKey;size:50;not null"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	SenderProfile    GameProfile `gorm:"foreignKey:Sender;constraint:OnDelete:CASCADE;"`
	RecipientProfile GameProfile `gorm:"foreignKey:Recipient;constraint:OnDelete:CASCADE;"`
}
