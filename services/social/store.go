// Package social keeps player profiles, friend requests and friendships in
// PostgreSQL.
package social

import (
	"Wordspy/models/postgres"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSelf           = errors.New("cannot befriend yourself")
	ErrNoRequest      = errors.New("no pending friend request")
	ErrAlreadyFriends = errors.New("users are already friends")
	ErrNotFound       = errors.New("profile not found")
)

// Store is what the gateway and the REST controllers need from the social
// database.
type Store interface {
	EnsureProfile(username, avatar string) (*postgres.GameProfile, error)
	Profile(username string) (*postgres.GameProfile, error)
	SendRequest(from, to string) error
	AcceptRequest(recipient, sender string) error
	PendingRequests(username string) ([]string, error)
	Friends(username string) ([]string, error)
	AreFriends(a, b string) (bool, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// EnsureProfile creates the profile on first sight and refreshes its avatar.
func (s *GormStore) EnsureProfile(username, avatar string) (*postgres.GameProfile, error) {
	profile := postgres.GameProfile{Username: username}
	if err := s.db.Where(postgres.GameProfile{Username: username}).
		Attrs(postgres.GameProfile{Avatar: avatar}).
		FirstOrCreate(&profile).Error; err != nil {
		return nil, fmt.Errorf("error ensuring profile %s: %w", username, err)
	}
	if avatar != "" && profile.Avatar != avatar {
		if err := s.db.Model(&profile).Update("avatar", avatar).Error; err != nil {
			return nil, fmt.Errorf("error updating avatar of %s: %w", username, err)
		}
	}
	return &profile, nil
}

func (s *GormStore) Profile(username string) (*postgres.GameProfile, error) {
	var profile postgres.GameProfile
	err := s.db.Where("username = ?", username).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading profile %s: %w", username, err)
	}
	return &profile, nil
}

// SendRequest records a pending request. Repeating it is not an error.
func (s *GormStore) SendRequest(from, to string) error {
	if from == to {
		return ErrSelf
	}
	friends, err := s.AreFriends(from, to)
	if err != nil {
		return err
	}
	if friends {
		return ErrAlreadyFriends
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, username := range []string{from, to} {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&postgres.GameProfile{Username: username}).Error; err != nil {
				return fmt.Errorf("error creating profile %s: %w", username, err)
			}
		}
		request := postgres.FriendshipRequest{Sender: from, Recipient: to}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&request).Error; err != nil {
			return fmt.Errorf("error creating friend request: %w", err)
		}
		return nil
	})
}

// AcceptRequest turns the request sender -> recipient into a friendship.
func (s *GormStore) AcceptRequest(recipient, sender string) error {
	if recipient == sender {
		return ErrSelf
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("sender = ? AND recipient = ?", sender, recipient).
			Delete(&postgres.FriendshipRequest{})
		if result.Error != nil {
			return fmt.Errorf("error deleting friend request: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNoRequest
		}

		friendship := postgres.NewFriendship(sender, recipient)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&friendship).Error; err != nil {
			return fmt.Errorf("error creating friendship: %w", err)
		}
		return nil
	})
}

// PendingRequests lists who asked username for friendship.
func (s *GormStore) PendingRequests(username string) ([]string, error) {
	var senders []string
	if err := s.db.Model(&postgres.FriendshipRequest{}).
		Where("recipient = ?", username).
		Order("created_at").
		Pluck("sender", &senders).Error; err != nil {
		return nil, fmt.Errorf("error listing friend requests: %w", err)
	}
	return senders, nil
}

func (s *GormStore) Friends(username string) ([]string, error) {
	var friendships []postgres.Friendship
	if err := s.db.Where("username1 = ? OR username2 = ?", username, username).
		Find(&friendships).Error; err != nil {
		return nil, fmt.Errorf("error listing friends: %w", err)
	}

	friends := make([]string, 0, len(friendships))
	for _, f := range friendships {
		if f.Username1 == username {
			friends = append(friends, f.Username2)
		} else {
			friends = append(friends, f.Username1)
		}
	}
	sort.Strings(friends)
	return friends, nil
}

func (s *GormStore) AreFriends(a, b string) (bool, error) {
	pair := postgres.NewFriendship(a, b)
	var count int64
	if err := s.db.Model(&postgres.Friendship{}).
		Where("username1 = ? AND username2 = ?", pair.Username1, pair.Username2).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("error checking friendship: %w", err)
	}
	return count > 0, nil
}
