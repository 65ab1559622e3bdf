package social

import (
	"Wordspy/config"
	"Wordspy/models/postgres"
	"os"
	"strconv"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// liveDB connects to the database of the local environment and skips the
// test when none is reachable.
func liveDB(t *testing.T) *gorm.DB {
	t.Helper()
	godotenv.Load("../../.env")

	host := os.Getenv("WORDSPY_POSTGRES_HOST")
	if host == "" {
		t.Skip("WORDSPY_POSTGRES_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("WORDSPY_POSTGRES_PORT"))
	if port == 0 {
		port = 5432
	}
	cfg := &config.Config{
		PostgresUser:     os.Getenv("WORDSPY_POSTGRES_USER"),
		PostgresPassword: os.Getenv("WORDSPY_POSTGRES_PASSWORD"),
		PostgresHost:     host,
		PostgresPort:     port,
		PostgresDatabase: os.Getenv("WORDSPY_POSTGRES_DATABASE"),
	}
	db, err := config.ConnectGORM(cfg)
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	require.NoError(t, config.MigrateDatabase(db))
	return db
}

// Helper function to clean up after tests
func cleanupDB(t *testing.T, db *gorm.DB, usernames ...string) {
	assert.NoError(t, db.Where("sender IN ? OR recipient IN ?", usernames, usernames).Delete(&postgres.FriendshipRequest{}).Error)
	assert.NoError(t, db.Where("username1 IN ? OR username2 IN ?", usernames, usernames).Delete(&postgres.Friendship{}).Error)
	assert.NoError(t, db.Where("username IN ?", usernames).Delete(&postgres.GameProfile{}).Error)
}

func TestProfiles(t *testing.T) {
	db := liveDB(t)
	store := NewGormStore(db)
	defer cleanupDB(t, db, "test_ana")

	_, err := store.Profile("test_ana")
	assert.ErrorIs(t, err, ErrNotFound)

	profile, err := store.EnsureProfile("test_ana", "")
	require.NoError(t, err)
	assert.Equal(t, "test_ana", profile.Username)

	_, err = store.EnsureProfile("test_ana", "cat.png")
	require.NoError(t, err)
	profile, err = store.Profile("test_ana")
	require.NoError(t, err)
	assert.Equal(t, "cat.png", profile.Avatar)
}

func TestFriendRequestLifecycle(t *testing.T) {
	db := liveDB(t)
	store := NewGormStore(db)
	defer cleanupDB(t, db, "test_ana", "test_bob")

	assert.ErrorIs(t, store.SendRequest("test_ana", "test_ana"), ErrSelf)
	assert.ErrorIs(t, store.AcceptRequest("test_bob", "test_ana"), ErrNoRequest)

	require.NoError(t, store.SendRequest("test_ana", "test_bob"))
	require.NoError(t, store.SendRequest("test_ana", "test_bob"))

	pending, err := store.PendingRequests("test_bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"test_ana"}, pending)

	require.NoError(t, store.AcceptRequest("test_bob", "test_ana"))

	friends, err := store.Friends("test_ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"test_bob"}, friends)
	friends, err = store.Friends("test_bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"test_ana"}, friends)

	ok, err := store.AreFriends("test_bob", "test_ana")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, store.SendRequest("test_bob", "test_ana"), ErrAlreadyFriends)
	pending, err = store.PendingRequests("test_bob")
	require.NoError(t, err)
	assert.Empty(t, pending)
}
