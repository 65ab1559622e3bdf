package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFriendshipOrdersPair(t *testing.T) {
	f := NewFriendship("zoe", "ana")
	assert.Equal(t, "ana", f.Username1)
	assert.Equal(t, "zoe", f.Username2)
	assert.Equal(t, f, NewFriendship("ana", "zoe"))
}

func TestFriendshipRejectsSelf(t *testing.T) {
	f := NewFriendship("ana", "ana")
	assert.Error(t, f.BeforeSave(nil))

	f = NewFriendship("ana", "bob")
	assert.NoError(t, f.BeforeSave(nil))
}
