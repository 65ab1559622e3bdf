package controllers

import (
	redis_models "Wordspy/models/redis"
	"Wordspy/services/social"
	"Wordspy/utils/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PresenceSource answers whether a user is connected.
type PresenceSource interface {
	Presence(identity string) redis_models.PlayerPresence
}

type friendStatus struct {
	Username string                    `json:"username"`
	Status   redis_models.PlayerStatus `json:"status"`
}

// @Summary Online status of a user
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} redis.PlayerPresence
// @Router /users/{username}/presence [get]
func GetPresence(presence PresenceSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, presence.Presence(c.Param("username")))
	}
}

// @Summary Get a list of a user friends
// @Description Returns the user's friends with their online status
// @Tags friends
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} object{username=string,status=string}
// @Failure 500 {object} object{error=string}
// @Failure 503 {object} object{error=string}
// @Router /users/{username}/friends [get]
func ListFriends(store social.Store, presence PresenceSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Friends are not available"})
			return
		}

		username := c.Param("username")
		friends, err := store.Friends(username)
		if err != nil {
			logger.Criticalf("[FRIENDS-ERROR] Listing friends of %s: %v", username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching friendships"})
			return
		}

		out := make([]friendStatus, 0, len(friends))
		for _, friend := range friends {
			out = append(out, friendStatus{Username: friend, Status: presence.Presence(friend).Status})
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary Public profile of a user
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} object{username=string,avatar=string,preferences=object,pendingRequests=[]string}
// @Failure 404 {object} object{error=string}
// @Failure 503 {object} object{error=string}
// @Router /users/{username}/profile [get]
func GetProfile(store social.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Profiles are not available"})
			return
		}

		username := c.Param("username")
		profile, err := store.Profile(username)
		if errors.Is(err, social.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		if err != nil {
			logger.Criticalf("[PROFILE-ERROR] Reading profile of %s: %v", username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching profile"})
			return
		}

		pending, err := store.PendingRequests(username)
		if err != nil {
			logger.Criticalf("[PROFILE-ERROR] Reading requests of %s: %v", username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching profile"})
			return
		}

		preferences := profile.Preferences
		if len(preferences) == 0 {
			preferences = []byte("{}")
		}
		c.JSON(http.StatusOK, gin.H{
			"username":        profile.Username,
			"avatar":          profile.Avatar,
			"preferences":     preferences,
			"memberSince":     profile.CreatedAt,
			"pendingRequests": pending,
		})
	}
}
