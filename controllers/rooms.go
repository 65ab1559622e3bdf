package controllers

import (
	"Wordspy/services/game/core"
	"Wordspy/services/game/directory"
	"Wordspy/services/game/skribble"
	"Wordspy/utils/logger"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024

	seatRoomKey = "skribble_room"
	seatUserKey = "skribble_user"
)

// RoomDirectory is the read side of the room directory plus HTTP seat
// reservation.
type RoomDirectory interface {
	List() []core.Summary
	Info(roomID string) (core.Summary, bool)
	ReserveSeat(roomID, userID, name, avatar string) error
}

// @Summary List the open rooms
// @Tags rooms
// @Produce json
// @Success 200 {array} core.Summary
// @Router /rooms [get]
func ListRooms(rooms RoomDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, rooms.List())
	}
}

// @Summary Public summary of one room
// @Tags rooms
// @Produce json
// @Param id path string true "Room id"
// @Success 200 {object} core.Summary
// @Failure 404 {object} object{error=string}
// @Router /rooms/{id} [get]
func GetRoom(rooms RoomDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, ok := rooms.Info(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// @Summary QR code with the join link of a room
// @Tags rooms
// @Produce png
// @Param id path string true "Room id"
// @Param size query int false "Image size in pixels"
// @Success 200 {file} binary
// @Failure 404 {object} object{error=string}
// @Router /rooms/{id}/qr [get]
func RoomQR(rooms RoomDirectory, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, ok := rooms.Info(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}

		size := defaultQRSize
		if raw := c.Query("size"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 64 || parsed > maxQRSize {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("size must be between 64 and %d", maxQRSize)})
				return
			}
			size = parsed
		}

		png, err := qrcode.Encode(JoinLink(baseURL, summary), qrcode.Medium, size)
		if err != nil {
			logger.Criticalf("[QR-ERROR] Encoding join link of %s: %v", summary.RoomID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating QR code"})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}

// JoinLink is the URL a client opens to join a room.
func JoinLink(baseURL string, summary core.Summary) string {
	query := url.Values{}
	query.Set("room", summary.RoomID)
	query.Set("mode", summary.Mode)
	return baseURL + "/join?" + query.Encode()
}

type seatRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// @Summary Reserve a seat in a Skribble room before connecting
// @Description The seat is bound to the first connection that joins with the same userId
// @Tags skribble
// @Accept json
// @Produce json
// @Param id path string true "Room id"
// @Param seat body object{userId=string,username=string,avatar=string} true "Seat"
// @Success 201 {object} core.Summary
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /skribble/rooms/{id}/seats [post]
func ReserveSeat(rooms RoomDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req seatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}
		roomID := c.Param("id")
		name := req.Username
		if name == "" {
			name = req.UserID
		}

		err := rooms.ReserveSeat(roomID, req.UserID, name, req.Avatar)
		switch {
		case errors.Is(err, directory.ErrRoomNotFound), errors.Is(err, directory.ErrWrongKind):
			c.JSON(http.StatusNotFound, gin.H{"error": "Skribble room not found"})
			return
		case errors.Is(err, skribble.ErrRoomFull):
			c.JSON(http.StatusConflict, gin.H{"error": "Room is full"})
			return
		case err != nil:
			logger.Criticalf("[SEAT-ERROR] Reserving %s in %s: %v", req.UserID, roomID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reserving seat"})
			return
		}

		session := sessions.Default(c)
		session.Set(seatRoomKey, roomID)
		session.Set(seatUserKey, req.UserID)
		if err := session.Save(); err != nil {
			logger.Warningf("[SEAT] Error saving session of %s: %v", req.UserID, err)
		}

		summary, _ := rooms.Info(roomID)
		c.JSON(http.StatusCreated, summary)
	}
}

// @Summary Seat reserved by this browser session
// @Tags skribble
// @Produce json
// @Success 200 {object} object{roomId=string,userId=string}
// @Failure 404 {object} object{error=string}
// @Router /skribble/seat [get]
func GetSeat(rooms RoomDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		roomID, _ := session.Get(seatRoomKey).(string)
		userID, _ := session.Get(seatUserKey).(string)
		if roomID == "" || userID == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "No seat reserved"})
			return
		}
		if _, ok := rooms.Info(roomID); !ok {
			session.Clear()
			session.Save()
			c.JSON(http.StatusNotFound, gin.H{"error": "Room no longer exists"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"roomId": roomID, "userId": userID})
	}
}
