package routes

import (
	"Wordspy/controllers"
	"Wordspy/services/social"
	"Wordspy/services/websocket"
	utils "Wordspy/utils"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the services the REST surface reads from.
type Dependencies struct {
	Rooms    controllers.RoomDirectory
	Presence controllers.PresenceSource
	// Social is nil when no database is configured.
	Social     social.Store
	Dispatcher websocket.Dispatcher
	Origins    []string
	BaseURL    string
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.Use(utils.Logger(), utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	// Raw JSON envelope endpoint, the socket.io one is mounted by the socket server
	api.GET("/ws", websocket.Handler(deps.Dispatcher, deps.Origins))

	rooms := api.Group("/rooms")
	{
		rooms.GET("", controllers.ListRooms(deps.Rooms))
		rooms.GET("/:id", controllers.GetRoom(deps.Rooms))
		rooms.GET("/:id/qr", controllers.RoomQR(deps.Rooms, deps.BaseURL))
	}

	skribble := api.Group("/skribble")
	{
		skribble.POST("/rooms/:id/seats", controllers.ReserveSeat(deps.Rooms))
		skribble.GET("/seat", controllers.GetSeat(deps.Rooms))
	}

	users := api.Group("/users/:username")
	{
		users.GET("/presence", controllers.GetPresence(deps.Presence))
		users.GET("/friends", controllers.ListFriends(deps.Social, deps.Presence))
		users.GET("/profile", controllers.GetProfile(deps.Social))
	}
}
