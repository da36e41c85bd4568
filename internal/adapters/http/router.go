// Package http is the gin transport: identity middleware, the REST mutation
// surface, and the SSE/WebSocket streaming endpoints.
package http

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/config"
)

// ClientTokenMiddleware pins an opaque subscriber id to the client via
// cookie. The id is the only identity this server knows.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("uid")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("uid", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, h *Handlers) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ParleySessions", store))
	r.Use(ClientTokenMiddleware())

	r.POST("/rooms", h.CreateRoom)

	room := r.Group("/rooms/:rid")
	room.GET("", h.JoinRoom)
	room.POST("/init", h.Init)
	room.GET("/listen", h.Listen)
	room.GET("/ws", h.ListenWS)
	room.POST("/messages", h.SendMessage)
	room.PATCH("/title", h.SetTitle)
	room.PATCH("/id", h.RenameRoom)
	room.PATCH("/settings", h.UpdateSettings)

	user := room.Group("/user")
	user.PATCH("/name", h.SetUserName)
	user.PATCH("/sending-from/:actorID", h.SetSendingFrom)
	user.PATCH("/sending-to/:actorID", h.SetSendingTo)

	actors := room.Group("/actors")
	actors.POST("", h.CreateActor)
	actor := actors.Group("/:actorID")
	actor.POST("/clone", h.CloneActor)
	actor.PATCH("/name", h.SetActorName)
	actor.PATCH("/id", h.RenameActor)
	actor.PATCH("/color", h.SetActorColor)
	actor.PATCH("/img", h.SetActorImg)
	actor.PATCH("/reserve", h.ToggleReserve)
	actor.POST("/languages/known/:language", h.AddKnownLanguage)
	actor.DELETE("/languages/known/:language", h.RemoveKnownLanguage)
	actor.POST("/languages/familiar/:language", h.AddFamiliarLanguage)
	actor.DELETE("/languages/familiar/:language", h.RemoveFamiliarLanguage)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
