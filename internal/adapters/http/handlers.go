package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

type Handlers struct {
	Manager  *app.Manager
	Registry *core.Registry
	Cfg      *config.Config
}

// unit runs fn as one unit of work: lock the room, mutate, flush on success,
// discard on failure. Handlers write their own response body; anything
// unwritten ends as 204.
func (h *Handlers) unit(c *gin.Context, fn func(v *app.RoomView) error) {
	rid := c.Param("rid")
	uid := c.GetString("client_token")

	view, err := h.Manager.Begin(rid, uid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := fn(view); err != nil {
		view.Discard()
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	view.End()
	if !c.Writer.Written() {
		c.Status(http.StatusNoContent)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrRoomNotFound),
		errors.Is(err, app.ErrActorNotFound),
		errors.Is(err, app.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrRoomIDTaken), errors.Is(err, domain.ErrIDTaken):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

type createRoomRequest struct {
	RoomID string `json:"roomId"`
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	uid := c.GetString("client_token")
	var req createRoomRequest
	_ = c.ShouldBindJSON(&req) // body optional

	room := h.Manager.Create(uid, req.RoomID)
	c.JSON(http.StatusCreated, gin.H{"id": room.ID()})
}

func (h *Handlers) JoinRoom(c *gin.Context) {
	h.unit(c, func(v *app.RoomView) error {
		v.EnsureUser()
		st := v.State()
		c.JSON(http.StatusOK, gin.H{
			"id":     string(st.ID),
			"title":  st.Title,
			"hostId": string(st.HostID),
		})
		return nil
	})
}

func (h *Handlers) Init(c *gin.Context) {
	h.unit(c, func(v *app.RoomView) error {
		v.Init()
		return nil
	})
}

type sendMessageRequest struct {
	Message  string `json:"message" binding:"required"`
	Language string `json:"language" binding:"required"`
}

func (h *Handlers) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.unit(c, func(v *app.RoomView) error {
		msg, err := v.ReceiveMessage(req.Message, req.Language)
		if err != nil {
			return err
		}
		log.Debug().Str("module", "adapters.http").Str("room", v.RoomID()).Str("message", string(msg.ID)).Msg("message received")
		c.JSON(http.StatusCreated, gin.H{"id": string(msg.ID)})
		return nil
	})
}

type titleRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *Handlers) SetTitle(c *gin.Context) {
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.unit(c, func(v *app.RoomView) error {
		v.SetTitle(req.Title)
		return nil
	})
}

type idRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *Handlers) RenameRoom(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.unit(c, func(v *app.RoomView) error {
		return v.RenameRoom(req.ID)
	})
}

type settingsRequest struct {
	DefaultIntro *string  `json:"defaultIntro"`
	Languages    []string `json:"languages"`
}

// UpdateSettings patches the room settings record. Absent fields stay as they
// are.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.unit(c, func(v *app.RoomView) error {
		patch := map[string]any{}
		if req.DefaultIntro != nil {
			patch["defaultIntro"] = *req.DefaultIntro
		}
		if req.Languages != nil {
			patch["languages"] = req.Languages
		}
		v.UpdateSettings(patch)
		return nil
	})
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handlers) SetUserName(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.unit(c, func(v *app.RoomView) error {
		return v.SetUserName(req.Name)
	})
}

func (h *Handlers) SetSendingFrom(c *gin.Context) {
	h.unit(c, func(v *app.RoomView) error {
		return v.SetSendingFrom(c.Param("actorID"))
	})
}

func (h *Handlers) SetSendingTo(c *gin.Context) {
	extend := c.Query("extend") == "true"
	h.unit(c, func(v *app.RoomView) error {
		return v.SetSendingTo(c.Param("actorID"), extend)
	})
}

func (h *Handlers) CreateActor(c *gin.Context) {
	h.unit(c, func(v *app.RoomView) error {
		a := v.CreateActor()
		c.JSON(http.StatusCreated, gin.H{"id": string(a.ID)})
		return nil
	})
}

func (h *Handlers) CloneActor(c *gin.Context) {
	h.unit(c, func(v *app.RoomView) error {
		clone, err := v.CloneActor(c.Param("actorID"))
		if err != nil {
			return err
		}
		c.JSON(http.StatusCreated, gin.H{"id": string(clone.ID)})
		return nil
	})
}

func (h *Handlers) SetActorName(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.unit(c, func(v *app.RoomView) error {
		return v.SetActorName(c.Param("actorID"), req.Name)
	})
}

func (h *Handlers) RenameActor(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.unit(c, func(v *app.RoomView) error {
		return v.RenameActor(c.Param("actorID"), req.ID)
	})
}

type colorRequest struct {
	Color string `json:"color" binding:"required"`
}

func (h *Handlers) SetActorColor(c *gin.Context) {
	var req colorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.unit(c, func(v *app.RoomView) error {
		return v.SetActorColor(c.Param("actorID"), req.Color)
	})
}

type imgRequest struct {
	Img string `json:"img" binding:"required"`
}

func (h *Handlers) SetActorImg(c *gin.Context) {
	var req imgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.unit(c, func(v *app.RoomView) error {
		return v.SetActorImg(c.Param("actorID"), req.Img)
	})
}

func (h *Handlers) ToggleReserve(c *gin.Context) {
	h.unit(c, func(v *app.RoomView) error {
		return v.ToggleReserve(c.Param("actorID"))
	})
}

func (h *Handlers) AddKnownLanguage(c *gin.Context) {
	h.unit(c, func(v *app.RoomView) error {
		return v.AddKnownLanguage(c.Param("actorID"), c.Param("language"))
	})
}

func (h *Handlers) RemoveKnownLanguage(c *gin.Context) {
	h.unit(c, func(v *app.RoomView) error {
		return v.RemoveKnownLanguage(c.Param("actorID"), c.Param("language"))
	})
}

func (h *Handlers) AddFamiliarLanguage(c *gin.Context) {
	h.unit(c, func(v *app.RoomView) error {
		return v.AddFamiliarLanguage(c.Param("actorID"), c.Param("language"))
	})
}

func (h *Handlers) RemoveFamiliarLanguage(c *gin.Context) {
	h.unit(c, func(v *app.RoomView) error {
		return v.RemoveFamiliarLanguage(c.Param("actorID"), c.Param("language"))
	})
}
