package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/lecturealert/internal/middleware"
	"github.com/yigit/lecturealert/internal/pkg/websocket"
)

// EventsController streams session and dashboard events to browser tabs
type EventsController struct {
	hub    *websocket.Hub
	logger zerolog.Logger
}

// NewEventsController creates a new EventsController
func NewEventsController(hub *websocket.Hub, logger zerolog.Logger) *EventsController {
	return &EventsController{hub: hub, logger: logger}
}

// Stream handles GET /events
func (c *EventsController) Stream(ctx *gin.Context) {
	provider := middleware.ProviderFrom(ctx)
	if err := c.hub.ServeSession(ctx.Writer, ctx.Request, provider.ID()); err != nil {
		c.logger.Warn().Err(err).Str("session", provider.ID()).Msg("Failed to open event stream")
	}
}
