package events

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/handler"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/middleware"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/errors"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/messaging"
)

const heartbeatInterval = 25 * time.Second

type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// Handler streams change notifications to viewers as Server-Sent Events.
type Handler struct {
	hub       Subscriber
	channel   string
	heartbeat time.Duration
	logger    zerolog.Logger
}

func NewHandler(hub Subscriber, channel string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:       hub,
		channel:   channel,
		heartbeat: heartbeatInterval,
		logger:    logger.With().Str("component", "events").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.GET("/events", auth.Authenticate(), auth.RequireRole(model.RoleStaff, model.RoleAdmin), h.Stream)
}

func (h *Handler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	msgs, err := h.hub.Subscribe(ctx, h.channel)
	if err != nil {
		handler.Fail(c, errors.StoreUnavailable(err))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("connected", gin.H{"channel": h.channel})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Unix())
			return true
		case data, ok := <-msgs:
			if !ok {
				// Dropped by the hub for falling behind; the client reconnects.
				return false
			}
			msg, err := messaging.Decode(data)
			if err != nil {
				h.logger.Warn().Err(err).Msg("skipping undecodable event")
				return true
			}
			c.SSEvent(msg.Type, msg.Payload)
			return true
		}
	})
}
