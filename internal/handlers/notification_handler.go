package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/broker"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/sirupsen/logrus"
)

const streamKeepAlive = 25 * time.Second

// Subscriber opens a live feed of one user's notifications.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (*broker.Subscription, error)
}

type NotificationHandler struct {
	Service    *services.NotificationService
	Subscriber Subscriber
}

func NewNotificationHandler(s *services.NotificationService, sub Subscriber) *NotificationHandler {
	return &NotificationHandler{Service: s, Subscriber: sub}
}

// List is the GET /notifications endpoint
func (h *NotificationHandler) List(c *gin.Context) {
	var q dtos.NotificationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}

	page, err := h.Service.List(c.Request.Context(), actorFrom(c).ID, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// MarkRead is the PATCH /notifications/:id/read endpoint
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, services.ErrNotFound)
		return
	}
	if err := h.Service.MarkRead(c.Request.Context(), actorFrom(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllRead is the POST /notifications/read-all endpoint
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.Service.MarkAllRead(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": n})
}

// Stream is the GET /notifications/stream endpoint. Each pushed notification
// is sent as an SSE "notification" event; clients refresh from List on it.
func (h *NotificationHandler) Stream(c *gin.Context) {
	if h.Subscriber == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live notifications are disabled"})
		return
	}
	actor := actorFrom(c)
	ctx := c.Request.Context()

	sub, err := h.Subscriber.Subscribe(ctx, actor.ID.String())
	if err != nil {
		respondError(c, &services.StorageError{Op: "subscribe notifications", Err: err})
		return
	}
	defer func() {
		if err := sub.Close(); err != nil {
			logrus.WithError(err).Debug("closing notification subscription")
		}
	}()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case n, ok := <-sub.Messages:
			if !ok {
				return false
			}
			c.SSEvent("notification", n)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-ctx.Done():
			return false
		}
	})
}
