package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sirupsen/logrus"
)

const actorKey = "actor"

// ActorResolver maps a bearer token to the calling actor.
type ActorResolver interface {
	Resolve(ctx context.Context, token string) (models.Actor, error)
}

// RequireActor rejects requests without a resolvable bearer token and stores
// the actor on the gin context for the handlers behind it.
func RequireActor(resolver ActorResolver) gin.HandlerFunc {
	return requireActor(resolver, headerToken)
}

// RequireStreamActor is RequireActor for the SSE endpoint, which also takes
// the token from ?access_token= because EventSource cannot set headers.
func RequireStreamActor(resolver ActorResolver) gin.HandlerFunc {
	return requireActor(resolver, streamToken)
}

func requireActor(resolver ActorResolver, token func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := resolver.Resolve(c.Request.Context(), token(c))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func headerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func streamToken(c *gin.Context) string {
	if t := headerToken(c); t != "" {
		return t
	}
	return c.Query("access_token")
}

func actorFrom(c *gin.Context) models.Actor {
	return c.MustGet(actorKey).(models.Actor)
}

// AccessLog writes one logrus entry per request. Only the path is logged;
// query strings can carry credentials.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			entry = entry.WithField("errors", errs)
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
