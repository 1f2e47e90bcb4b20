package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Router struct {
	Identity       ActorResolver
	Applications   *ApplicationHandler
	Jobs           *JobHandler
	Admin          *AdminHandler
	Notifications  *NotificationHandler
	AllowedOrigins []string
}

// Engine builds the gin engine with CORS and every route mounted.
func (rt *Router) Engine() *gin.Engine {
	r := gin.New()
	r.Use(AccessLog(), gin.Recovery())

	config := cors.DefaultConfig()
	if len(rt.AllowedOrigins) == 0 {
		config.AllowAllOrigins = true // For development only
	} else {
		config.AllowOrigins = rt.AllowedOrigins
	}
	config.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)
		api.GET("/notifications/stream", RequireStreamActor(rt.Identity), rt.Notifications.Stream)

		authed := api.Group("", RequireActor(rt.Identity))

		// Application Routes
		authed.POST("/applications", rt.Applications.CreateApplication)
		authed.GET("/applications", rt.Applications.ListApplications)
		authed.PATCH("/applications/:id/status", rt.Applications.UpdateStatus)

		// Job Routes
		authed.GET("/jobs", rt.Jobs.ListJobs)
		authed.POST("/jobs", rt.Jobs.CreateJob)
		authed.GET("/jobs/:id", rt.Jobs.GetJob)
		authed.PATCH("/jobs/:id", rt.Jobs.UpdateJob)

		// Notification Routes
		authed.GET("/notifications", rt.Notifications.List)
		authed.PATCH("/notifications/:id/read", rt.Notifications.MarkRead)
		authed.POST("/notifications/read-all", rt.Notifications.MarkAllRead)

		// Admin Routes
		authed.PATCH("/admin/users/:id/role", rt.Admin.UpdateRole)
	}
	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
