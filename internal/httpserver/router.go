package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inboxiq/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	emailHandler *handler.EmailHandler,
	notificationHandler *handler.NotificationHandler,
	userHandler *handler.UserHandler,
	gmailHandler *handler.GmailHandler,
	jwtSecret string,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready"})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	// The OAuth popup lands here without a bearer token; the state
	// parameter identifies the user.
	r.GET("/auth/gmail/callback", gmailHandler.Callback)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/emails", emailHandler.Create)
		auth.GET("/emails", emailHandler.List)
		auth.GET("/emails/:id", emailHandler.Get)

		auth.GET("/notifications", notificationHandler.List)
		auth.PUT("/notifications/read-all", notificationHandler.ReadAll)
		auth.PATCH("/notifications/read-all", notificationHandler.ReadAll)
		auth.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		auth.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		auth.DELETE("/notifications/:id", notificationHandler.Delete)

		auth.GET("/user/profile", userHandler.Profile)

		auth.GET("/auth/gmail/auth", gmailHandler.AuthURL)
		auth.POST("/auth/gmail/sync", gmailHandler.Sync)
		auth.GET("/auth/gmail/status", gmailHandler.Status)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
