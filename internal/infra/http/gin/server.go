package ginserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"memberhub/internal/infra/config"
	"memberhub/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Profile        ProfileHTTP
	Inbox          InboxHTTP
	Updates        UpdatesHTTP
	Moderation     ModerationHTTP
	Courses        CourseHTTP
	Groups         GroupHTTP
	Plans          PlanHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Profile != nil {
		api.GET("/members/:id", h.Profile.Get)
		api.PATCH("/me/profile", h.Profile.UpdateMe)
		api.PUT("/me/avatar", h.Profile.UploadAvatar)
	}
	if h.Inbox != nil {
		api.POST("/inbox/conversations", h.Inbox.Start)
		api.GET("/inbox/conversations", h.Inbox.ListConversations)
		api.GET("/inbox/conversations/:id/messages", h.Inbox.ListMessages)
		api.POST("/inbox/conversations/:id/messages", h.Inbox.SendMessage)
		api.POST("/inbox/conversations/:id/read", h.Inbox.MarkRead)
		api.DELETE("/inbox/conversations/:id", h.Inbox.Delete)
	}
	if h.Updates != nil {
		api.GET("/updates", h.Updates.List)
		api.POST("/updates/:id/read", h.Updates.MarkRead)
		api.POST("/updates/read-all", h.Updates.MarkAllRead)
	}
	if h.Moderation != nil {
		api.POST("/comments", h.Moderation.Submit)
	}
	if h.Courses != nil {
		api.GET("/courses", h.Courses.List)
		api.GET("/courses/:id", h.Courses.Get)
	}
	if h.Groups != nil {
		api.GET("/groups", h.Groups.List)
		api.GET("/groups/:id", h.Groups.Get)
		api.POST("/groups/:id/join", h.Groups.Join)
		api.POST("/groups/:id/leave", h.Groups.Leave)
	}
	if h.Plans != nil {
		api.GET("/sales-page", h.Plans.SalesPage)
		api.GET("/plans", h.Plans.List)
	}

	admin := api.Group("/admin")
	if h.Admin != nil {
		admin.GET("/members", h.Admin.ListMembers)
		admin.POST("/members/:id/block", h.Admin.BlockMember)
		admin.POST("/members/:id/unblock", h.Admin.UnblockMember)
	}
	if h.Updates != nil {
		admin.POST("/updates", h.Updates.Publish)
		admin.DELETE("/updates/:id", h.Updates.Delete)
	}
	if h.Moderation != nil {
		admin.GET("/comments", h.Moderation.Queue)
		admin.POST("/comments/:id/approve", h.Moderation.Approve)
		admin.POST("/comments/:id/reject", h.Moderation.Reject)
		admin.DELETE("/comments/:id", h.Moderation.Delete)
	}
	if h.Courses != nil {
		admin.POST("/courses", h.Courses.Create)
		admin.PUT("/courses/:id", h.Courses.Update)
		admin.POST("/courses/:id/publish", h.Courses.Publish)
		admin.POST("/courses/:id/archive", h.Courses.Archive)
	}
	if h.Groups != nil {
		admin.POST("/groups", h.Groups.Create)
		admin.PUT("/groups/:id", h.Groups.Update)
		admin.DELETE("/groups/:id", h.Groups.Delete)
		admin.POST("/groups/:id/members", h.Groups.AddMember)
		admin.DELETE("/groups/:id/members/:member_id", h.Groups.RemoveMember)
	}
	if h.Plans != nil {
		admin.POST("/plans", h.Plans.Create)
		admin.PUT("/plans/:id", h.Plans.Update)
		admin.DELETE("/plans/:id", h.Plans.Delete)
		admin.PUT("/sales-page", h.Plans.UpdateSalesPage)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

func parsePositiveIntStrict(raw string, def int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return def
	}
	return value
}

func parseNonNegativeInt(raw string, def int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return def
	}
	return value
}
