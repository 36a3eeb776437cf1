package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := RequireAuth(h.Store, h.Cfg.JWTSecret)
	gate := AccessTokenGate(h.Cfg.AccessToken)

	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", gate, RateLimit(h.Redis, h.Cfg.RateLimitPerMin, "signup"), h.SignUp)
		auth.POST("/signin", RateLimit(h.Redis, h.Cfg.RateLimitPerMin, "signin"), h.SignIn)
		auth.GET("/check-session", requireAuth, h.CheckSession)
		auth.GET("/logout", h.Logout)
		auth.GET("/login/success", requireAuth, h.LoginSuccess)
		auth.GET("/login/failed", h.LoginFailed)
		auth.GET("/google", h.GoogleRedirect)
		auth.GET("/google/callback", h.GoogleCallback)
		auth.POST("/add-invite", gate, h.AddInvite)
	}

	task := r.Group("/api/task", requireAuth)
	{
		task.POST("", h.CreateTask)
		task.GET("", h.ListTasks)
		task.GET("/:id", h.GetTask)
		task.PUT("/:id", h.UpdateTask)
		task.DELETE("/:id", h.DeleteTask)
	}

	return r
}
