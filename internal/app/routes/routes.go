package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yigit/lecturealert/internal/app/controllers"
	"github.com/yigit/lecturealert/internal/app/shell"
	"github.com/yigit/lecturealert/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth      *controllers.AuthController
	Dashboard *controllers.DashboardController
	Shell     *controllers.ShellController
	Events    *controllers.EventsController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, sessions *middleware.SessionMiddleware) {
	router.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Everything below is bound to a browser session
	withSession := router.Group("")
	withSession.Use(sessions.Attach())

	v1 := withSession.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/sign-in", c.Auth.SignIn)
		auth.POST("/sign-up", c.Auth.SignUp)
		auth.POST("/sign-out", c.Auth.SignOut)
		auth.GET("/session", c.Auth.Session)
		auth.GET("/verify-email", c.Auth.VerifyEmail)
	}

	v1.GET("/shell/navigation", c.Shell.Navigation)
	v1.GET("/events", c.Events.Stream)

	authenticated := v1.Group("")
	authenticated.Use(sessions.IdentityRequired())
	{
		authenticated.GET("/dashboard", c.Dashboard.GetDashboard)
	}

	// Shell pages; anything unknown falls through to NoRoute
	withSession.GET(shell.PathRoot, c.Shell.Page)
	for _, page := range shell.Pages() {
		withSession.GET(page.Path, c.Shell.Page)
	}

	router.NoRoute(func(ctx *gin.Context) {
		ctx.Redirect(http.StatusFound, shell.PathRoot)
	})
}
