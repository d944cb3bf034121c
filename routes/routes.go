package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/slidewise/slidewise-server/controllers"
	"github.com/slidewise/slidewise-server/middleware"
)

// Deps carries everything the route table needs.
type Deps struct {
	Auth          middleware.Authenticator
	AuthLimiter   *middleware.IPRateLimiter
	AILimiter     *middleware.IPRateLimiter
	UploadDir     string
	Health        *controllers.HealthController
	Users         *controllers.UserController
	Accounts      *controllers.AuthController
	Workspaces    *controllers.WorkspaceController
	Invitations   *controllers.InvitationController
	Presentations *controllers.PresentationController
}

func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/", d.Health.Root)
	r.GET("/health", d.Health.HealthCheck)
	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	authRequired := middleware.AuthToken(d.Auth)
	aiLimit := middleware.RateLimitByIP(d.AILimiter)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimitByIP(d.AuthLimiter))
		{
			auth.POST("/register", d.Accounts.Register)
			auth.POST("/login", d.Accounts.Login)
		}

		user := api.Group("/user", authRequired)
		{
			user.GET("/me", d.Users.Me)
			user.PUT("/me", d.Users.UpdateMe)
			user.POST("/change-password", d.Users.ChangePassword)
		}

		workspaces := api.Group("/workspaces", authRequired)
		{
			workspaces.GET("/:id", d.Workspaces.Get)
			workspaces.PUT("/:id", d.Workspaces.Rename)
			workspaces.GET("/:id/invitations", d.Workspaces.ListInvitations)
		}

		invitations := api.Group("/invitations", authRequired)
		{
			invitations.POST("", d.Invitations.Create)
			invitations.GET("", d.Invitations.ListMine)
			invitations.POST("/:id/accept", d.Invitations.Accept)
		}

		presentations := api.Group("/presentations", authRequired)
		{
			presentations.GET("", d.Presentations.List)
			presentations.POST("", d.Presentations.Create)
			presentations.POST("/generate-storyline", aiLimit, d.Presentations.GenerateStoryline)
			presentations.POST("/generate", aiLimit, d.Presentations.Generate)
			presentations.GET("/:id", d.Presentations.Get)
			presentations.PUT("/:id", d.Presentations.Update)
			presentations.DELETE("/:id", d.Presentations.Delete)
			presentations.POST("/:id/generate-slide", aiLimit, d.Presentations.GenerateSlide)
		}

		images := api.Group("/images", authRequired)
		{
			images.POST("/generate", aiLimit, d.Presentations.GenerateImage)
		}
	}
}
