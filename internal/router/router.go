package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/stepflow-api/internal/constants"
	"github.com/yukikurage/stepflow-api/internal/handlers"
	applog "github.com/yukikurage/stepflow-api/internal/logger"
	"github.com/yukikurage/stepflow-api/internal/metrics"
	"github.com/yukikurage/stepflow-api/internal/middleware"
	"github.com/yukikurage/stepflow-api/internal/services"
)

// Deps carries everything the HTTP layer needs
type Deps struct {
	Log           *applog.Logger
	Metrics       *metrics.Metrics
	Sessions      sessions.Store
	Tokens        middleware.TokenVerifier
	InviteLimiter *middleware.IPRateLimiter

	Projects    *services.ProjectService
	Steps       *services.StepService
	Subtasks    *services.SubtaskService
	Invitations *services.InvitationService
	Notes       *services.NoteService
	Users       *services.UserService
}

// New builds the gin engine with middleware and every API route
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(d.Metrics.Middleware())
	r.Use(sessions.Sessions(constants.SessionCookieName, d.Sessions))

	sessionHandler := handlers.NewSessionHandler(d.Users)
	projectHandler := handlers.NewProjectHandler(d.Projects, d.Metrics)
	stepHandler := handlers.NewStepHandler(d.Steps, d.Metrics)
	subtaskHandler := handlers.NewSubtaskHandler(d.Subtasks)
	invitationHandler := handlers.NewInvitationHandler(d.Invitations, d.Metrics)
	noteHandler := handlers.NewNoteHandler(d.Notes)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Stepflow API is running",
		})
	})
	r.GET("/metrics", d.Metrics.Handler())

	requireAuth := middleware.RequireAuth(d.Tokens)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", requireAuth, sessionHandler.Login)
			auth.POST("/logout", sessionHandler.Logout)
			auth.GET("/me", requireAuth, sessionHandler.GetCurrentUser)
		}

		// Public lookup of an invitation link
		api.GET("/invitations/:token",
			middleware.RateLimit(d.InviteLimiter, d.Log),
			middleware.OptionalAuth(d.Tokens),
			invitationHandler.GetInvitation,
		)

		invitations := api.Group("/invitations")
		invitations.Use(requireAuth)
		{
			invitations.POST("/:token/accept", invitationHandler.AcceptInvitation)
			invitations.POST("/:token/decline", invitationHandler.DeclineInvitation)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)

			projects.GET("/:id/members", projectHandler.ListMembers)
			projects.DELETE("/:id/members/:user_id", projectHandler.RemoveMember)

			projects.GET("/:id/steps", stepHandler.ListSteps)
			projects.POST("/:id/steps", stepHandler.CreateStep)
			projects.PUT("/:id/steps/reorder", stepHandler.ReorderSteps)
			projects.POST("/:id/steps/suggest", stepHandler.SuggestSteps)

			projects.GET("/:id/invitations", invitationHandler.ListInvitations)
			projects.POST("/:id/invitations", invitationHandler.CreateInvitation)

			projects.GET("/:id/notes", noteHandler.ListNotes)
			projects.POST("/:id/notes", noteHandler.CreateNote)
		}

		steps := api.Group("/steps")
		steps.Use(requireAuth)
		{
			steps.PATCH("/:id", stepHandler.UpdateStep)
			steps.DELETE("/:id", stepHandler.DeleteStep)
			steps.POST("/:id/toggle", stepHandler.ToggleStep)
			steps.POST("/:id/subtasks", subtaskHandler.CreateSubtask)
		}

		subtasks := api.Group("/subtasks")
		subtasks.Use(requireAuth)
		{
			subtasks.GET("", subtaskHandler.ListSubtasks)
			subtasks.PATCH("/:id", subtaskHandler.UpdateSubtask)
			subtasks.DELETE("/:id", subtaskHandler.DeleteSubtask)
		}

		notes := api.Group("/notes")
		notes.Use(requireAuth)
		{
			notes.PATCH("/:id", noteHandler.UpdateNote)
			notes.DELETE("/:id", noteHandler.DeleteNote)
		}
	}

	return r
}
