package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/handlers"
	"github.com/apper-canvas/pipelineflow-firm-mega/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	ruleHandler *handlers.RuleHandler,
	assignmentHandler *handlers.AssignmentHandler,
	leadHandler *handlers.LeadHandler,
	dealHandler *handlers.DealHandler,
	contactHandler *handlers.ContactHandler,
	taskHandler *handlers.TaskHandler,
	teamHandler *handlers.TeamHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/login", authHandler.Login)

	// ---- protected
	r.Use(middleware.Auth(jwtSecret))

	// ASSIGNMENT RULES
	rules := r.Group("/rules")
	{
		rules.POST("/", ruleHandler.Create)
		rules.GET("/", ruleHandler.List)
		rules.GET("/:id", ruleHandler.GetByID)
		rules.PUT("/:id", ruleHandler.Update)
		rules.DELETE("/:id", ruleHandler.Delete)
		rules.POST("/:id/toggle", ruleHandler.Toggle)
	}

	// ASSIGNMENT ENGINE
	assignments := r.Group("/assignments")
	{
		assignments.POST("/auto", assignmentHandler.AutoAssign)
	}

	// LEADS
	leads := r.Group("/leads")
	{
		leads.POST("/", leadHandler.Create)
		leads.GET("/", leadHandler.List)
		leads.GET("/by-score", leadHandler.ListByScore)
		leads.POST("/bulk-assign", leadHandler.BulkAssign)
		leads.POST("/recalculate-scores", leadHandler.RecalculateScores)
		leads.GET("/:id", leadHandler.GetByID)
		leads.PUT("/:id", leadHandler.Update)
		leads.DELETE("/:id", leadHandler.Delete)
		leads.POST("/:id/assign", leadHandler.Assign)
	}

	// DEALS
	deals := r.Group("/deals")
	{
		deals.POST("/", dealHandler.Create)
		deals.GET("/", dealHandler.List)
		deals.POST("/bulk-stage", dealHandler.BulkUpdateStage)
		deals.POST("/bulk-assign", dealHandler.BulkAssign)
		deals.GET("/:id", dealHandler.GetByID)
		deals.PUT("/:id", dealHandler.Update)
		deals.DELETE("/:id", dealHandler.Delete)
		deals.POST("/:id/stage", dealHandler.UpdateStage)
		deals.POST("/:id/assign", dealHandler.Assign)
		deals.GET("/:id/stage-history", dealHandler.StageHistory)
	}

	// CONTACTS
	contacts := r.Group("/contacts")
	{
		contacts.POST("/", contactHandler.Create)
		contacts.GET("/", contactHandler.List)
		contacts.POST("/bulk-assign", contactHandler.BulkAssign)
		contacts.GET("/:id", contactHandler.GetByID)
		contacts.PUT("/:id", contactHandler.Update)
		contacts.DELETE("/:id", contactHandler.Delete)
		contacts.POST("/:id/assign", contactHandler.Assign)
	}

	// TASKS
	tasks := r.Group("/tasks")
	{
		tasks.POST("/", taskHandler.Create)
		tasks.GET("/", taskHandler.List)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
		tasks.POST("/:id/assign", taskHandler.Assign)
	}

	// TEAM
	team := r.Group("/team")
	{
		team.GET("/", teamHandler.List)
		team.GET("/:id", teamHandler.GetByID)
		team.GET("/:id/workload", teamHandler.Workload)
		team.PUT("/:id/availability", teamHandler.SetAvailability)
	}

	// ANALYTICS
	analytics := r.Group("/analytics")
	{
		analytics.GET("/stage-durations", analyticsHandler.StageDurations)
		analytics.GET("/pipeline", analyticsHandler.Pipeline)
		analytics.GET("/summary", analyticsHandler.Summary)
	}

	// REPORTS
	reports := r.Group("/reports")
	{
		reports.GET("/pipeline.pdf", reportHandler.PipelinePDF)
	}

	return r
}
