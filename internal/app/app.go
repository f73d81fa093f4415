package app

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/config"
	"github.com/apper-canvas/pipelineflow-firm-mega/internal/handlers"
	"github.com/apper-canvas/pipelineflow-firm-mega/internal/pdf"
	"github.com/apper-canvas/pipelineflow-firm-mega/internal/repositories"
	"github.com/apper-canvas/pipelineflow-firm-mega/internal/routes"
	"github.com/apper-canvas/pipelineflow-firm-mega/internal/services"
)

func Run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	// === Repos ===
	ruleRepo := repositories.NewRuleRepository(db)
	leadRepo := repositories.NewLeadRepository(db)
	dealRepo := repositories.NewDealRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	teamRepo := repositories.NewTeamMemberRepository(db)

	// === Services ===
	teamService := services.NewTeamService(teamRepo, contactRepo, leadRepo, dealRepo, taskRepo, logger)
	assignmentService := services.NewAssignmentService(ruleRepo, teamService, logger)

	ruleService := services.NewRuleService(ruleRepo, logger)
	leadService := services.NewLeadService(leadRepo, assignmentService, logger)
	dealService := services.NewDealService(dealRepo, assignmentService, logger)
	contactService := services.NewContactService(contactRepo, assignmentService, logger)
	taskService := services.NewTaskService(taskRepo, assignmentService, logger)
	analyticsService := services.NewAnalyticsService(dealRepo, logger)

	jwtSecret := []byte(cfg.Auth.JWTSecret)
	authService := services.NewAuthService(teamRepo, jwtSecret, time.Duration(cfg.Auth.TokenTTL)*time.Minute)

	reportGen := pdf.NewReportGenerator()

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService)
	ruleHandler := handlers.NewRuleHandler(ruleService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	leadHandler := handlers.NewLeadHandler(leadService)
	dealHandler := handlers.NewDealHandler(dealService)
	contactHandler := handlers.NewContactHandler(contactService)
	taskHandler := handlers.NewTaskHandler(taskService)
	teamHandler := handlers.NewTeamHandler(teamService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	reportHandler := handlers.NewReportHandler(analyticsService, reportGen)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	routes.SetupRoutes(
		router,
		jwtSecret,
		authHandler,
		ruleHandler,
		assignmentHandler,
		leadHandler,
		dealHandler,
		contactHandler,
		taskHandler,
		teamHandler,
		analyticsHandler,
		reportHandler,
	)

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", listenAddr))
	return router.Run(listenAddr)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
