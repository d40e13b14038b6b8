package main

import (
	"log"

	"github.com/benbjohnson/clock"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/deyby01/nexus-pm-v2/internal/authz"
	"github.com/deyby01/nexus-pm-v2/internal/config"
	"github.com/deyby01/nexus-pm-v2/internal/constants"
	"github.com/deyby01/nexus-pm-v2/internal/database"
	"github.com/deyby01/nexus-pm-v2/internal/handlers"
	"github.com/deyby01/nexus-pm-v2/internal/logging"
	"github.com/deyby01/nexus-pm-v2/internal/middleware"
	"github.com/deyby01/nexus-pm-v2/internal/repository"
	"github.com/deyby01/nexus-pm-v2/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	db := database.GetDB()
	clk := clock.New()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	planRepo := repository.NewPlanRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Services
	limitsService := services.NewLimitsService(orgRepo, workspaceRepo, clk, logger)
	authService := services.NewAuthService(userRepo, clk, logger)
	orgService := services.NewOrganizationService(db, orgRepo, planRepo, userRepo, limitsService, clk, logger)
	workspaceService := services.NewWorkspaceService(db, workspaceRepo, orgRepo, limitsService, clk, logger)
	projectService := services.NewProjectService(db, projectRepo, workspaceRepo, limitsService, clk, logger)
	taskService := services.NewTaskService(db, taskRepo, projectRepo, clk, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService, limitsService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.PATCH("/me", middleware.RequireAuth(), authHandler.UpdateProfile)
		}

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth())
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)

			scoped := orgs.Group("/:orgId", middleware.RequireOrganizationAccess())
			{
				scoped.GET("", orgHandler.GetOrganization)
				scoped.PUT("", middleware.RequireOrganizationAdmin(), orgHandler.UpdateOrganization)
				scoped.DELETE("", middleware.RequireOrganizationOwner(), orgHandler.DeleteOrganization)

				scoped.GET("/members", orgHandler.ListMembers)
				scoped.POST("/members", middleware.RequireOrganizationAdmin(), orgHandler.AddMember)
				scoped.DELETE("/members/:userId", middleware.RequireOrganizationAdmin(), orgHandler.RemoveMember)

				scoped.GET("/subscription", orgHandler.GetSubscription)
				scoped.POST("/subscription/cancel", middleware.RequireOrganizationOwner(), orgHandler.CancelSubscription)
				scoped.GET("/usage-limits", orgHandler.GetUsageLimits)

				scoped.GET("/workspaces", workspaceHandler.ListWorkspaces)
				scoped.POST("/workspaces", workspaceHandler.CreateWorkspace)
			}
		}

		// Workspace routes (protected)
		workspaces := api.Group("/workspaces")
		workspaces.Use(middleware.RequireAuth())
		{
			scoped := workspaces.Group("/:workspaceId", middleware.RequireWorkspaceAccess())
			{
				scoped.GET("", workspaceHandler.GetWorkspace)
				scoped.PUT("", middleware.RequireWorkspaceRole(authz.PermManageWorkspaceSettings), workspaceHandler.UpdateWorkspace)
				scoped.DELETE("", middleware.RequireWorkspaceRole(authz.PermManageWorkspaceSettings), workspaceHandler.DeleteWorkspace)

				scoped.GET("/members", workspaceHandler.ListMembers)
				scoped.POST("/members", middleware.RequireWorkspaceRole(authz.PermManageWorkspaceMembers), workspaceHandler.AddMember)
				scoped.DELETE("/members/:userId", middleware.RequireWorkspaceRole(authz.PermManageWorkspaceMembers), workspaceHandler.RemoveMember)

				scoped.GET("/projects", projectHandler.ListProjects)
				scoped.POST("/projects", projectHandler.CreateProject)
			}
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			scoped := projects.Group("/:projectId", middleware.RequireProjectAccess())
			{
				scoped.GET("", projectHandler.GetProject)
				scoped.PUT("", projectHandler.UpdateProject)
				scoped.DELETE("", middleware.RequireWorkspaceRole(authz.PermDeleteProjects), projectHandler.DeleteProject)

				scoped.GET("/members", projectHandler.ListMembers)
				scoped.POST("/members", projectHandler.AddMember)
				scoped.GET("/progress", projectHandler.GetProgress)

				scoped.GET("/tasks", taskHandler.ListTasks)
				scoped.POST("/tasks", taskHandler.CreateTask)
			}
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.POST("/dependencies", taskHandler.CreateDependency)

			scoped := tasks.Group("/:taskId", middleware.RequireTaskAccess())
			{
				scoped.GET("", taskHandler.GetTask)
				scoped.PATCH("", taskHandler.UpdateTask)
				scoped.DELETE("", taskHandler.DeleteTask)
				scoped.POST("/status", taskHandler.ChangeStatus)
				scoped.GET("/blocked", taskHandler.GetBlockedState)
			}
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
