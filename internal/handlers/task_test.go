package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deyby01/nexus-pm-v2/internal/constants"
	"github.com/deyby01/nexus-pm-v2/internal/database"
	"github.com/deyby01/nexus-pm-v2/internal/dto"
	"github.com/deyby01/nexus-pm-v2/internal/middleware"
	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/repository"
	"github.com/deyby01/nexus-pm-v2/internal/services"
)

type taskTestEnv struct {
	db          *gorm.DB
	clock       *clock.Mock
	taskRepo    repository.TaskRepository
	authService *services.AuthService
	orgService  *services.OrganizationService
	wsService   *services.WorkspaceService
	projService *services.ProjectService
	taskService *services.TaskService
	handler     *TaskHandler
}

func setupTaskTestEnv(t *testing.T) *taskTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.SubscriptionPlan{},
		&models.Organization{},
		&models.Subscription{},
		&models.OrganizationMembership{},
		&models.Workspace{},
		&models.WorkspaceMembership{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Task{},
		&models.TaskDependency{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	mockClock := clock.NewMock()
	mockClock.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	userRepo := repository.NewUserRepository(db)
	planRepo := repository.NewPlanRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	limits := services.NewLimitsService(orgRepo, workspaceRepo, mockClock, nil)
	authService := services.NewAuthService(userRepo, mockClock, nil)
	orgService := services.NewOrganizationService(db, orgRepo, planRepo, userRepo, limits, mockClock, nil)
	wsService := services.NewWorkspaceService(db, workspaceRepo, orgRepo, limits, mockClock, nil)
	projService := services.NewProjectService(db, projectRepo, workspaceRepo, limits, mockClock, nil)
	taskService := services.NewTaskService(db, taskRepo, projectRepo, mockClock, nil)

	return &taskTestEnv{
		db:          db,
		clock:       mockClock,
		taskRepo:    taskRepo,
		authService: authService,
		orgService:  orgService,
		wsService:   wsService,
		projService: projService,
		taskService: taskService,
		handler:     NewTaskHandler(taskService),
	}
}

// router wires the task routes behind a stub auth middleware that injects
// the given caller, so tests exercise the real task access middleware
// without a session round trip.
func (env *taskTestEnv) router(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	})

	tasks := r.Group("/api/tasks")
	tasks.POST("/dependencies", env.handler.CreateDependency)

	scoped := tasks.Group("/:taskId", middleware.RequireTaskAccess())
	scoped.GET("", env.handler.GetTask)
	scoped.POST("/status", env.handler.ChangeStatus)
	scoped.GET("/blocked", env.handler.GetBlockedState)

	return r
}

func (env *taskTestEnv) createTestUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := env.authService.Signup(services.SignupInput{
		Email:     email,
		Password:  "supersecret",
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return user
}

// seedTask builds the full hierarchy for an owner and returns a task inside it.
func (env *taskTestEnv) seedTask(t *testing.T, owner *models.User, orgName, title string) *models.Task {
	t.Helper()

	org, err := env.orgService.CreateOrganization(services.CreateOrganizationInput{
		Name:    orgName,
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	workspace, err := env.wsService.CreateWorkspace(services.CreateWorkspaceInput{
		OrganizationID: org.ID,
		CreatorID:      owner.ID,
		Name:           orgName + " Workspace",
		WorkspaceType:  models.WorkspaceDevelopment,
		IsPrivate:      true,
	})
	require.NoError(t, err)

	project, err := env.projService.CreateProject(services.CreateProjectInput{
		WorkspaceID: workspace.ID,
		CreatorID:   owner.ID,
		Name:        orgName + " Project",
	})
	require.NoError(t, err)

	task, err := env.taskService.CreateTask(services.CreateTaskInput{
		ProjectID: project.ID,
		CreatorID: owner.ID,
		Title:     title,
	})
	require.NoError(t, err)
	return task
}

func TestTaskHandler_AccessHidesForeignTasks(t *testing.T) {
	env := setupTaskTestEnv(t)
	owner := env.createTestUser(t, "owner@example.com")
	outsider := env.createTestUser(t, "outsider@example.com")

	task := env.seedTask(t, owner, "Acme", "Ship release")
	taskPath := "/api/tasks/" + task.ID.String()

	// Non-members get 404, the same as a nonexistent task.
	w := doJSON(t, env.router(outsider.ID), http.MethodGet, taskPath, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, env.router(outsider.ID), http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// Writes from non-members are rejected before the handler runs.
	w = doJSON(t, env.router(outsider.ID), http.MethodPost, taskPath+"/status", map[string]string{
		"status": string(models.TaskCompleted),
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	reloaded, err := env.taskRepo.FindByID(task.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskTodo, reloaded.Status)

	w = doJSON(t, env.router(owner.ID), http.MethodGet, taskPath, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, task.ID, response.ID)

	w = doJSON(t, env.router(outsider.ID), http.MethodGet, taskPath+"/blocked", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_CreateDependency_HidesForeignEndpoints(t *testing.T) {
	env := setupTaskTestEnv(t)
	owner := env.createTestUser(t, "owner@example.com")
	outsider := env.createTestUser(t, "outsider@example.com")

	blocker := env.seedTask(t, owner, "Acme", "Design schema")
	blocked, err := env.taskService.CreateTask(services.CreateTaskInput{
		ProjectID: blocker.ProjectID,
		CreatorID: owner.ID,
		Title:     "Write queries",
	})
	require.NoError(t, err)

	foreign := env.seedTask(t, outsider, "Globex", "Secret work")

	// An endpoint the caller cannot reach reads as nonexistent.
	w := doJSON(t, env.router(owner.ID), http.MethodPost, "/api/tasks/dependencies", map[string]string{
		"from_task_id": blocker.ID.String(),
		"to_task_id":   foreign.ID.String(),
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, env.router(owner.ID), http.MethodPost, "/api/tasks/dependencies", map[string]string{
		"from_task_id": foreign.ID.String(),
		"to_task_id":   blocked.ID.String(),
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.TaskDependency{}).Count(&count).Error)
	require.EqualValues(t, 0, count)

	w = doJSON(t, env.router(owner.ID), http.MethodPost, "/api/tasks/dependencies", map[string]string{
		"from_task_id": blocker.ID.String(),
		"to_task_id":   blocked.ID.String(),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.TaskDependencyDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, blocker.ID, response.FromTaskID)
	require.Equal(t, blocked.ID, response.ToTaskID)
}
