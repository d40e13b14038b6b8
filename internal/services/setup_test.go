package services

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/repository"
)

// testEnv wires every service against one in-memory database so lifecycle
// rules can be observed end to end.
type testEnv struct {
	db    *gorm.DB
	clock *clock.Mock

	userRepo      repository.UserRepository
	planRepo      repository.PlanRepository
	orgRepo       repository.OrganizationRepository
	workspaceRepo repository.WorkspaceRepository
	projectRepo   repository.ProjectRepository
	taskRepo      repository.TaskRepository

	limits     *LimitsService
	auth       *AuthService
	orgs       *OrganizationService
	workspaces *WorkspaceService
	projects   *ProjectService
	tasks      *TaskService
}

func setupTestEnv(t *testing.T) *testEnv {
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	mockClock := clock.NewMock()
	mockClock.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	env := &testEnv{
		db:            db,
		clock:         mockClock,
		userRepo:      repository.NewUserRepository(db),
		planRepo:      repository.NewPlanRepository(db),
		orgRepo:       repository.NewOrganizationRepository(db),
		workspaceRepo: repository.NewWorkspaceRepository(db),
		projectRepo:   repository.NewProjectRepository(db),
		taskRepo:      repository.NewTaskRepository(db),
	}

	env.limits = NewLimitsService(env.orgRepo, env.workspaceRepo, mockClock, nil)
	env.auth = NewAuthService(env.userRepo, mockClock, nil)
	env.orgs = NewOrganizationService(db, env.orgRepo, env.planRepo, env.userRepo, env.limits, mockClock, nil)
	env.workspaces = NewWorkspaceService(db, env.workspaceRepo, env.orgRepo, env.limits, mockClock, nil)
	env.projects = NewProjectService(db, env.projectRepo, env.workspaceRepo, env.limits, mockClock, nil)
	env.tasks = NewTaskService(db, env.taskRepo, env.projectRepo, mockClock, nil)

	return env
}

// seedFreePlan inserts the FREE catalog plan used by the trial cascade.
func (env *testEnv) seedFreePlan(t *testing.T) *models.SubscriptionPlan {
	t.Helper()
	return env.seedPlan(t, models.PlanFree, 1, 3, 1)
}

func (env *testEnv) seedPlan(t *testing.T, planType models.PlanType, maxWorkspaces, maxUsers, maxProjects int) *models.SubscriptionPlan {
	t.Helper()
	plan := &models.SubscriptionPlan{
		Name:                    string(planType),
		PlanType:                planType,
		MaxWorkspaces:           maxWorkspaces,
		MaxUsers:                maxUsers,
		MaxStorageGB:            5,
		MaxProjectsPerWorkspace: maxProjects,
		Features:                models.PlanFeatures{"api_access": true},
		IsActive:                true,
	}
	require.NoError(t, env.planRepo.Create(plan))
	return plan
}

func (env *testEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := env.auth.Signup(SignupInput{
		Email:    email,
		Password: "supersecret",
		Timezone: "Europe/Berlin",
		Language: "de",
	})
	require.NoError(t, err)
	return user
}

func (env *testEnv) createOrganization(t *testing.T, owner *models.User, name string) *models.Organization {
	t.Helper()
	org, err := env.orgs.CreateOrganization(CreateOrganizationInput{
		Name:    name,
		OwnerID: owner.ID,
	})
	require.NoError(t, err)
	return org
}

func (env *testEnv) createWorkspace(t *testing.T, org *models.Organization, creator *models.User, name string, wsType models.WorkspaceType) *models.Workspace {
	t.Helper()
	workspace, err := env.workspaces.CreateWorkspace(CreateWorkspaceInput{
		OrganizationID: org.ID,
		CreatorID:      creator.ID,
		Name:           name,
		WorkspaceType:  wsType,
	})
	require.NoError(t, err)
	return workspace
}

func (env *testEnv) createProject(t *testing.T, workspace *models.Workspace, creator *models.User, name string) *models.Project {
	t.Helper()
	project, err := env.projects.CreateProject(CreateProjectInput{
		WorkspaceID: workspace.ID,
		CreatorID:   creator.ID,
		Name:        name,
	})
	require.NoError(t, err)
	return project
}

func (env *testEnv) createTask(t *testing.T, project *models.Project, creator *models.User, title string) *models.Task {
	t.Helper()
	task, err := env.tasks.CreateTask(CreateTaskInput{
		ProjectID: project.ID,
		CreatorID: creator.ID,
		Title:     title,
	})
	require.NoError(t, err)
	return task
}

func (env *testEnv) reloadProject(t *testing.T, id uuid.UUID) *models.Project {
	t.Helper()
	project, err := env.projectRepo.FindByID(id)
	require.NoError(t, err)
	return project
}

func (env *testEnv) reloadTask(t *testing.T, id uuid.UUID) *models.Task {
	t.Helper()
	task, err := env.taskRepo.FindByID(id)
	require.NoError(t, err)
	return task
}
