package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"patta-backend/internal/assignments"
	"patta-backend/internal/notify"
	"patta-backend/internal/pattas"
	"patta-backend/internal/policies"
	"patta-backend/internal/server"
	"patta-backend/internal/shared/auth"
	"patta-backend/internal/shared/config"
	"patta-backend/internal/shared/storage/db"
	"patta-backend/internal/shared/storage/object"
	localstore "patta-backend/internal/shared/storage/object/local"
	s3store "patta-backend/internal/shared/storage/object/s3"
	"patta-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Mailer *notify.Mailer

	UsersRepo       users.Repo
	PattasRepo      pattas.Repo
	AssignmentsRepo assignments.Repo
	PoliciesRepo    policies.Repo

	UsersService       *users.Service
	PattasService      *pattas.Service
	AssignmentsService *assignments.Service
	PoliciesService    *policies.Service

	UsersHandler       *users.Handler
	PattasHandler      *pattas.Handler
	AssignmentsHandler *assignments.Handler
	PoliciesHandler    *policies.Handler
}

// Build prepares all dependencies and the router. Without a database the app
// falls back to in-memory repositories in dev-like environments.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Mailer: notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SupportEmail, cfg.AppName),
	}

	buildServices(app)

	if err := app.UsersService.EnsureDefaultMinistry(ctx, cfg.SeedMinistryEmail, cfg.SeedMinistryPassword); err != nil {
		return nil, fmt.Errorf("seed ministry user: %w", err)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		UsersHandler:       app.UsersHandler,
		PattasHandler:      app.PattasHandler,
		AssignmentsHandler: app.AssignmentsHandler,
		PoliciesHandler:    app.PoliciesHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.PattasRepo = &pattas.PGRepo{DB: app.DB}
		app.AssignmentsRepo = &assignments.PGRepo{DB: app.DB}
		app.PoliciesRepo = &policies.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.PattasRepo = pattas.NewMemoryRepo()
		app.AssignmentsRepo = assignments.NewMemoryRepo()
		app.PoliciesRepo = policies.NewMemoryRepo()
	}

	assignmentSvc := assignments.NewService(
		app.AssignmentsRepo,
		app.Store,
		ngoDirectoryAdapter{repo: app.UsersRepo},
		app.Mailer,
	)
	userSvc := users.NewService(
		app.UsersRepo,
		app.Mailer,
		assignmentStatsAdapter{svc: assignmentSvc},
	)
	pattaSvc := pattas.NewService(app.PattasRepo, app.Store)
	policySvc := policies.NewService(app.PoliciesRepo, app.Store)

	app.UsersService = userSvc
	app.PattasService = pattaSvc
	app.AssignmentsService = assignmentSvc
	app.PoliciesService = policySvc
	app.UsersHandler = users.NewHandler(userSvc)
	app.PattasHandler = pattas.NewHandler(pattaSvc)
	app.AssignmentsHandler = assignments.NewHandler(assignmentSvc)
	app.PoliciesHandler = policies.NewHandler(policySvc)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

// ngoDirectoryAdapter lets the assignments service look up NGO accounts
// without importing the users package.
type ngoDirectoryAdapter struct {
	repo users.Repo
}

func (a ngoDirectoryAdapter) NGOByID(ctx context.Context, id string) (assignments.NGOInfo, error) {
	user, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return assignments.NGOInfo{}, assignments.ErrNGONotFound
		}
		return assignments.NGOInfo{}, err
	}
	if user.Role != auth.RoleNGO {
		return assignments.NGOInfo{}, assignments.ErrNGONotFound
	}
	return assignments.NGOInfo{
		ID:           user.ID,
		Email:        user.Email,
		Organization: user.Profile.Organization,
		Approved:     user.IsApproved,
	}, nil
}

// assignmentStatsAdapter feeds the NGO dashboard from the assignments
// service.
type assignmentStatsAdapter struct {
	svc *assignments.Service
}

func (a assignmentStatsAdapter) StatsForAssignee(ctx context.Context, ngoID string) (users.AssigneeStats, error) {
	stats, err := a.svc.StatsForAssignee(ctx, ngoID)
	if err != nil {
		return users.AssigneeStats{}, err
	}
	return users.AssigneeStats{
		Total:      stats.Total,
		Active:     stats.Active,
		InProgress: stats.InProgress,
		Completed:  stats.Completed,
		Overdue:    stats.Overdue,
	}, nil
}

func (a assignmentStatsAdapter) RecentForAssignee(ctx context.Context, ngoID string, limit int) ([]users.AssignmentSummary, error) {
	items, err := a.svc.RecentForAssignee(ctx, ngoID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]users.AssignmentSummary, 0, len(items))
	for _, item := range items {
		out = append(out, users.AssignmentSummary{
			ID:       item.ID,
			Title:    item.Title,
			Status:   string(item.Status),
			Priority: string(item.Priority),
			Deadline: item.Deadline,
		})
	}
	return out, nil
}
