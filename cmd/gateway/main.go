package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/codetrail/codetrail-lms/internal/api/http"
	"github.com/codetrail/codetrail-lms/internal/assessment"
	authmw "github.com/codetrail/codetrail-lms/internal/auth/middleware"
	"github.com/codetrail/codetrail-lms/internal/config"
	"github.com/codetrail/codetrail-lms/internal/content"
	"github.com/codetrail/codetrail-lms/internal/db"
	"github.com/codetrail/codetrail-lms/internal/progress"
	"github.com/codetrail/codetrail-lms/internal/rbac"
	"github.com/codetrail/codetrail-lms/internal/storage"
	syncx "github.com/codetrail/codetrail-lms/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()

	logger, err := zap.NewProduction()
	if cfg.Mode == config.ModeOffline {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}

	// --- Catalog + assessment rules (shared YAML file) ---
	courses, err := content.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("catalog load failed", zap.String("path", cfg.CatalogPath), zap.Error(err))
	}
	catalog := content.NewInMemoryRepo(courses)
	rules, err := assessment.LoadRules(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("rules load failed", zap.Error(err))
	}

	// --- Engine ---
	store := progress.NewSQLStore(dbh, cfg.DBDriver)
	events := syncx.NewEventRepo(dbh, cfg.SiteID)
	eng := progress.NewEngine(catalog, store, rules,
		progress.WithLogger(logger.Named("engine")),
		progress.WithEvents(events))

	// --- Auth ---
	authSvc := authmw.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", authmw.LoginHandler(authSvc, dbh, cfg.AdminUser, cfg.AdminPassHash))

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		logger.Fatal("blob store", zap.Error(err))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))
		pr.Use(authmw.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		// Catalog + dashboard
		pr.With(rbac.Require("course:view")).
			Get("/courses", api.ListCoursesHandler(catalog, eng))
		pr.With(rbac.Require("course:view")).
			Get("/courses/{courseID}", api.GetCourseHandler(eng))
		pr.With(rbac.Require("course:view")).
			Get("/courses/{courseID}/completion", api.CourseCompletionHandler(eng))
		pr.With(rbac.Require("course:view")).
			Get("/modules/{moduleID}", api.GetModuleHandler(catalog, eng))
		pr.With(rbac.Require("course:view")).
			Get("/modules/{moduleID}/locked", api.ModuleLockedHandler(eng))

		// Learner flow
		pr.With(rbac.Require("topic:view")).
			Get("/topics/{topicID}/pages", api.TopicPagesHandler(eng))
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/modules/{moduleID}/progress", api.GetProgressHandler(eng))
		pr.With(rbac.Require("progress:advance")).
			Post("/modules/{moduleID}/advance", api.AdvanceHandler(eng))
		pr.With(rbac.Require("quiz:submit")).
			Post("/modules/{moduleID}/quizzes/{quizID}", api.QuizSubmitHandler(eng))
		pr.With(rbac.Require("exercise:submit")).
			Post("/modules/{moduleID}/exercises/{exerciseID}", api.ExerciseSubmitHandler(eng))

		// Homework
		pr.With(rbac.Require("homework:submit")).
			Post("/modules/{moduleID}/homework", api.SubmitHomeworkHandler(eng))
		pr.With(rbac.Require("homework:review")).
			Post("/modules/{moduleID}/homework/review", api.ReviewHomeworkHandler(eng))

		// Resources (module supplementary files)
		pr.With(rbac.Require("resource:view")).Route("/resources", func(rr chi.Router) {
			api.MountResources(rr, bs)
		})

		// Learner accounts (mentor/admin)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	logger.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("mode", string(cfg.Mode)),
		zap.String("db", cfg.DBDriver))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
