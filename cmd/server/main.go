package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/api"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/auth"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/config"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/storage"
)

type app struct {
	logger   internal.Logger
	sessions storage.SessionRepository
	subjects storage.SubjectRepository
	users    storage.UserRepository
}

func (a *app) Logger() internal.Logger                { return a.logger }
func (a *app) SessionRepo() storage.SessionRepository { return a.sessions }
func (a *app) SubjectRepo() storage.SubjectRepository { return a.subjects }
func (a *app) UserRepo() storage.UserRepository       { return a.users }

var _ api.App = (*app)(nil)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	var (
		sessionRepo storage.SessionRepository
		subjectRepo storage.SubjectRepository
		userRepo    storage.UserRepository
	)
	switch cfg.DBType {
	case "postgres":
		sessionRepo, subjectRepo, userRepo, err = storage.NewPostgresRepositories(cfg.DBDSN, logger)
	default:
		ensureDevData(cfg)
		sessionRepo, subjectRepo, userRepo, err = storage.NewFileRepositories(cfg.FileSessions, cfg.FileSubjects, cfg.FileUsers, logger)
	}
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	var provider auth.Provider
	if cfg.Env == "development" {
		provider = auth.NewLocalAuthProvider(userRepo, logger)
	} else {
		provider = auth.NewRemoteAuthProvider(cfg.AuthURL, logger)
	}

	a := &app{logger: logger, sessions: sessionRepo, subjects: subjectRepo, users: userRepo}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.RequestIDMiddleware())
	r.Use(api.AccessLogMiddleware(logger))
	r.Use(auth.SizeGuardMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/api/auth/login", api.PostLogin(a, provider))
	r.GET(auth.RecoveryPath, api.GetRecovery(a))
	r.POST(auth.RecoveryPath+"/clear-auth", api.PostRecoveryClearAuth(a))
	r.POST(auth.RecoveryPath+"/clear-all", api.PostRecoveryClearAll(a))

	protected := r.Group("/api")
	protected.Use(auth.AuthMiddleware(provider))
	protected.POST("/sessions", api.PostSession(a))
	protected.GET("/sessions", api.GetSessions(a))
	protected.PUT("/sessions/:id", api.PutSession(a))
	protected.DELETE("/sessions/:id", api.DeleteSession(a))
	protected.GET("/stats/summary", api.GetStatsSummary(a))
	protected.GET("/stats/subjects", api.GetSubjectStats(a))
	protected.GET("/stats/heatmap", api.GetHeatmap(a))
	protected.GET("/subjects", api.GetSubjects(a))
	protected.POST("/subjects", api.PostSubject(a))
	protected.DELETE("/subjects/:id", api.DeleteSubject(a))

	logger.Infof("Server running on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}

// ensureDevData creates the data directory and a default user so a fresh
// checkout runs without setup.
func ensureDevData(cfg *config.Config) {
	dir := filepath.Dir(cfg.FileUsers)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = os.MkdirAll(dir, 0755)
	}
	if _, err := os.Stat(cfg.FileUsers); os.IsNotExist(err) {
		_ = os.WriteFile(cfg.FileUsers, []byte(`[{"id":"u1","token":"MOCK-TOKEN","name":"Demo User"}]`), 0644)
	}
}
