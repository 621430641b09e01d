package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/handler"
	"github.com/noah-isme/sims-api/internal/mail"
	"github.com/noah-isme/sims-api/internal/repository"
	"github.com/noah-isme/sims-api/internal/service"
	"github.com/noah-isme/sims-api/pkg/cache"
	"github.com/noah-isme/sims-api/pkg/config"
	"github.com/noah-isme/sims-api/pkg/database"
	"github.com/noah-isme/sims-api/pkg/logger"
	"github.com/noah-isme/sims-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatal("connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	store, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		log.Fatal("prepare export dir", zap.Error(err))
	}

	mirror, err := storage.NewS3Mirror(context.Background(), storage.S3Config{
		Bucket:   cfg.S3.Bucket,
		Region:   cfg.S3.Region,
		Endpoint: cfg.S3.Endpoint,
	})
	if err != nil {
		log.Fatal("configure export mirror", zap.Error(err))
	}

	if err := dto.RegisterValidations(); err != nil {
		log.Fatal("register binding rules", zap.Error(err))
	}

	repos := service.NewRepos(db)
	exportSvc := service.NewExportService(store, mirror, log)
	service.RegisterGatherers(exportSvc, repos)

	mailer := mail.NewSMTPMailer(cfg.Mail, log)
	auth := service.NewAuthService(
		repository.NewAccountStore(db),
		repository.NewRevocationStore(redisClient),
		repository.NewResetTokenStore(redisClient, cfg.JWT.ResetTokenTTL),
		repos,
		mailer,
		cfg.JWT,
		log,
	)

	svcs := &handler.Services{
		Auth:               auth,
		Levels:             service.NewLevelService(repos, exportSvc, log),
		Classes:            service.NewClassService(repos, exportSvc, log),
		Departments:        service.NewDepartmentService(repos, exportSvc, log),
		StaffRoles:         service.NewStaffRoleService(repos, exportSvc, log),
		StaffDepartments:   service.NewStaffDepartmentService(repos, exportSvc, log),
		Staff:              service.NewStaffService(repos, exportSvc, log),
		Guardians:          service.NewGuardianService(repos, exportSvc, log),
		Students:           service.NewStudentService(repos, exportSvc, log),
		Subjects:           service.NewSubjectService(repos, exportSvc, log),
		Grades:             service.NewGradeService(repos, exportSvc, log),
		TotalGrades:        service.NewTotalGradeService(repos, exportSvc, log),
		SubjectEducators:   service.NewSubjectEducatorService(repos, exportSvc, log),
		AccessLevelChanges: service.NewAccessLevelChangeService(repos, exportSvc, log),
		Ready: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			return redisClient.Ping(ctx).Err()
		},
	}

	router := handler.NewRouter(cfg, log, svcs)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
