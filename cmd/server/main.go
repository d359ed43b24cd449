package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"minitweet/internal/backup"
	"minitweet/internal/config"
	apphttp "minitweet/internal/http"
	"minitweet/internal/repository"
	"minitweet/internal/repository/jsonfile"
	"minitweet/internal/repository/sqlite"
	"minitweet/internal/service"
	"minitweet/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo, tweetRepo, dbCloser, err := buildRepositories(cfg, logger)
	if err != nil {
		logger.Fatalf("setup repositories: %v", err)
	}
	if dbCloser != nil {
		defer dbCloser.Close()
	}

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := tweetRepo.Init(ctx); err != nil {
		logger.Fatalf("init tweet repository: %v", err)
	}

	userService := service.NewUserService(userRepo)
	tweetService := service.NewTweetService(tweetRepo)

	backupSvc, err := buildBackup(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup backup: %v", err)
	}
	if backupSvc != nil {
		backupSvc.Start(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, tweetService, backupSvc)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	if backupSvc != nil {
		backupSvc.Shutdown()
	}

	logger.Info("bye")
}

func buildRepositories(cfg config.Config, logger *logrus.Logger) (repository.UserRepository, repository.TweetRepository, io.Closer, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open database: %w", err)
		}
		logger.Infof("using sqlite storage at %s", cfg.Database.Path)
		return sqlite.NewUserRepository(db), sqlite.NewTweetRepository(db), db, nil
	default:
		userRepo, err := jsonfile.NewUserRepository(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		tweetRepo, err := jsonfile.NewTweetRepository(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Infof("using json storage under %s", cfg.Storage.DataDir)
		return userRepo, tweetRepo, nil, nil
	}
}

func buildBackup(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*backup.Service, error) {
	if cfg.Backup.Bucket == "" {
		logger.Info("backup bucket not configured, snapshots disabled")
		return nil, nil
	}
	if cfg.Storage.Driver != "json" {
		return nil, fmt.Errorf("snapshots require the json storage driver")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Backup.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Backup.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Backup.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s) for snapshots", cfg.Backup.Bucket, cfg.Backup.Region)

	return backup.New(backup.Config{
		Bucket:    cfg.Backup.Bucket,
		KeyPrefix: cfg.Backup.KeyPrefix,
		Paths: []string{
			filepath.Join(cfg.Storage.DataDir, "users.json"),
			filepath.Join(cfg.Storage.DataDir, "tweets.json"),
		},
		Interval: time.Duration(cfg.Backup.IntervalMinutes) * time.Minute,
		Logger:   logger,
	}, storage.NewS3Service(client)), nil
}
