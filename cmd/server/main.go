package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/config"
	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/handler"
	"github.com/sitepress/internal/logger"
	"github.com/sitepress/internal/mail"
	"github.com/sitepress/internal/router"
	"github.com/sitepress/internal/storage"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// 日志尚未初始化，使用兜底实例
		logger.Z().Fatal("failed to load config", zap.Error(err))
	}

	log := logger.Init(cfg.GinMode, cfg.LoggerOptions())
	defer logger.Sync()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	dbOptions := cfg.DatabaseOptions()
	dbOptions.Logger = logger.NewGormLogger(log, cfg.GinMode == gin.DebugMode)
	if err := db.Init(dbOptions); err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	if err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		log.Fatal("failed to ensure super root user", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storageConfig := cfg.StorageConfig()
	backend, err := storage.New(ctx, storageConfig)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}

	api := handler.NewAPI(handler.Dependencies{
		DB:      db.DB,
		Storage: backend,
		Mail:    mail.New(cfg.MailConfig()),
		Policy:  content.NewOwnershipPolicy(cfg.Ownable.AllEditable),
	})

	routerOptions := router.Options{
		SessionSecret: cfg.SessionSecret,
		TemplateGlob:  cfg.TemplateGlob,
		StaticDir:     cfg.StaticDir,
		Logger:        log,
	}
	if driver := strings.ToLower(strings.TrimSpace(storageConfig.Driver)); driver == "" || driver == storage.DriverLocal {
		routerOptions.UploadDir = storageConfig.Local.BaseDir
		routerOptions.UploadURLPrefix = storageConfig.Local.URLPrefix
	}

	// 设置并运行 Gin 服务器
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, routerOptions),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
