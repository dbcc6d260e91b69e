package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/draftshare/internal/config"
	"github.com/xxxsen/draftshare/internal/db"
	"github.com/xxxsen/draftshare/internal/gate"
	"github.com/xxxsen/draftshare/internal/handler"
	"github.com/xxxsen/draftshare/internal/middleware"
	"github.com/xxxsen/draftshare/internal/pkg/jwt"
	"github.com/xxxsen/draftshare/internal/purge"
	"github.com/xxxsen/draftshare/internal/render"
	"github.com/xxxsen/draftshare/internal/repo"
	"github.com/xxxsen/draftshare/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "draftshare",
		Short: "public preview links for unpublished documents",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json or config.yaml")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run draftshare server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sqlDB, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			return runServer(cfg, sqlDB)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sqlDB, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			logutil.GetLogger(context.Background()).Info("migrations applied")
			return nil
		},
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "revoke every share link",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sqlDB, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			ctx := context.Background()
			links, err := repo.NewShareLinkStore(ctx, cfg.LinkStore, sqlDB)
			if err != nil {
				return fmt.Errorf("init link store: %w", err)
			}
			defer closeStore(links)
			shares := service.NewShareService(repo.NewDocumentRepo(sqlDB), links, nil, cfg.BaseURL)
			n, err := shares.RevokeAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %d share links\n", n)
			return nil
		},
	}

	var tokenUser string
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "mint an owner api token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			tok, err := jwt.GenerateToken(tokenUser, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "owner user id")

	rootCmd.AddCommand(runCmd, migrateCmd, cleanupCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("--config is required")
	}
	return config.Load(path)
}

func bootstrap(path string) (*config.Config, *sql.DB, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", path))

	sqlDB, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, sqlDB, nil
}

func closeStore(store repo.ShareLinkStore) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}

func runServer(cfg *config.Config, sqlDB *sql.DB) error {
	ctx := context.Background()
	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("base_url", cfg.BaseURL),
		zap.String("link_store", cfg.LinkStore.Type),
		zap.Int("purge_backends", len(cfg.Purge.Backends)),
	)

	links, err := repo.NewShareLinkStore(ctx, cfg.LinkStore, sqlDB)
	if err != nil {
		return fmt.Errorf("init link store: %w", err)
	}
	defer closeStore(links)

	backends, err := purge.NewAll(cfg.Purge.Backends)
	if err != nil {
		return fmt.Errorf("init purge backends: %w", err)
	}
	dispatcher := purge.NewDispatcher(cfg.Purge.Timeout(), backends...)
	pages := render.NewPageCache(cfg.PageCache.Size, cfg.PageCache.TTL())
	if pages != nil {
		dispatcher.Add(pages)
	}

	docRepo := repo.NewDocumentRepo(sqlDB)
	shareService := service.NewShareService(docRepo, links, dispatcher, cfg.BaseURL,
		service.WithShareableTypes(cfg.Share.PublicTypes),
	)
	hooks := service.NewLifecycleHooks(shareService, service.HooksConfig{
		AutoRevokeOnPublish: cfg.Share.AutoRevoke(),
		Pages:               pages,
	})
	documentService := service.NewDocumentService(docRepo, hooks)

	shaper := middleware.NewShaper(middleware.ShaperConfig{
		ExpiredStatus: cfg.Share.ExpiredStatus,
		StrictCSP:     cfg.Share.StrictCSP,
	})
	shareGate := gate.New(documentService, links, nil)

	deps := handler.RouterDeps{
		Documents:     handler.NewDocumentHandler(documentService),
		Shares:        handler.NewShareHandler(documentService, shareService),
		Pages:         handler.NewPageHandler(render.NewRenderer(documentService, pages), shaper),
		Properties:    handler.NewPropertiesHandler(cfg.Share.ExpiredStatus, cfg.Share.AutoRevoke()),
		JWTSecret:     []byte(cfg.JWTSecret),
		IssueInterval: cfg.Share.IssueInterval(),
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.DraftShare(shareGate, shaper),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", addr))

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-sigCtx.Done()
	logutil.GetLogger(ctx).Info("server stopping...")
	return nil
}
