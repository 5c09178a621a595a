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

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lumina-health-api/cache"
	"lumina-health-api/community"
	"lumina-health-api/config"
	"lumina-health-api/handlers"
	"lumina-health-api/logging"
	"lumina-health-api/repository"
	"lumina-health-api/search"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New(afero.NewOsFs())
	var cfgFile string

	serve := func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	}

	root := &cobra.Command{
		Use:          "lumina",
		Short:        "Lumina Health API server",
		SilenceUsage: true,
		RunE:         serve,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().Int("port", 8000, "HTTP listen port")
	_ = v.BindPFlag("port", root.PersistentFlags().Lookup("port"))

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  serve,
	})
	return root
}

func run(parent context.Context, cfg *config.Config) error {
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Document store
	store, err := repository.Open(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		log.Warn("database unavailable", zap.Error(err))
		store = repository.Unavailable{}
	}
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set; community endpoints will fail")
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			log.Warn("database ping failed", zap.Error(err))
		} else {
			log.Info("database connected", zap.String("name", store.Name()))
		}
		cancel()
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()

	opts := []community.Option{community.WithLogger(log)}

	// ---- Search result cache
	if cfg.RedisAddr != "" {
		rc := cache.New(cfg.RedisAddr, cfg.RedisDB, cfg.CacheTTLSeconds)
		defer rc.Close()
		opts = append(opts, community.WithCache(rc))
		log.Info("post search cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	// ---- Search index
	if cfg.ESAddr != "" {
		es, err := search.New(cfg.ESAddr, cfg.ESIndex)
		if err != nil {
			return fmt.Errorf("es init: %w", err)
		}
		if err := es.EnsureIndex(ctx); err != nil {
			log.Warn("ensure search index", zap.String("index", cfg.ESIndex), zap.Error(err))
		}
		opts = append(opts, community.WithIndex(es))
		log.Info("post search enabled", zap.String("addr", cfg.ESAddr), zap.String("index", cfg.ESIndex))
	}

	svc := community.NewService(repository.NewPostRepo(store), opts...)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: handlers.NewRouter(handlers.Deps{
			Store:          store,
			Community:      svc,
			Log:            log,
			DatabaseURLSet: cfg.DatabaseURL != "",
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
