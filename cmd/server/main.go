package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	webAdapter "auction-house/internal/adapters/web"
	"auction-house/internal/app"
	"auction-house/internal/config"
	"auction-house/internal/core"
	"auction-house/internal/db"
	"auction-house/internal/flash"
	"auction-house/internal/metrics"
	"auction-house/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	nav, err := config.LoadNav(cfg.NavFile)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	lots := core.NewLotService(pool)
	svc := app.NewAppService(core.NewUserService(pool), lots, core.NewDisplayService(pool, lots))

	m := metrics.New()

	var store flash.Store
	switch cfg.FlashStore {
	case config.FlashStorePostgres:
		pg := flash.NewPostgresStore(pool, cookiePath(cfg.BasePath), cfg.CookieSecure)
		pg.StartPurge(ctx, time.Hour, 24*time.Hour)
		store = pg
	default:
		store = flash.NewCookieStore([]byte(cfg.SessionKey), flash.CookieOptions{
			Path:   cookiePath(cfg.BasePath),
			Secure: cfg.CookieSecure,
		})
	}

	sessions := session.NewRegistry(nil, cfg.SessionIdleTimeout, func(string) {
		m.SessionIdleExpired()
	})
	sessions.StartPurge(ctx, 15*time.Minute)

	handler := webAdapter.NewHandler(ctx, svc, webAdapter.Config{
		BasePath:           cfg.BasePath,
		AppName:            cfg.AppName,
		JWTSecret:          cfg.JWTSecret,
		CookieSecure:       cfg.CookieSecure,
		AllowedOrigins:     cfg.AllowedOrigins,
		IdleWindow:         cfg.IdleLogoutWindow,
		TokenTTL:           cfg.TokenTTL,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		Nav:                nav,
		Flash:              store,
		Sessions:           sessions,
		Metrics:            m,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("server starting on :%s%s (flash store: %s)", cfg.Port, cfg.BasePath, cfg.FlashStore)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server: %v", err)
	}
	log.Println("server stopped")
}

func cookiePath(basePath string) string {
	if basePath == "" {
		return "/"
	}
	return basePath
}
