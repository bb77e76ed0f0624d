package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/chorewheel/internal/database"
	"github.com/dukerupert/chorewheel/internal/logging"
	"github.com/dukerupert/chorewheel/internal/push"
	"github.com/dukerupert/chorewheel/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("CHOREWHEEL_LOG_LEVEL"))

	port := os.Getenv("CHOREWHEEL_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CHOREWHEEL_DB_PATH")
	if dbPath == "" {
		dbPath = "chorewheel.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		VAPIDPublicKey:  os.Getenv("CHOREWHEEL_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("CHOREWHEEL_VAPID_PRIVATE_KEY"),
		SecureCookies:   os.Getenv("CHOREWHEEL_SECURE_COOKIES") == "true",
	}
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			logger.Error("failed to generate VAPID keys", "error", err)
			os.Exit(1)
		}
		// Generated keys live for this process only. Set the env vars to
		// keep browser subscriptions valid across restarts.
		logger.Warn("VAPID keys not configured, generated ephemeral keys",
			"public_key", pub)
		cfg.VAPIDPublicKey = pub
		cfg.VAPIDPrivateKey = priv
	}

	srv := server.New(db, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	}

	// Periodic housekeeping: expired sessions, stale reminder dedup rows,
	// idle rate limit buckets.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := srv.SessionStore().DeleteExpired(ctx); err != nil {
					logger.Error("session cleanup", "error", err)
				}
				if err := srv.PushStore().CleanupSent(ctx, time.Now().Add(-7*24*time.Hour)); err != nil {
					logger.Error("push log cleanup", "error", err)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("chorewheel listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
