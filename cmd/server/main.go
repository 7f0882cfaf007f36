package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusvault/internal/auth"
	"campusvault/internal/config"
	"campusvault/internal/handlers"
	"campusvault/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := bootstrapAdmin(db, cfg.AdminUser, cfg.AdminPassword); err != nil {
		logger.Error("failed to bootstrap admin user", "error", err)
		os.Exit(1)
	}

	if err := db.CleanExpiredSessions(); err != nil {
		logger.Warn("failed to clean expired sessions", "error", err)
	}

	h := handlers.NewHandlers(db, cfg.TemplateDir, cfg.SecureCookie)
	mux := setupRouter(h, cfg.StaticDir)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("starting server", "port", cfg.Port, "db", cfg.DBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}

// setupRouter wires all routes. Everything except login and register sits
// behind the auth middleware.
func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /register", h.RegisterForm)
	mux.HandleFunc("POST /register", h.Register)

	mux.Handle("GET /{$}", h.AuthMiddleware(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /logout", h.AuthMiddleware(http.HandlerFunc(h.Logout)))
	mux.Handle("POST /add", h.AuthMiddleware(http.HandlerFunc(h.AddTransaction)))
	mux.Handle("GET /delete/{id}", h.AuthMiddleware(http.HandlerFunc(h.DeleteTransaction)))
	mux.Handle("GET /settings", h.AuthMiddleware(http.HandlerFunc(h.SettingsForm)))
	mux.Handle("POST /settings", h.AuthMiddleware(http.HandlerFunc(h.UpdateSettings)))
	mux.Handle("GET /export", h.AuthMiddleware(http.HandlerFunc(h.ExportTransactions)))
	mux.Handle("GET /history", h.AuthMiddleware(http.HandlerFunc(h.History)))

	return mux
}

// bootstrapAdmin creates the initial account when the users table is empty and
// ADMIN_USER/ADMIN_PASSWORD are configured.
func bootstrapAdmin(db *storage.DB, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user, err := db.CreateUser(username, hash)
	if err != nil {
		return err
	}
	slog.Info("bootstrapped initial user", "username", user.Username, "id", user.ID)
	return nil
}
