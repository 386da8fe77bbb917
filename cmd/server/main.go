package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/perivihk-dotcom/client-intake/internal/api"
	"github.com/perivihk-dotcom/client-intake/internal/config"
	"github.com/perivihk-dotcom/client-intake/internal/handlers"
	"github.com/perivihk-dotcom/client-intake/internal/store"
)

func main() {
	// Configure slog to output DEBUG level messages
	// This should be done as early as possible in main
	handlerOpts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Init DB
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}

	// Run Migrations
	if err := db.Migrate("migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load("templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Setup Handlers
	apiHandler := &api.Handler{
		Store:  db,
		Config: cfg,
	}
	intakeHandler := &handlers.IntakeHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
		Profile:      cfg.Profile(),
	}
	adminHandler := &handlers.AdminHandler{
		Store:        db,
		SessionStore: sessionStore,
		Templates:    templates,
		Config:       cfg,
	}

	// Rate limiter for the public submission endpoints (1 request per minute)
	rateLimiter := handlers.NewRateLimiter(1 * time.Minute)

	// JSON API. Lives outside the CSRF wrapper; cross-origin access is
	// governed by the CORS middleware instead.
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/{$}", apiHandler.Root)
	apiMux.HandleFunc("POST /api/submissions", rateLimiter.Middleware(apiHandler.CreateSubmission))
	apiMux.HandleFunc("GET /api/submissions", apiHandler.ListSubmissions)
	apiMux.HandleFunc("DELETE /api/submissions/{id}", apiHandler.DeleteSubmission)
	apiMux.HandleFunc("POST /api/admin/verify", apiHandler.VerifyAdmin)

	// Server-rendered pages
	pageMux := http.NewServeMux()

	// Static Files
	fileServer := http.FileServer(http.Dir("./static"))
	pageMux.Handle("/static/", http.StripPrefix("/static", fileServer))

	// Public intake form
	pageMux.HandleFunc("/", intakeHandler.FormGet)
	pageMux.HandleFunc("POST /{$}", rateLimiter.Middleware(intakeHandler.FormPost))

	// Admin
	pageMux.HandleFunc("/login", adminHandler.LoginGet)
	pageMux.HandleFunc("POST /login", adminHandler.LoginPost)
	pageMux.HandleFunc("/logout", adminHandler.Logout)
	pageMux.HandleFunc("/admin", adminHandler.AuthMiddleware(adminHandler.Dashboard))
	pageMux.HandleFunc("POST /admin/submissions/delete", adminHandler.AuthMiddleware(adminHandler.DeleteSubmission))

	// 6. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	root := http.NewServeMux()
	root.Handle("/api/", api.CORSMiddleware(cfg.CORSOrigins)(apiMux))
	root.Handle("/", CSRF(pageMux))

	// Chain: Logger -> Security Headers -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(root),
	)

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
