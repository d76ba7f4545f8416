package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/stepflow-api/internal/auth"
	"github.com/yukikurage/stepflow-api/internal/config"
	"github.com/yukikurage/stepflow-api/internal/database"
	applog "github.com/yukikurage/stepflow-api/internal/logger"
	"github.com/yukikurage/stepflow-api/internal/metrics"
	"github.com/yukikurage/stepflow-api/internal/middleware"
	"github.com/yukikurage/stepflow-api/internal/repository"
	"github.com/yukikurage/stepflow-api/internal/router"
	"github.com/yukikurage/stepflow-api/internal/services"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stepflow",
		Short:         "Stepflow API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newTokenCommand())

	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Close()

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info("Migrations applied")
			return nil
		},
	}
}

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API tokens",
	}

	var userID, name, email string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Register a user profile and print a signed bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Close()

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			users := services.NewUserService(repository.NewStore(db))
			user, err := users.Sync(cmd.Context(), services.SyncUserInput{ID: userID, Name: name, Email: email})
			if err != nil {
				return err
			}

			token, err := auth.NewTokenManager(cfg.JWT).Issue(user.ID, user.Name, user.Email)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&userID, "user-id", "", "user id (token subject)")
	issue.Flags().StringVar(&name, "name", "", "display name")
	issue.Flags().StringVar(&email, "email", "", "email address")
	_ = issue.MarkFlagRequired("user-id")

	cmd.AddCommand(issue)
	return cmd
}

// bootstrap loads configuration and opens the database
func bootstrap() (*config.Config, *applog.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := applog.New(cfg.Logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Close()
		return nil, nil, nil, err
	}

	return cfg, log, db, nil
}

func serve() error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Close()

	gin.SetMode(cfg.GinMode)

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		return err
	}
	if cfg.RedisAddr() == "" {
		log.Warn("REDIS_HOST not set, sessions are stored in cookies")
	}

	// A nil *AIService must not reach the StepPlanner interface
	var planner services.StepPlanner
	if cfg.OpenAIKey != "" {
		planner = services.NewAIService(cfg.OpenAIKey)
	}

	store := repository.NewStore(db)
	access := services.NewAccessControl(cfg.Policy.MemberModifyCanWrite)

	engine := router.New(router.Deps{
		Log:           log.WithComponent("http"),
		Metrics:       metrics.New(),
		Sessions:      sessionStore,
		Tokens:        auth.NewTokenManager(cfg.JWT),
		InviteLimiter: middleware.NewIPRateLimiter(cfg.Invitation.RateLimit, cfg.Invitation.RateBurst),
		Projects:      services.NewProjectService(store, access),
		Steps:         services.NewStepService(store, access, planner),
		Subtasks:      services.NewSubtaskService(store, access),
		Invitations:   services.NewInvitationService(store, access, services.SystemClock{}, cfg.Invitation.TTL),
		Notes:         services.NewNoteService(store, access),
		Users:         services.NewUserService(store),
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	options := sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.IsRelease(),
		SameSite: http.SameSiteLaxMode,
	}

	if addr := cfg.RedisAddr(); addr != "" {
		store, err := redisStore.NewStore(10, "tcp", addr, "", "", []byte(cfg.Session.Secret))
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store.Options(options)
		return store, nil
	}

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(options)
	return store, nil
}
