package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"secretsanta/config"
	_ "secretsanta/docs"
	"secretsanta/internal/adapters/auth"
	"secretsanta/internal/adapters/email"
	"secretsanta/internal/adapters/lock"
	deliveryhttp "secretsanta/internal/delivery/http"
	"secretsanta/internal/delivery/http/controllers"
	"secretsanta/internal/delivery/http/middleware"
	"secretsanta/internal/domain"
	"secretsanta/internal/draw"
	"secretsanta/internal/repository/postgres"
	"secretsanta/internal/services"
)

const shutdownTimeout = 15 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var runMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, runMigrations)
		},
	}
	cmd.Flags().BoolVar(&runMigrations, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServe(ctx context.Context, runMigrations bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger()

	if runMigrations {
		if err := postgres.Migrate(cfg.DBUrl, postgres.MigrateUp); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}

	groupRepo := postgres.NewGroupRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	exclusionRepo := postgres.NewExclusionRepository(db)
	assignmentRepo := postgres.NewAssignmentRepository(db)

	engine := draw.NewEngine(draw.Options{
		MaxRandomAttempts: cfg.Draw.MaxRandomAttempts,
		MaxSearchSteps:    cfg.Draw.MaxSearchSteps,
	})
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	drawService := services.NewDrawService(groupRepo, participantRepo, exclusionRepo,
		postgres.NewDrawStore(db), locker, engine, emailService, logger, cfg.Draw.Timeout, cfg.BaseURL)
	resultService := services.NewResultService(groupRepo, participantRepo, assignmentRepo,
		auth.NewBcryptHasher(auth.DefaultBcryptCost), cfg.Draw.Timeout)
	exclusionService := services.NewExclusionService(groupRepo, participantRepo, exclusionRepo, cfg.Draw.Timeout)

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Draw:      controllers.NewDrawController(logger, drawService),
		Result:    controllers.NewResultController(logger, resultService),
		Exclusion: controllers.NewExclusionController(logger, exclusionService),
	}, auth.NewJWTVerifier(cfg.JWTSecret), logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment, "redis_lock", cfg.RedisURL != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLocker returns the Redis lock when REDIS_URL is set and the in-process lock otherwise.
func newLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.GroupLocker, func(), error) {
	if cfg.RedisURL == "" {
		return lock.NewLocal(), func() {}, nil
	}
	client, err := lock.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return lock.NewRedis(client, cfg.LockTTL, logger), func() { client.Close() }, nil
}
