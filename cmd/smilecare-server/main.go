package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smilecare/smilecare/internal/config"
	"github.com/smilecare/smilecare/internal/domain/billing"
	"github.com/smilecare/smilecare/internal/domain/identity"
	"github.com/smilecare/smilecare/internal/domain/notification"
	"github.com/smilecare/smilecare/internal/domain/records"
	"github.com/smilecare/smilecare/internal/domain/review"
	"github.com/smilecare/smilecare/internal/domain/scheduling"
	"github.com/smilecare/smilecare/internal/domain/treatment"
	"github.com/smilecare/smilecare/internal/platform/apperr"
	"github.com/smilecare/smilecare/internal/platform/auth"
	"github.com/smilecare/smilecare/internal/platform/db"
	"github.com/smilecare/smilecare/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smilecare-server",
		Short: "Dental practice management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := loadAndConnect()
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			count, err := migrator.Up(context.Background())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := loadAndConnect()
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			statuses, err := migrator.Status(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an initial admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}

			_, pool, err := loadAndConnect()
			if err != nil {
				return err
			}
			defer pool.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			ctx := context.Background()
			users := identity.NewRepoPG(pool)
			user := &identity.User{
				Email:        email,
				PasswordHash: hash,
				Role:         auth.RoleAdmin,
				FirstName:    "Admin",
				LastName:     "User",
			}
			if err := users.Create(ctx, user); err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			fmt.Printf("Created admin user %s (%s)\n", email, user.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Admin email address")
	cmd.Flags().String("password", "", "Admin password")
	return cmd
}

func loadAndConnect() (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), time.Duration(cfg.JWTExpiryHours)*time.Hour)
	inTx := db.RunnerFor(pool)

	// Repositories
	userRepo := identity.NewRepoPG(pool)
	medicalRepo := records.NewMedicalRecordRepoPG(pool)
	dentalRepo := records.NewDentalRecordRepoPG(pool)
	apptRepo := scheduling.NewRepoPG(pool)
	planRepo := treatment.NewRepoPG(pool)
	invoiceRepo := billing.NewInvoiceRepoPG(pool)
	paymentRepo := billing.NewPaymentRepoPG(pool)
	notifyRepo := notification.NewRepoPG(pool)
	reviewRepo := review.NewRepoPG(pool)

	// Services
	identitySvc := identity.NewService(userRepo, medicalRepo, issuer, inTx)
	recordsSvc := records.NewService(medicalRepo, dentalRepo)
	notifySvc := notification.NewService(notifyRepo)
	schedulingSvc := scheduling.NewService(apptRepo, identitySvc, appointmentNotifier{notifySvc})
	treatmentSvc := treatment.NewService(planRepo, inTx)
	billingSvc := billing.NewService(invoiceRepo, paymentRepo, inTx)
	reviewSvc := review.NewService(reviewRepo, identitySvc)

	// Route groups: public endpoints plus the authenticated API surface.
	public := e.Group("")
	api := e.Group("/api/v1", auth.Middleware(issuer))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	identity.NewHandler(identitySvc).RegisterRoutes(public, api)
	records.NewHandler(recordsSvc).RegisterRoutes(api)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(api)
	treatment.NewHandler(treatmentSvc).RegisterRoutes(api)
	billing.NewHandler(billingSvc).RegisterRoutes(api)
	notification.NewHandler(notifySvc).RegisterRoutes(api)
	review.NewHandler(reviewSvc).RegisterRoutes(api)

	e.GET("/health", db.HealthHandler(pool))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// appointmentNotifier adapts the notification service to the scheduling
// Notifier port.
type appointmentNotifier struct {
	notifications *notification.Service
}

func (a appointmentNotifier) Notify(ctx context.Context, userID uuid.UUID, title, message string, relatedID uuid.UUID) error {
	_, err := a.notifications.Notify(ctx, notification.CreateRequest{
		UserID:    userID,
		Type:      "appointment",
		Title:     title,
		Message:   message,
		RelatedID: &relatedID,
	})
	return err
}
