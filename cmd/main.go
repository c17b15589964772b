package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/edulift/auth-service/config"
	"github.com/edulift/auth-service/db"
	"github.com/edulift/auth-service/internal/auth/handler"
	repo "github.com/edulift/auth-service/internal/auth/repository/postgres"
	"github.com/edulift/auth-service/internal/auth/service"
	"github.com/edulift/auth-service/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	var notifier notify.Notifier
	if cfg.RabbitMQURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("warn: RabbitMQ unavailable, falling back to log notifier: %v", err)
			notifier = &notify.LogNotifier{}
		} else {
			notifier = amqpNotifier
		}
	} else {
		notifier = &notify.LogNotifier{}
	}
	defer notifier.Close()

	userRepo := repo.NewUserRepository(dbPool)
	tenantRepo := repo.NewTenantRepository(dbPool)
	profileRepo := repo.NewProfileRepository(dbPool)
	attemptRepo := repo.NewAttemptRepository(dbPool)
	sessionRepo := repo.NewSessionRepository(dbPool)
	resetTokenRepo := repo.NewResetTokenRepository(dbPool)

	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessExpiryMin, cfg.RefreshExpiryMin)
	securityService := service.NewSecurityService(attemptRepo)
	sessionService := service.NewSessionService(sessionRepo, cfg.MaxActiveSessions)
	recoveryService := service.NewRecoveryService(userRepo, resetTokenRepo, sessionRepo, notifier)
	userService := service.NewUserService(userRepo, tenantRepo, profileRepo,
		securityService, sessionService, tokenService, cfg)

	authHandler := handler.NewAuthHandler(userService, sessionService, recoveryService, tokenService)

	go runCleanup(ctx, sessionService, recoveryService, time.Duration(cfg.CleanupIntervalMin)*time.Minute)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// runCleanup periodically reaps expired sessions and stale reset tokens.
// Correctness does not depend on it; both expire lazily on access.
func runCleanup(ctx context.Context, sessions *service.SessionService,
	recovery *service.RecoveryService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed, err := sessions.CleanExpiredSessions(ctx); err != nil {
				log.Printf("warn: failed to clean expired sessions: %v", err)
			} else if removed > 0 {
				log.Printf("cleaned %d expired sessions", removed)
			}

			if removed, err := recovery.CleanExpiredTokens(ctx, 0); err != nil {
				log.Printf("warn: failed to clean expired reset tokens: %v", err)
			} else if removed > 0 {
				log.Printf("cleaned %d stale reset tokens", removed)
			}
		}
	}
}
