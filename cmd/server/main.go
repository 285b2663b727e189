package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"authsvc/backend/internal/config"
	"authsvc/backend/internal/httpserver"
	"authsvc/backend/internal/infrastructure/postgres"
	"authsvc/backend/internal/infrastructure/token"
	authusecase "authsvc/backend/internal/usecase/auth"
	userusecase "authsvc/backend/internal/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rootCtx := context.Background()
	db, err := postgres.New(rootCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(rootCtx); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTIssuer)
	hasher := authusecase.NewPasswordHasher(cfg.BcryptCost)
	users := postgres.NewUserRepository(db.Pool)

	authService := authusecase.NewService(users, codec, hasher, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := userusecase.NewService(users)

	server := httpserver.NewServer(cfg, authService, userService)
	log.Printf("HTTP server listening on %s", server.Addr())

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP server closed: %v", err)
				return
			}
			log.Fatalf("server error: %v", err)
		}
		log.Printf("HTTP server stopped accepting new connections")
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v\n", err)
	} else {
		log.Printf("graceful shutdown completed")
	}
}
