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

	"github.com/redis/go-redis/v9"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/credential"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/events"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/throttle"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/token"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-user-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-user-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-user-go/pkg/utilities"
)

func main() {
	// config.Load also reads .env, so it runs before the other env parsers
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg, err := utilities.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load logger config: %v\n", err)
		os.Exit(1)
	}
	lg, err := utilities.Init(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-user-go")

	// signing key problems are fatal at startup, never per request
	issuer, err := token.NewIssuer(token.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	if err != nil {
		sugar.Fatalf("token issuer: %v", err)
	}

	dbCfg, err := database.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("database config: %v", err)
	}
	db, err := database.Connect(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	repo := userrepo.NewUserRepo(db)
	if cfg.EnsureSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := repo.EnsureTable(ctx)
		cancel()
		if err != nil {
			sugar.Fatalf("ensure schema: %v", err)
		}
	}

	opts := []user.Option{
		user.WithLogger(sugar.Named("user")),
		user.WithDefaultPhoto(cfg.DefaultPhotoURL),
		user.WithAccessTTL(cfg.AccessTokenTTL),
		user.WithIDGenerator(utilities.NewIDGenerator(cfg.SnowflakeNode)),
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		limiter := throttle.NewLoginLimiter(rdb, throttle.Config{
			Enabled:     true,
			MaxAttempts: cfg.LoginMaxAttempts,
			Window:      cfg.LoginWindow,
		})
		opts = append(opts, user.WithLoginLimiter(limiter))
		sugar.Infow("login limiter enabled", "redis", cfg.RedisAddr, "max_attempts", cfg.LoginMaxAttempts)
	}

	if cfg.KafkaBroker != "" {
		pub := events.NewKafkaPublisher(cfg.KafkaBroker, cfg.KafkaTopic)
		defer func() {
			if err := pub.Close(); err != nil {
				sugar.Warnf("kafka publisher close failed: %v", err)
			}
		}()
		opts = append(opts, user.WithPublisher(pub))
		sugar.Infow("user events enabled", "broker", cfg.KafkaBroker, "topic", cfg.KafkaTopic)
	}

	svc := user.NewService(repo, credential.NewCodec(credential.DefaultParams), issuer, opts...)

	handler := router.RegisterRoutes(sugar,
		user.NewHandler(svc, sugar.Named("http")),
		token.NewHandler(issuer, sugar.Named("token")),
	)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infow("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
