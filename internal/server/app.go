// Package server initializes and runs the AskGita backend. It connects the
// document store and Redis, wires the account, chat, and history services,
// and serves the HTTP API until shut down.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/askgita/askgita/internal/logging"
	"github.com/askgita/askgita/internal/server/answer"
	"github.com/askgita/askgita/internal/server/chats"
	"github.com/askgita/askgita/internal/server/config"
	"github.com/askgita/askgita/internal/server/httpapi"
	"github.com/askgita/askgita/internal/server/mail"
	"github.com/askgita/askgita/internal/server/repositories/redis"
	"github.com/askgita/askgita/internal/server/users"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	mongo   *mongo.Client
	redis   *redis.Client
	handler http.Handler
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(c.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo init error: %w", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}
	db := mongoClient.Database(c.MongoDatabase)

	redisClient, err := redis.NewClient(c.RedisAddr, c.RedisPassword, c.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}

	otpStore := redis.NewOTPStore(redisClient, c.OTPValidityDuration)
	limiter := redis.NewRateLimiter(redisClient, c.GuestRequestsPerMinute)
	mailer := mail.NewLogMailer(logger)

	userService := users.NewService(users.NewMongoRepository(db), otpStore, mailer, c)
	chatService := chats.NewService(chats.NewMongoRepository(db))
	answerService := answer.NewService(c.LLMBaseURL, c.LLMAPIKey, c.LLMModel, logger)

	handler := httpapi.NewRouter(c, userService, chatService, answerService, limiter, logger)

	return &App{
		config:  c,
		logger:  logger,
		mongo:   mongoClient,
		redis:   redisClient,
		handler: handler,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "server error", "err", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "err", err)
		}
	}

	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.mongo.Disconnect(disconnectCtx)
	_ = app.redis.Close()

	app.logger.Info(ctx, "Stopped")
}
