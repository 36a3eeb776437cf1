package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	docs "github.com/adilzhan/taskgate/docs"
	"github.com/adilzhan/taskgate/internal/config"
	api "github.com/adilzhan/taskgate/internal/http"
	"github.com/adilzhan/taskgate/internal/log"
	"github.com/adilzhan/taskgate/internal/metrics"
	"github.com/adilzhan/taskgate/internal/oauth"
	"github.com/adilzhan/taskgate/internal/queue"
	"github.com/adilzhan/taskgate/internal/repo"
)

// @title Taskgate API
// @version 0.1.0
// @description Invite-gated auth and task CRUD.
// @schemes http https
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.Env == "production")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	tracer.Start(tracer.WithService("taskgate"), tracer.WithEnv(cfg.Env))
	defer tracer.Stop()

	metrics.MustRegister()

	docs.SwaggerInfo.BasePath = "/"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	api.WithSpan(ctx, "mongo.ensure_indexes", func(ctx context.Context) {
		err = store.EnsureIndexes(ctx)
	})
	if err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	var rds *repo.Redis
	if cfg.RedisAddr != "" {
		rds = repo.NewRedis(cfg.RedisAddr)
		if err := rds.Ping(ctx); err != nil {
			logger.Fatal("redis connect", zap.Error(err))
		}
		defer rds.Close()
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		pub, err = queue.NewRabbit(cfg.RabbitURL, queue.AuthExchange, queue.TaskExchange)
		if err != nil {
			logger.Fatal("rabbit connect", zap.Error(err))
		}
	}
	defer pub.Close()

	google := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL, cfg.OAuthStateSecret)

	h := api.NewHandler(cfg, store, google, rds, pub)
	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("taskgate listening", zap.String("port", cfg.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
