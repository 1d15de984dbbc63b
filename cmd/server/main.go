package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tridxis/price-agent/internal/analysis"
	"github.com/tridxis/price-agent/internal/bot"
	"github.com/tridxis/price-agent/internal/cache"
	"github.com/tridxis/price-agent/internal/config"
	"github.com/tridxis/price-agent/internal/db"
	"github.com/tridxis/price-agent/internal/handler"
	"github.com/tridxis/price-agent/internal/job"
	"github.com/tridxis/price-agent/internal/logging"
	"github.com/tridxis/price-agent/internal/provider"
	"github.com/tridxis/price-agent/internal/repository"
	"github.com/tridxis/price-agent/internal/service"
	"github.com/tridxis/price-agent/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	_ "github.com/tridxis/price-agent/docs"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newProviderFunc  = func(tracer trace.Tracer, cfg provider.HuggingFaceConfig) *provider.HuggingFaceProvider {
		return provider.NewHuggingFaceProvider(tracer, cfg)
	}
	startWarmupFunc        = func(j *job.WarmupJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Price Agent API
// @version         1.0
// @description     Text analysis service answering crypto trading questions with sentiment, intent and entity classification.

// @host      localhost:8000
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Analysis log: both sinks are optional, the feed degrades to whatever
	// is configured.
	var store service.AnalysisStore
	if db.Pool != nil {
		analysisRepo := repository.NewAnalysisRepository(db.Pool, tracer)
		if err := analysisRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		store = analysisRepo
	}
	var feedRedis service.RedisClient
	if cache.Client != nil {
		feedRedis = cache.Client
	}
	feed := service.NewFeedService(tracer, store, feedRedis, cfg.RecentFeedSize)

	// Inference gateway and capability wiring
	hf := newProviderFunc(tracer, provider.HuggingFaceConfig{
		BaseURL:        cfg.HFAPIURL,
		Token:          cfg.HFAPIToken,
		SentimentModel: cfg.SentimentModel,
		IntentModel:    cfg.IntentModel,
		NERModel:       cfg.NERModel,
		MaxRPS:         cfg.InferenceMaxRPS,
	})

	var intentModel analysis.IntentModel = hf
	if cfg.IntentBackend == "openai" {
		intentModel = analysis.NewLLMIntentModel(analysis.NewOpenAIClient(cfg.OpenAIAPIKey), cfg.OpenAIModel)
		logger.Info("using LLM intent backend", zap.String("model", cfg.OpenAIModel))
	}

	analyzer := analysis.NewService(tracer, logger, hf, intentModel, hf, feed)

	// Model warmup (background goroutine, stopped by ctx cancel)
	if cfg.WarmupEnabled {
		warmup := job.NewWarmupJob(tracer, hf, cfg.WarmupIntervalSecs)
		startWarmupFunc(warmup, ctx)
	}

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(analyzer)

	// Create handlers and routes
	h := handler.New(tracer, analyzer, feed, handler.HealthInfo{
		IntentBackend:  cfg.IntentBackend,
		SentimentModel: cfg.SentimentModel,
		IntentModel:    cfg.IntentModel,
		NERModel:       cfg.NERModel,
	})

	r := newRouterFunc()
	r.Use(otelgin.Middleware("price-agent"))
	r.Use(handler.RequestMetrics())

	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
