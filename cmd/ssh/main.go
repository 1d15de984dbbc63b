package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tridxis/price-agent/internal/analysis"
	"github.com/tridxis/price-agent/internal/cache"
	"github.com/tridxis/price-agent/internal/config"
	"github.com/tridxis/price-agent/internal/db"
	"github.com/tridxis/price-agent/internal/logging"
	"github.com/tridxis/price-agent/internal/provider"
	"github.com/tridxis/price-agent/internal/repository"
	"github.com/tridxis/price-agent/internal/service"
	"github.com/tridxis/price-agent/internal/tui"
	"github.com/tridxis/price-agent/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	wishlogging "github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	gossh "golang.org/x/crypto/ssh"
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
	loadAuthorizedKeysFunc = loadAuthorizedKeys
	newWishServerFunc      = wish.NewServer
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
)

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

	// Console analyses land in the same log as HTTP ones.
	var store service.AnalysisStore
	if db.Pool != nil {
		store = repository.NewAnalysisRepository(db.Pool, tracer)
	}
	var feedRedis service.RedisClient
	if cache.Client != nil {
		feedRedis = cache.Client
	}
	feed := service.NewFeedService(tracer, store, feedRedis, cfg.RecentFeedSize)

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

	// Build Wish SSH server
	addr := fmt.Sprintf("%s:%d", cfg.SSHHost, cfg.SSHPort)

	opts := []ssh.Option{
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
	}

	if cfg.SSHAuthorizedKeys != "" {
		authorizedKeys, err := loadAuthorizedKeysFunc(cfg.SSHAuthorizedKeys)
		if err != nil {
			log.Fatalf("failed to load authorized keys: %v", err)
		}
		log.Printf("SSH public key auth enabled with %d authorized keys", len(authorizedKeys))
		opts = append(opts, wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			for _, authorized := range authorizedKeys {
				if ssh.KeysEqual(key, authorized) {
					log.Printf("SSH auth accepted: user=%s fingerprint=%s", ctx.User(), gossh.FingerprintSHA256(key))
					return true
				}
			}
			log.Printf("SSH auth denied: fingerprint=%s", gossh.FingerprintSHA256(key))
			return false
		}))
	} else {
		log.Println("Warning: SSH_AUTHORIZED_KEYS not set, console accepts any public key")
	}

	opts = append(opts, wish.WithMiddleware(
		bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
			model := tui.NewModel(analyzer)
			pty, _, _ := s.Pty()
			model.SetSize(pty.Window.Width, pty.Window.Height)

			return model, []tea.ProgramOption{tea.WithAltScreen()}
		}),
		wishlogging.Middleware(),
	))

	srv, err := newWishServerFunc(opts...)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}

// loadAuthorizedKeys reads an authorized_keys file, one public key per line.
func loadAuthorizedKeys(path string) ([]ssh.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var keys []ssh.PublicKey
	for len(bytes.TrimSpace(data)) > 0 {
		key, _, _, rest, err := gossh.ParseAuthorizedKey(data)
		if err != nil {
			return nil, fmt.Errorf("parse authorized keys: %w", err)
		}
		keys = append(keys, key)
		data = rest
	}
	return keys, nil
}
