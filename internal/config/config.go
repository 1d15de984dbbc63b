package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port int

	HFAPIURL        string
	HFAPIToken      string
	SentimentModel  string
	IntentModel     string
	NERModel        string
	InferenceMaxRPS int

	IntentBackend string
	OpenAIAPIKey  string
	OpenAIModel   string

	DatabaseURL    string
	RedisURL       string
	RecentFeedSize int

	TelegramBotToken string

	LogLevel  string
	LogFormat string

	WarmupEnabled      bool
	WarmupIntervalSecs int

	SSHHost           string
	SSHPort           int
	SSHHostKeyPath    string
	SSHAuthorizedKeys string
}

func Load() *Config {
	cfg := &Config{
		HFAPIToken:        os.Getenv("HF_API_TOKEN"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		SSHAuthorizedKeys: strings.TrimSpace(os.Getenv("SSH_AUTHORIZED_KEYS")),
	}

	cfg.Port = 8000
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}

	cfg.HFAPIURL = strings.TrimRight(strings.TrimSpace(os.Getenv("HF_API_URL")), "/")
	if cfg.HFAPIURL == "" {
		cfg.HFAPIURL = "https://api-inference.huggingface.co"
	}
	if cfg.HFAPIToken == "" {
		log.Println("Warning: HF_API_TOKEN not set, inference API calls are unauthenticated")
	}

	cfg.SentimentModel = strings.TrimSpace(os.Getenv("SENTIMENT_MODEL"))
	if cfg.SentimentModel == "" {
		cfg.SentimentModel = "ProsusAI/finbert"
	}

	cfg.IntentModel = strings.TrimSpace(os.Getenv("INTENT_MODEL"))
	if cfg.IntentModel == "" {
		cfg.IntentModel = "facebook/bart-large-mnli"
	}

	cfg.NERModel = strings.TrimSpace(os.Getenv("NER_MODEL"))
	if cfg.NERModel == "" {
		cfg.NERModel = "Jean-Baptiste/camembert-ner-with-dates"
	}

	cfg.InferenceMaxRPS = 8
	if v := strings.TrimSpace(os.Getenv("INFERENCE_MAX_RPS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.InferenceMaxRPS = n
		}
	}

	cfg.IntentBackend = strings.ToLower(strings.TrimSpace(os.Getenv("INTENT_BACKEND")))
	if cfg.IntentBackend == "" {
		cfg.IntentBackend = "hf"
	}
	if cfg.IntentBackend != "hf" && cfg.IntentBackend != "openai" {
		log.Printf("Warning: unsupported INTENT_BACKEND=%q, defaulting to hf", cfg.IntentBackend)
		cfg.IntentBackend = "hf"
	}
	if cfg.IntentBackend == "openai" && cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, falling back to the zero-shot intent model")
		cfg.IntentBackend = "hf"
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, analysis log disabled")
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.RecentFeedSize = 50
	if v := strings.TrimSpace(os.Getenv("RECENT_FEED_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RecentFeedSize = n
		}
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.LogFormat = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}

	cfg.WarmupEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("WARMUP_ENABLED")), "true")

	cfg.WarmupIntervalSecs = 600
	if v := strings.TrimSpace(os.Getenv("WARMUP_INTERVAL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WarmupIntervalSecs = n
		}
	}

	cfg.SSHHost = strings.TrimSpace(os.Getenv("SSH_HOST"))
	if cfg.SSHHost == "" {
		cfg.SSHHost = "0.0.0.0"
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/price_agent_ed25519"
	}

	return cfg
}
