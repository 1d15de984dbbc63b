package main

import (
	"context"
	"log"

	"github.com/tridxis/price-agent/internal/analysis"
	"github.com/tridxis/price-agent/internal/config"
	"github.com/tridxis/price-agent/internal/domain"
	"github.com/tridxis/price-agent/internal/logging"
	"github.com/tridxis/price-agent/internal/provider"
	"github.com/tridxis/price-agent/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	loadEnvFunc     = godotenv.Load
	loadConfigFunc  = config.Load
	initTracerFunc  = tracing.InitTracer
	newProviderFunc = func(tracer trace.Tracer, cfg provider.HuggingFaceConfig) *provider.HuggingFaceProvider {
		return provider.NewHuggingFaceProvider(tracer, cfg)
	}
	runServerFunc = func(s *mcp.Server, ctx context.Context) error {
		return s.Run(ctx, &mcp.StdioTransport{})
	}
)

// textAnalyzer runs the classification pipeline for tool calls.
type textAnalyzer interface {
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
}

type analyzeArgs struct {
	Text string `json:"text" jsonschema:"the text to analyze"`
}

type labelsArgs struct{}

type labelsResult struct {
	Labels []string `json:"labels"`
}

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// Tool calls are not recorded in the analysis log.
	analyzer := analysis.NewService(tracer, logger, hf, intentModel, hf, nil)

	server := mcp.NewServer(&mcp.Implementation{Name: "price-agent", Version: "1.0.0"}, nil)
	registerTools(server, analyzer)

	log.Println("MCP server listening on stdio")
	if err := runServerFunc(server, ctx); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}

func registerTools(server *mcp.Server, analyzer textAnalyzer) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_text",
		Description: "Classify sentiment, rank trading intents and tag entities in a piece of text.",
	}, analyzeTool(analyzer))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "intent_labels",
		Description: "List the candidate intent labels the analyzer ranks against.",
	}, intentLabelsTool())
}

func analyzeTool(analyzer textAnalyzer) func(context.Context, *mcp.CallToolRequest, analyzeArgs) (*mcp.CallToolResult, domain.Analysis, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args analyzeArgs) (*mcp.CallToolResult, domain.Analysis, error) {
		result, err := analyzer.Analyze(ctx, args.Text)
		if err != nil {
			return nil, domain.Analysis{}, err
		}
		return nil, result, nil
	}
}

func intentLabelsTool() func(context.Context, *mcp.CallToolRequest, labelsArgs) (*mcp.CallToolResult, labelsResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args labelsArgs) (*mcp.CallToolResult, labelsResult, error) {
		return nil, labelsResult{Labels: domain.IntentLabels}, nil
	}
}
