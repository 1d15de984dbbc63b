package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tridxis/price-agent/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

func newTestHandler(analyzer TextAnalyzer, feed RecentFeed) *Handler {
	return &Handler{
		tracer:   trace.NewNoopTracerProvider().Tracer("handler-test"),
		analyzer: analyzer,
		feed:     feed,
		info: HealthInfo{
			IntentBackend:  "hf",
			SentimentModel: "ProsusAI/finbert",
			IntentModel:    "facebook/bart-large-mnli",
			NERModel:       "Jean-Baptiste/camembert-ner-with-dates",
		},
	}
}

func postAnalyze(h *Handler, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/analyze", h.Analyze)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeSuccess(t *testing.T) {
	analyzer := &analyzerStub{result: domain.Analysis{
		Intent: domain.Intent{
			Primary:    "price_query",
			Confidence: 0.8,
			Secondary: []domain.RankedLabel{
				{Label: "trend_analysis", Score: 0.4},
				{Label: "market_sentiment", Score: 0.2},
			},
		},
		Sentiment: domain.Sentiment{Label: "positive", Score: 0.93},
		Entities:  []domain.Entity{{Type: "CRYPTO", Value: "BTC", Confidence: 0.91}},
	}}
	h := newTestHandler(analyzer, nil)

	w := postAnalyze(h, `{"text":"is btc going up?"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if analyzer.lastText != "is btc going up?" {
		t.Fatalf("unexpected text passed to analyzer: %q", analyzer.lastText)
	}

	var body struct {
		Intent struct {
			Primary    string  `json:"primary"`
			Confidence float64 `json:"confidence"`
			Secondary  []struct {
				Label string  `json:"label"`
				Score float64 `json:"score"`
			} `json:"secondary"`
		} `json:"intent"`
		Sentiment struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
		} `json:"sentiment"`
		Entities []struct {
			Type       string  `json:"type"`
			Value      string  `json:"value"`
			Confidence float64 `json:"confidence"`
		} `json:"entities"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Intent.Primary != "price_query" || body.Intent.Confidence != 0.8 {
		t.Fatalf("unexpected intent: %+v", body.Intent)
	}
	if len(body.Intent.Secondary) != 2 || body.Intent.Secondary[0].Label != "trend_analysis" {
		t.Fatalf("unexpected secondary intents: %+v", body.Intent.Secondary)
	}
	if body.Sentiment.Label != "positive" {
		t.Fatalf("unexpected sentiment: %+v", body.Sentiment)
	}
	if len(body.Entities) != 1 || body.Entities[0].Type != "CRYPTO" || body.Entities[0].Value != "BTC" {
		t.Fatalf("unexpected entities: %+v", body.Entities)
	}
}

func TestAnalyzeMissingTextRejected(t *testing.T) {
	analyzer := &analyzerStub{}
	h := newTestHandler(analyzer, nil)

	for _, body := range []string{`{}`, `{"message":"hello"}`, `{"text": 42}`, `{"text": null}`} {
		w := postAnalyze(h, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, w.Code)
		}
	}
	if analyzer.calls != 0 {
		t.Fatalf("expected no inference on rejected requests, got %d calls", analyzer.calls)
	}
}

func TestAnalyzeEmptyTextAccepted(t *testing.T) {
	analyzer := &analyzerStub{result: domain.Analysis{
		Intent:    domain.Intent{Primary: "market_sentiment", Secondary: []domain.RankedLabel{}},
		Entities:  []domain.Entity{},
		Sentiment: domain.Sentiment{Label: "neutral", Score: 0.5},
	}}
	h := newTestHandler(analyzer, nil)

	w := postAnalyze(h, `{"text":""}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty text, got %d", w.Code)
	}
	if analyzer.calls != 1 || analyzer.lastText != "" {
		t.Fatalf("expected analyzer called with empty text, calls=%d text=%q", analyzer.calls, analyzer.lastText)
	}
}

func TestAnalyzeMalformedJSON(t *testing.T) {
	analyzer := &analyzerStub{}
	h := newTestHandler(analyzer, nil)

	w := postAnalyze(h, `{"text": `)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if analyzer.calls != 0 {
		t.Fatal("expected no inference on malformed body")
	}
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	analyzer := &analyzerStub{err: errors.New("sentiment: inference API error 503")}
	h := newTestHandler(analyzer, nil)

	w := postAnalyze(h, `{"text":"is btc going up?"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Error == "" {
		t.Fatal("expected error message in response")
	}
}

type analyzerStub struct {
	result domain.Analysis
	err    error

	calls    int
	lastText string
}

func (s *analyzerStub) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	s.calls++
	s.lastText = text
	if s.err != nil {
		return domain.Analysis{}, s.err
	}
	return s.result, nil
}
