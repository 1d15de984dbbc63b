package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tridxis/price-agent/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// Analyzer runs the classification pipeline for bot messages.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
}

func StartTelegramBot(analyzer Analyzer) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/start", func(c tele.Context) error {
		return c.Send("Send me a crypto trading question and I will classify its intent, sentiment and entities.\n\nCommands:\n/labels - supported intent labels")
	})

	b.Handle("/labels", func(c tele.Context) error {
		return c.Send("Intent labels:\n" + strings.Join(domain.IntentLabels, "\n"))
	})

	b.Handle(tele.OnText, func(c tele.Context) error {
		text := c.Text()
		if strings.TrimSpace(text) == "" {
			return c.Send("Send a question about a crypto asset, e.g. \"is BTC going up tomorrow?\"")
		}
		result, err := analyzer.Analyze(context.Background(), text)
		if err != nil {
			return c.Send(fmt.Sprintf("Analysis failed: %v", err))
		}
		return c.Send(formatAnalysis(result))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func formatAnalysis(a domain.Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Intent: %s (%.0f%%)\n", a.Intent.Primary, a.Intent.Confidence*100)
	if len(a.Intent.Secondary) > 0 {
		parts := make([]string, 0, len(a.Intent.Secondary))
		for _, s := range a.Intent.Secondary {
			parts = append(parts, fmt.Sprintf("%s (%.0f%%)", s.Label, s.Score*100))
		}
		fmt.Fprintf(&sb, "Also possible: %s\n", strings.Join(parts, ", "))
	}
	fmt.Fprintf(&sb, "Sentiment: %s (%.0f%%)", a.Sentiment.Label, a.Sentiment.Score*100)
	if len(a.Entities) > 0 {
		sb.WriteString("\nEntities:")
		for _, e := range a.Entities {
			fmt.Fprintf(&sb, "\n%s: %s (%.0f%%)", e.Type, e.Value, e.Confidence*100)
		}
	}
	return sb.String()
}
