package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"nutripal-backend/internal/models"
	"nutripal-backend/internal/nutrition"
)

const (
	DefaultHealthTip = "Your fat intake was a bit high yesterday. Try incorporating more leafy greens or lean protein sources today!"
	NoHistoryTip     = "Log your meals today and tomorrow you'll get a tip based on how the day went."

	tipCacheTTL = 24 * time.Hour
)

// TipGenerator turns a prompt into a short piece of advice.
type TipGenerator interface {
	GenerateTip(ctx context.Context, prompt string) (string, error)
}

type GeminiTipGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiTipGenerator(ctx context.Context, apiKey, modelName string) (*GeminiTipGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(120)
	model.SystemInstruction = genai.NewUserContent(genai.Text(
		"You are NutriPal, a friendly nutrition coach. Reply with one or two plain sentences, no markdown.",
	))

	return &GeminiTipGenerator{client: client, model: model}, nil
}

func (g *GeminiTipGenerator) Close() error {
	return g.client.Close()
}

func (g *GeminiTipGenerator) GenerateTip(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return strings.TrimSpace(responseText(resp)), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	return text.String()
}

type totalsReader interface {
	TotalsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (models.MacroTotals, error)
}

// TipService produces the dashboard health tip: one per user per day, based on
// how yesterday compared with the user's targets.
type TipService struct {
	gen   TipGenerator
	cache *redis.Client
	meals totalsReader
}

func NewTipService(gen TipGenerator, cache *redis.Client, meals totalsReader) *TipService {
	return &TipService{gen: gen, cache: cache, meals: meals}
}

func (s *TipService) DailyTip(ctx context.Context, userID uuid.UUID, goals models.Goals, today time.Time) string {
	start, _ := nutrition.DayBounds(today)
	key := fmt.Sprintf("health_tip:%s:%s", userID, start.Format(time.DateOnly))

	if cached, err := s.cache.Get(ctx, key).Result(); err == nil && cached != "" {
		return cached
	}

	yesterday, err := s.meals.TotalsBetween(ctx, userID, start.AddDate(0, 0, -1), start)
	if err != nil {
		log.Warn("tip totals lookup failed", "user", userID, "err", err)
		return DefaultHealthTip
	}
	if yesterday.Calories == 0 {
		return NoHistoryTip
	}

	if s.gen == nil {
		return DefaultHealthTip
	}
	tip, err := s.gen.GenerateTip(ctx, tipPrompt(goals, yesterday))
	if err != nil || tip == "" {
		log.Warn("tip generation failed, using default", "user", userID, "err", err)
		return DefaultHealthTip
	}

	if err := s.cache.Set(ctx, key, tip, tipCacheTTL).Err(); err != nil {
		log.Warn("tip cache write failed", "user", userID, "err", err)
	}
	return tip
}

func tipPrompt(goals models.Goals, ate models.MacroTotals) string {
	return fmt.Sprintf(`Yesterday the user ate %.0f kcal, %.0fg protein, %.0fg carbs and %.0fg fat.
Their daily targets are %d kcal, %dg protein, %dg carbs and %dg fat.
Write one short, encouraging health tip for today that addresses the biggest gap or excess.`,
		ate.Calories, ate.Protein, ate.Carbs, ate.Fat,
		goals.Calories, goals.Protein, goals.Carbs, goals.Fat,
	)
}
