// Package coach turns a chat transcript into one NutriPal reply, logging a
// meal when the model answers with a log_meal action.
package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"nutripal-backend/internal/models"
)

const DefaultHistoryLimit = 10

// MealCreator stores a meal on behalf of the user the conversation belongs to.
type MealCreator func(ctx context.Context, meal models.MealInput) (*models.Meal, error)

type OutcomeKind int

const (
	PlainReply OutcomeKind = iota
	ActionConfirmed
)

func (k OutcomeKind) String() string {
	switch k {
	case ActionConfirmed:
		return "action_confirmed"
	default:
		return "plain_reply"
	}
}

type Outcome struct {
	Kind OutcomeKind
	Text string
	Meal *models.Meal // set for ActionConfirmed
}

type Bridge struct {
	gen          Generator
	historyLimit int
	validate     *validator.Validate
	now          func() time.Time
}

func NewBridge(gen Generator, historyLimit int) *Bridge {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Bridge{
		gen:          gen,
		historyLimit: historyLimit,
		validate:     validator.New(),
		now:          time.Now,
	}
}

// Converse sends the recent history to the model and returns its reply.
// History is only read; recording the reply is up to the caller.
func (b *Bridge) Converse(ctx context.Context, history []models.ChatMessage, cc models.CoachingContext, createMeal MealCreator) (*Outcome, error) {
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}

	req := BuildRequest(history, cc, b.historyLimit)

	text, err := b.gen.GenerateContent(ctx, req)
	if err != nil {
		if !errors.Is(err, ErrMalformedResponse) {
			return nil, err
		}
		log.Warn("could not read gemini response, using fallback reply", "err", err)
		text = NoResponseText
	}

	meal, ok := parseAction(b.validate, text)
	if !ok {
		return &Outcome{Kind: PlainReply, Text: text}, nil
	}

	if createMeal == nil {
		return nil, &ActionMutationError{Err: errors.New("no meal creator configured")}
	}

	input := meal.toInput(b.activeDay(cc))
	stored, err := createMeal(ctx, input)
	if err != nil {
		return nil, &ActionMutationError{Err: err}
	}

	return &Outcome{
		Kind: ActionConfirmed,
		Text: confirmation(input),
		Meal: stored,
	}, nil
}

func (b *Bridge) activeDay(cc models.CoachingContext) time.Time {
	if !cc.ActiveDate.IsZero() {
		return cc.ActiveDate
	}
	return b.now()
}

func confirmation(in models.MealInput) string {
	return fmt.Sprintf("Got it! I've logged \"%s\" (%s kcal) for you. Anything else?", in.Name, num(in.Calories))
}
