package coach

import (
	"fmt"
	"strconv"

	"nutripal-backend/internal/models"
)

// Wire types for the generateContent endpoint.

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GenerateContentRequest struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
}

// BuildRequest maps the last limit messages and the coaching context into a request payload.
func BuildRequest(history []models.ChatMessage, cc models.CoachingContext, limit int) *GenerateContentRequest {
	recent := recentHistory(history, limit)

	contents := make([]Content, 0, len(recent))
	for _, msg := range recent {
		contents = append(contents, Content{
			Role:  endpointRole(msg.Role),
			Parts: []Part{{Text: msg.Text}},
		})
	}

	return &GenerateContentRequest{
		Contents: contents,
		SystemInstruction: &Content{
			Parts: []Part{{Text: SystemPrompt(cc)}},
		},
	}
}

func recentHistory(history []models.ChatMessage, limit int) []models.ChatMessage {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}

func endpointRole(role string) string {
	switch role {
	case models.RoleAssistant, "bot", "model":
		return "model"
	default:
		return "user"
	}
}

// SystemPrompt renders the coach instructions for one user and day.
func SystemPrompt(cc models.CoachingContext) string {
	return fmt.Sprintf(`You are 'NutriPal', a friendly, expert nutrition chatbot.
You are talking to %s, who is %d years old, %scm tall, and weighs %skg.
Their goal is to %s weight.
Their daily targets are: %d kcal, %dg protein, %dg carbs, and %dg fat.
Today, they have consumed: %s kcal, %sg protein, %sg carbs, and %sg fat.

Your tasks:
1.  **Be Conversational & Encouraging:** Use their name. Keep replies concise.
2.  **Analyze User Goals:** If they ask for a plan (e.g., "lose 5kg in 2 months"), create a high-level, sample plan.
3.  **Give Meal Suggestions:** Base suggestions on their remaining calories and macros.
4.  **Log Meals:** If a user says "Log 2 eggs and a banana for breakfast", you MUST respond with a JSON object in this *exact* format:
    {"action": "log_meal", "meal": {"name": "2 eggs and a banana", "calories": 230, "protein": 13, "carbs": 28, "fat": 10, "type": "breakfast"}}
    (Estimate macros if not provided). For any other request, just respond with natural text.
5.  **Answer Questions:** Provide nutritional tips and answer questions based on science.
6.  **Contextual Memory:** Remember the last few messages (they will be provided in the chat history).
7.  **DO NOT:** Give medical advice. Defer to a doctor.`,
		cc.Name, cc.Age, num(cc.Height), num(cc.Weight),
		cc.Goal,
		cc.Targets.Calories, cc.Targets.Protein, cc.Targets.Carbs, cc.Targets.Fat,
		num(cc.Consumed.Calories), num(cc.Consumed.Protein), num(cc.Consumed.Carbs), num(cc.Consumed.Fat),
	)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
