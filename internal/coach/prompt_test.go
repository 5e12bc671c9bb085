package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutripal-backend/internal/models"
)

func TestBuildRequest_MapsRoles(t *testing.T) {
	history := []models.ChatMessage{
		{Role: "bot", Text: "Hi! I'm NutriPal."},
		{Role: models.RoleUser, Text: "what should I eat?"},
		{Role: models.RoleAssistant, Text: "Some oats."},
		{Role: models.RoleUser, Text: "thanks"},
	}

	req := BuildRequest(history, testContext(), 10)

	require.Len(t, req.Contents, 4)
	roles := make([]string, 0, len(req.Contents))
	for _, c := range req.Contents {
		roles = append(roles, c.Role)
	}
	assert.Equal(t, []string{"model", "user", "model", "user"}, roles)
	assert.Equal(t, "Some oats.", req.Contents[2].Parts[0].Text)
	require.NotNil(t, req.SystemInstruction)
	assert.Empty(t, req.SystemInstruction.Role)
}

func TestSystemPrompt_InterpolatesContext(t *testing.T) {
	cc := testContext()
	cc.Consumed.Protein = 70.5

	prompt := SystemPrompt(cc)

	assert.Contains(t, prompt, "You are talking to Mock User, who is 30 years old, 175cm tall, and weighs 70kg.")
	assert.Contains(t, prompt, "Their goal is to maintain weight.")
	assert.Contains(t, prompt, "Their daily targets are: 2500 kcal, 150g protein, 300g carbs, and 80g fat.")
	assert.Contains(t, prompt, "Today, they have consumed: 1100 kcal, 70.5g protein, 120g carbs, and 40g fat.")
	assert.Contains(t, prompt, `{"action": "log_meal"`)
}

func TestRecentHistory_NoLimit(t *testing.T) {
	history := make([]models.ChatMessage, 12)
	assert.Len(t, recentHistory(history, 0), 12)
}
