package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestResponseText(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		assert.Equal(t, "", responseText(nil))
	})

	t.Run("no candidates", func(t *testing.T) {
		assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))
	})

	t.Run("joins text parts and skips thoughts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "thinking...", Thought: true},
					{Text: `{"action":"add",`},
					{Text: `"item":"Apple","reply":"Done"}`},
				}},
			}},
		}
		assert.Equal(t, `{"action":"add","item":"Apple","reply":"Done"}`, responseText(resp))
	})
}

func TestActionResponseSchema(t *testing.T) {
	schema := ActionResponseSchema()

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"action", "item", "reply"}, schema.Required)
	require.Contains(t, schema.Properties, "action")
	assert.Equal(t, []string{"add", "remove", "show", "clear", "none"}, schema.Properties["action"].Enum)
}

func TestNewChatModel_RequiresAPIKey(t *testing.T) {
	_, err := NewChatModel(context.Background(), ChatConfig{}, nil)
	assert.Error(t, err)
}

func TestNewEmbedder_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbedder(context.Background(), "", "")
	assert.Error(t, err)
}

func TestNewLimiter(t *testing.T) {
	assert.Equal(t, 1, newLimiter(0.5).Burst())
	assert.Equal(t, 5, newLimiter(5).Burst())
	assert.True(t, newLimiter(0).Allow())
}
