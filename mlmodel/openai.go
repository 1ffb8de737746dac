package mlmodel

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"go-hazardwatch/types"
)

const openaiSystemPrompt = "You are a hazard report classifier. Given a citizen " +
	"report, respond with a single JSON object of the form " +
	`{"predictedLabel": string, "confidence": number between 0 and 1, "isHazard": boolean}` +
	" where predictedLabel is one of: Cyclone, Earthquake, Flood, Wildfire, Other."

// OpenAIClassifier is the text-only classifier backend, selected explicitly
// with CLASSIFIER_BACKEND=openai. It ignores any attached image and labels
// the report from its text fields alone. Same degraded-mode contract as the
// hazard model backend.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

func NewOpenAIClassifier(apiKey string) *OpenAIClassifier {
	return &OpenAIClassifier{
		client: openai.NewClient(apiKey),
		model:  openai.GPT3Dot5Turbo,
	}
}

func (o *OpenAIClassifier) Classify(ctx context.Context, input Input) *types.Classification {
	prompt := "Classify the following hazard report.\nTitle: " + input.Title +
		"\nType: " + input.Type +
		"\nDescription: " + input.Description +
		"\nLocation: " + input.Location

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: openaiSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: 100,
	})
	if err != nil {
		log.Printf("openai classifier unavailable: %v", err)
		return Unavailable()
	}
	if len(resp.Choices) == 0 {
		log.Printf("openai classifier returned no choices")
		return Unavailable()
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	// Models occasionally wrap the JSON in a code fence.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw rawResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		log.Printf("openai classifier returned unparseable content: %v", err)
		return Unavailable()
	}
	return raw.normalize()
}
