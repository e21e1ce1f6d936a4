package exampledb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// LLM asks an OpenAI chat model to write example sentences. It is the last
// resort for words the scraped sites know nothing about.
type LLM struct {
	apiKey string
	model  string
	count  int
	client *openai.Client
}

// NewLLM creates an LLM source writing count sentences per word
func NewLLM(apiKey, model string, count int) *LLM {
	return NewLLMWithBaseURL(apiKey, "", model, count)
}

// NewLLMWithBaseURL creates an LLM source talking to an OpenAI compatible
// API at baseURL. An empty baseURL means the OpenAI API.
func NewLLMWithBaseURL(apiKey, baseURL, model string, count int) *LLM {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if count <= 0 {
		count = 5
	}
	return &LLM{
		apiKey: apiKey,
		model:  model,
		count:  count,
		client: openai.NewClientWithConfig(config),
	}
}

// Sentences requests example sentences for word
func (l *LLM) Sentences(ctx context.Context, word string) ([]Pair, error) {
	if l.apiKey == "" {
		return nil, errors.New("OpenAI API key not found")
	}

	req := openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write short, natural example sentences in simplified Chinese for language learners.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(`Write %d different example sentences using the word '%s'.
Each sentence must contain '%s' literally.
Answer with one sentence per line, formatted as:
chinese sentence|english translation
Do not number the lines and do not add anything else.`, l.count, word, word),
			},
		},
		MaxTokens:   600,
		Temperature: 0.7,
	}

	resp, err := l.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no sentences returned")
	}

	return parseLLMLines(resp.Choices[0].Message.Content, word), nil
}

// parseLLMLines reads "chinese|english" lines, skipping lines that do not
// contain the word
func parseLLMLines(content, word string) []Pair {
	var pairs []Pair
	for _, line := range strings.Split(content, "\n") {
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		chinese := strings.TrimSpace(parts[0])
		english := strings.TrimSpace(parts[1])
		if chinese == "" || !strings.Contains(chinese, word) {
			continue
		}
		pairs = append(pairs, Pair{Chinese: chinese, English: english})
	}
	return pairs
}

// Name returns "openai"
func (l *LLM) Name() string {
	return "openai"
}
