package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"quizclash/internal/config"
	"quizclash/internal/model"
)

// SupplierService fetches question batches from an OpenAI-compatible
// chat-completions API. Groq is tried first, OpenAI is the fallback.
type SupplierService struct {
	config config.SupplierConfig
	client *http.Client
}

// NewSupplierService creates a new supplier service
func NewSupplierService(cfg config.SupplierConfig) *SupplierService {
	return &SupplierService{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// IsEnabled returns true if at least one upstream is configured
func (s *SupplierService) IsEnabled() bool {
	return s.config.IsEnabled()
}

// Generate returns exactly count unique questions for the topic, or an
// error. Duplicates (by normalized prompt text) are dropped before
// truncation; a post-dedup shortfall fails the whole request.
func (s *SupplierService) Generate(ctx context.Context, topic, difficulty string, count int) ([]model.Question, error) {
	if !s.config.IsEnabled() {
		return nil, ErrSupplierUnavailable
	}
	if difficulty == "" {
		difficulty = "medium"
	}

	prompt := buildPrompt(topic, difficulty, count)

	var raw []model.IncomingQuestion
	if s.config.GroqAPIKey != "" {
		raw = s.callAPI(ctx, s.config.GroqURL, s.config.GroqModel, s.config.GroqAPIKey, prompt)
	}
	if len(raw) == 0 && s.config.OpenAIAPIKey != "" {
		raw = s.callAPI(ctx, s.config.OpenAIURL, s.config.OpenAIModel, s.config.OpenAIAPIKey, prompt)
	}
	if len(raw) == 0 {
		return nil, ErrSupplierNoQuestions
	}

	seen := make(map[string]bool)
	var unique []model.Question
	for _, in := range raw {
		q := in.Normalize()
		key := q.NormalizedText()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, q)
	}

	if len(unique) < count {
		return nil, ErrSupplierShortfall
	}
	return unique[:count], nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// callAPI performs one upstream request and returns the parsed questions,
// or nil so the fallback chain can continue
func (s *SupplierService) callAPI(ctx context.Context, url, apiModel, apiKey, prompt string) []model.IncomingQuestion {
	reqBody := chatRequest{
		Model: apiModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an expert at writing educational and entertaining trivia questions. Always answer with valid JSON."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   2000,
		Temperature: 0.7,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("Warning: supplier call to %s failed: %v", url, err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		log.Printf("Warning: supplier call to %s returned status %d", url, resp.StatusCode)
		return nil
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil || len(chat.Choices) == 0 {
		return nil
	}

	payload := extractJSON(chat.Choices[0].Message.Content)
	if payload == "" {
		return nil
	}

	var parsed struct {
		Questions []model.IncomingQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil
	}
	return parsed.Questions
}

// extractJSON strips markdown fences and trailing prose around the JSON
// object models tend to emit
func extractJSON(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if !strings.HasPrefix(cleaned, "{") || !strings.HasSuffix(cleaned, "}") {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start == -1 || end <= start {
			return ""
		}
		cleaned = cleaned[start : end+1]
	}

	if !json.Valid([]byte(cleaned)) {
		return ""
	}
	return cleaned
}

func buildPrompt(topic, difficulty string, count int) string {
	return fmt.Sprintf(`Generate %d trivia questions about "%s" with %s difficulty.

Required format (valid JSON):
{
  "questions": [
    {
      "text": "Question here",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswerIndex": 0,
      "category": "%s",
      "difficulty": "%s",
      "explanation": "Explanation of the correct answer"
    }
  ]
}

Requirements:
- Interesting and educational questions
- 4 answer options
- A clear explanation of the correct answer
- Difficulty appropriate for the %s level
- Topic: %s

Answer with the JSON only, no additional text.`, count, topic, difficulty, topic, difficulty, difficulty, topic)
}
