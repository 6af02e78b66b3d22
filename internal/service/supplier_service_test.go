package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizclash/internal/config"
)

// fakeUpstream serves a chat-completions response whose message content is
// the given string
func fakeUpstream(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			t.Error("upstream call missing Authorization header")
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func questionsJSON(texts ...string) string {
	type q struct {
		Text               string   `json:"text"`
		Options            []string `json:"options"`
		CorrectAnswerIndex int      `json:"correctAnswerIndex"`
		Category           string   `json:"category"`
	}
	var qs []q
	for _, text := range texts {
		qs = append(qs, q{
			Text:               text,
			Options:            []string{"A", "B", "C", "D"},
			CorrectAnswerIndex: 0,
			Category:           "Science",
		})
	}
	payload, _ := json.Marshal(map[string]interface{}{"questions": qs})
	return string(payload)
}

func supplierConfig(groqURL, openAIURL string) config.SupplierConfig {
	cfg := config.SupplierConfig{
		GroqURL:     groqURL,
		OpenAIURL:   openAIURL,
		GroqModel:   "test-model",
		OpenAIModel: "test-model",
		Timeout:     2 * time.Second,
	}
	if groqURL != "" {
		cfg.GroqAPIKey = "groq-key"
	}
	if openAIURL != "" {
		cfg.OpenAIAPIKey = "openai-key"
	}
	return cfg
}

func TestSupplierGenerate(t *testing.T) {
	srv := fakeUpstream(t, questionsJSON("Q one?", "Q two?", "Q three?"), http.StatusOK)
	svc := NewSupplierService(supplierConfig(srv.URL, ""))

	questions, err := svc.Generate(context.Background(), "Science", "easy", 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}
	if questions[0].Text != "Q one?" {
		t.Errorf("questions[0].Text = %q", questions[0].Text)
	}
}

func TestSupplierGenerateStripsMarkdownFences(t *testing.T) {
	content := "```json\n" + questionsJSON("Fenced?") + "\n```"
	srv := fakeUpstream(t, content, http.StatusOK)
	svc := NewSupplierService(supplierConfig(srv.URL, ""))

	questions, err := svc.Generate(context.Background(), "Science", "easy", 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(questions) != 1 || questions[0].Text != "Fenced?" {
		t.Fatalf("got %+v, want the fenced question", questions)
	}
}

func TestSupplierGenerateDeduplicates(t *testing.T) {
	// Same prompt differing only in case and whitespace
	srv := fakeUpstream(t, questionsJSON("What is water?", "  what is WATER? ", "Unique?"), http.StatusOK)
	svc := NewSupplierService(supplierConfig(srv.URL, ""))

	questions, err := svc.Generate(context.Background(), "Science", "easy", 2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2 after dedup", len(questions))
	}
}

func TestSupplierGenerateShortfall(t *testing.T) {
	srv := fakeUpstream(t, questionsJSON("Only one?"), http.StatusOK)
	svc := NewSupplierService(supplierConfig(srv.URL, ""))

	if _, err := svc.Generate(context.Background(), "Science", "easy", 3); err != ErrSupplierShortfall {
		t.Errorf("err = %v, want ErrSupplierShortfall", err)
	}
}

func TestSupplierGenerateTruncatesOverSupply(t *testing.T) {
	srv := fakeUpstream(t, questionsJSON("One?", "Two?", "Three?", "Four?"), http.StatusOK)
	svc := NewSupplierService(supplierConfig(srv.URL, ""))

	questions, err := svc.Generate(context.Background(), "Science", "easy", 2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
}

func TestSupplierFallsBackToSecondUpstream(t *testing.T) {
	var groqCalls int
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		groqCalls++
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(broken.Close)

	working := fakeUpstream(t, questionsJSON("Fallback?"), http.StatusOK)
	svc := NewSupplierService(supplierConfig(broken.URL, working.URL))

	questions, err := svc.Generate(context.Background(), "Science", "easy", 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if groqCalls != 1 {
		t.Errorf("primary upstream called %d times, want 1", groqCalls)
	}
	if len(questions) != 1 || questions[0].Text != "Fallback?" {
		t.Fatalf("got %+v, want the fallback question", questions)
	}
}

func TestSupplierGenerateAllUpstreamsFail(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	svc := NewSupplierService(supplierConfig(broken.URL, broken.URL))
	if _, err := svc.Generate(context.Background(), "Science", "easy", 1); err != ErrSupplierNoQuestions {
		t.Errorf("err = %v, want ErrSupplierNoQuestions", err)
	}
}

func TestSupplierGenerateDisabled(t *testing.T) {
	svc := NewSupplierService(config.SupplierConfig{Timeout: time.Second})
	if _, err := svc.Generate(context.Background(), "Science", "easy", 1); err != ErrSupplierUnavailable {
		t.Errorf("err = %v, want ErrSupplierUnavailable", err)
	}
}

func TestExtractJSON(t *testing.T) {
	valid := `{"questions":[]}`
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", valid, valid},
		{"fenced", "```json\n" + valid + "\n```", valid},
		{"surrounding prose", fmt.Sprintf("Here you go:\n%s\nHope that helps!", valid), valid},
		{"no json", "sorry, I cannot help with that", ""},
		{"invalid json", `{"questions":`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.content); got != tt.want {
				t.Errorf("extractJSON = %q, want %q", got, tt.want)
			}
		})
	}
}
