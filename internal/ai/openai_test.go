package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalleni/support-desk/internal/config"
	"github.com/dalleni/support-desk/internal/domain"
)

const solutionJSON = `{
  "explanation": "Your iqama must be renewed by the employer.",
  "explanationAr": "يجب تجديد الإقامة عن طريق صاحب العمل.",
  "steps": [{"en": "Log in to Muqeem", "ar": "سجل الدخول إلى مقيم"}],
  "documents": [{"en": "Passport copy", "ar": "صورة الجواز"}],
  "officialLinks": [{"name": "Muqeem", "url": "https://muqeem.sa"}],
  "recommendation": "Contact your employer.",
  "recommendationAr": "تواصل مع صاحب العمل.",
  "canBeSolvedOnline": true,
  "requiresBranch": false
}`

func completionServer(t *testing.T, content string, captured *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": content}}},
			"usage":   map[string]int{"total_tokens": 42},
		})
	}))
}

func newTestGenerator(url string) *OpenAIGenerator {
	return NewOpenAIGenerator(config.OpenAIConfig{
		APIKey:    "test-key",
		BaseURL:   url + "/",
		Model:     "gpt-5",
		MaxTokens: 512,
	}, nil, nil)
}

func TestGenerateParsesSolution(t *testing.T) {
	var captured chatRequest
	srv := completionServer(t, solutionJSON, &captured)
	defer srv.Close()

	solution, err := newTestGenerator(srv.URL).Generate(context.Background(), Request{
		ServiceType:      domain.ServiceIqama,
		IssueDescription: "My iqama expired",
		Language:         LanguageEnglish,
	})
	require.NoError(t, err)

	assert.Equal(t, "Your iqama must be renewed by the employer.", solution.Explanation)
	require.Len(t, solution.Steps, 1)
	assert.Equal(t, "سجل الدخول إلى مقيم", solution.Steps[0].Ar)
	assert.Equal(t, "https://muqeem.sa", solution.OfficialLinks[0].URL)
	assert.True(t, solution.CanBeSolvedOnline)

	assert.Equal(t, "gpt-5", captured.Model)
	assert.Equal(t, "json_object", captured.ResponseFormat["type"])
	assert.Equal(t, 512, captured.MaxCompletionTokens)
	require.Len(t, captured.Messages, 2)
	assert.Contains(t, captured.Messages[0].Content, "Dalleni")
	assert.Contains(t, captured.Messages[1].Content, "Muqeem")
	assert.Contains(t, captured.Messages[1].Content, "My iqama expired")
}

func TestGenerateArabicPrompt(t *testing.T) {
	var captured chatRequest
	srv := completionServer(t, solutionJSON, &captured)
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), Request{
		ServiceType:      domain.ServiceBaladi,
		IssueDescription: "رخصة البلدية",
		Language:         LanguageArabic,
	})
	require.NoError(t, err)
	assert.Contains(t, captured.Messages[0].Content, "أنت دلني")
}

func TestGenerateStripsCodeFence(t *testing.T) {
	srv := completionServer(t, "```json\n"+solutionJSON+"\n```", nil)
	defer srv.Close()

	solution, err := newTestGenerator(srv.URL).Generate(context.Background(), Request{ServiceType: domain.ServiceOther})
	require.NoError(t, err)
	assert.NotEmpty(t, solution.ExplanationAr)
}

func TestGenerateRejectsMissingExplanation(t *testing.T) {
	srv := completionServer(t, `{"steps": []}`, nil)
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), Request{ServiceType: domain.ServiceOther})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGenerateRejectsNonJSON(t *testing.T) {
	srv := completionServer(t, "I cannot help with that.", nil)
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), Request{ServiceType: domain.ServiceOther})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), Request{ServiceType: domain.ServiceOther})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestGenerateHonorsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestGenerator(srv.URL).Generate(ctx, Request{ServiceType: domain.ServiceOther})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateWithoutKey(t *testing.T) {
	g := NewOpenAIGenerator(config.OpenAIConfig{}, nil, nil)
	_, err := g.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, LanguageEnglish, ParseLanguage("en", LanguageArabic))
	assert.Equal(t, LanguageArabic, ParseLanguage("fr", LanguageArabic))
	assert.Equal(t, LanguageEnglish, ParseLanguage("", LanguageEnglish))
}

func TestEveryServiceHasContext(t *testing.T) {
	for _, st := range domain.ServiceTypes {
		assert.Contains(t, serviceContext, st)
	}
}
