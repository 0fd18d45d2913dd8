package ai

import (
	"context"
	"errors"

	"github.com/dalleni/support-desk/internal/domain"
)

var (
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("ai generator not configured")
	// ErrInvalidResponse is returned when the model output cannot be used as a solution.
	ErrInvalidResponse = errors.New("invalid ai response")
)

// Language selects the prompt and reply language.
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// ParseLanguage falls back to def for anything other than "en" or "ar".
func ParseLanguage(raw string, def Language) Language {
	switch Language(raw) {
	case LanguageArabic, LanguageEnglish:
		return Language(raw)
	}
	if def == LanguageEnglish {
		return LanguageEnglish
	}
	return LanguageArabic
}

// Request describes a ticket to analyze.
type Request struct {
	ServiceType      domain.ServiceType
	IssueDescription string
	Language         Language
}

// Generator produces a bilingual solution for a ticket.
type Generator interface {
	Generate(ctx context.Context, req Request) (*domain.AISolution, error)
}
