package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dalleni/support-desk/internal/domain"
)

// parseSolution decodes model output, tolerating a surrounding Markdown fence.
func parseSolution(content string) (*domain.AISolution, error) {
	cleaned := stripCodeFence(content)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}

	var solution domain.AISolution
	if err := json.Unmarshal([]byte(cleaned), &solution); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if strings.TrimSpace(solution.Explanation) == "" && strings.TrimSpace(solution.ExplanationAr) == "" {
		return nil, fmt.Errorf("%w: missing explanation", ErrInvalidResponse)
	}
	if solution.Steps == nil {
		solution.Steps = []domain.LocalizedText{}
	}
	if solution.Documents == nil {
		solution.Documents = []domain.LocalizedText{}
	}
	if solution.OfficialLinks == nil {
		solution.OfficialLinks = []domain.OfficialLink{}
	}
	return &solution, nil
}

func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
