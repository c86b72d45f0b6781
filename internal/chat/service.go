package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"patta-backend/internal/applications"
	"patta-backend/internal/llm"
	"patta-backend/internal/shared/telemetry"
)

var (
	ErrEmptyQuestion = errors.New("question is required")
	ErrUnavailable   = errors.New("assistant unavailable")
)

// StatsProvider supplies registry counts for canned answers.
type StatsProvider interface {
	Stats(ctx context.Context) (applications.SummaryStats, error)
}

// Service answers portal questions: canned answers first, then the LLM.
type Service struct {
	Stats StatsProvider
	LLM   llm.Client
}

func NewService(stats StatsProvider, client llm.Client) *Service {
	return &Service{Stats: stats, LLM: client}
}

// Ask answers one question for a caller with the given role.
func (s *Service) Ask(ctx context.Context, role, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	stats, err := s.Stats.Stats(ctx)
	if err != nil {
		// canned matching still works without counts, just less useful
		telemetry.Warn("chat.stats_failed", map[string]any{"error": err.Error()})
		stats = applications.SummaryStats{}
	}

	if answer, ok := cannedAnswer(question, role, stats); ok {
		return answer, nil
	}

	if s.LLM == nil {
		return "", ErrUnavailable
	}
	answer, err := s.LLM.Answer(ctx, question)
	if err != nil {
		telemetry.Error("chat.llm_failed", map[string]any{"error": err.Error()})
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return answer, nil
}
