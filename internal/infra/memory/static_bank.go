package memory

import (
	"context"

	"ratio-quiz-service/internal/domain"
)

// BankEntry pairs a question with the difficulty it is banked under.
type BankEntry struct {
	Question   domain.Question
	Difficulty domain.Difficulty
}

// StaticBank is a generator.Loader backed by an in-memory slice, useful for
// tests and deployments without Postgres.
type StaticBank struct {
	entries []BankEntry
}

func NewStaticBank(entries []BankEntry) *StaticBank {
	return &StaticBank{entries: entries}
}

func (b *StaticBank) LoadQuestions(_ context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error) {
	var out []domain.Question
	for _, entry := range b.entries {
		if mode != domain.ModeMixed && entry.Question.Type != mode {
			continue
		}
		if entry.Difficulty != difficulty {
			continue
		}
		out = append(out, entry.Question)
	}
	return out, nil
}
