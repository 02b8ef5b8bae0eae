package generator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ratio-quiz-service/internal/domain"
)

func TestBankCachesLoadedQuestions(t *testing.T) {
	loader := &countingLoader{questions: bankQuestions(5)}
	bank := NewBank(loader, time.Minute)

	batch, err := bank.Generate(context.Background(), domain.ModeSimplify, domain.DifficultyEasy, 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(batch))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := bank.Generate(context.Background(), domain.ModeSimplify, domain.DifficultyEasy, 3); err != nil {
		t.Fatalf("generate 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	// A different mode/difficulty key loads separately.
	if _, err := bank.Generate(context.Background(), domain.ModeMixed, domain.DifficultyEasy, 3); err != nil {
		t.Fatalf("generate 3: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected separate load per key, got %d", loader.calls)
	}
}

func TestBankShortBatchWhenBankIsSmall(t *testing.T) {
	loader := &countingLoader{questions: bankQuestions(2)}
	bank := NewBank(loader, time.Minute)

	batch, err := bank.Generate(context.Background(), domain.ModeSimplify, domain.DifficultyEasy, 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected the whole small bank, got %d", len(batch))
	}
}

func TestBankNormalizesMalformedRows(t *testing.T) {
	loader := &countingLoader{questions: []domain.Question{
		{
			ID:            "dup-1",
			Text:          "Simplify the ratio 2:4.",
			Options:       []string{"1:2", "1:2", "2:1"},
			CorrectAnswer: "1:3",
			Type:          domain.ModeSimplify,
		},
		{
			// Unrepairable: a single distinct option.
			ID:            "thin-1",
			Text:          "Simplify the ratio 3:3.",
			Options:       []string{"1:1", "1:1"},
			CorrectAnswer: "1:1",
			Type:          domain.ModeSimplify,
		},
	}}
	bank := NewBank(loader, time.Minute)

	batch, err := bank.Generate(context.Background(), domain.ModeSimplify, domain.DifficultyEasy, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(batch) != 1 || batch[0].ID != "dup-1" {
		t.Fatalf("expected only the repairable row, got %+v", batch)
	}
	assertWellFormed(t, batch[0])
	if len(batch[0].Options) != 3 {
		t.Fatalf("expected deduped options with the answer injected, got %v", batch[0].Options)
	}
}

func TestBankFallsBackWhenEmpty(t *testing.T) {
	loader := &countingLoader{}
	bank := NewBank(loader, time.Minute)

	batch, err := bank.Generate(context.Background(), domain.ModeSimplify, domain.DifficultyEasy, 3)
	if err != nil {
		t.Fatalf("expected fallback instead of error, got %v", err)
	}
	if len(batch) != 1 || batch[0].ID != "fallback-1" {
		t.Fatalf("expected the fallback question, got %+v", batch)
	}
}

type countingLoader struct {
	questions []domain.Question
	calls     int
}

func (l *countingLoader) LoadQuestions(context.Context, domain.Mode, domain.Difficulty) ([]domain.Question, error) {
	l.calls++
	return l.questions, nil
}

func bankQuestions(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			ID:            fmt.Sprintf("bank-%d", i),
			Text:          "Simplify the ratio 10:15.",
			Options:       []string{"2:3", "3:2", "1:2", "5:3"},
			CorrectAnswer: "2:3",
			Type:          domain.ModeSimplify,
		}
	}
	return questions
}
