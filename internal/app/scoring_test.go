package app_test

import (
	"testing"

	"ratio-quiz-service/internal/app"
)

func TestScoreMiss(t *testing.T) {
	for _, streak := range []int{0, 1, 5, 100} {
		if got := app.Score(false, streak); got != 0 {
			t.Fatalf("expected 0 points for a miss at streak %d, got %d", streak, got)
		}
	}
}

func TestScoreStreakBonus(t *testing.T) {
	cases := map[int]int{0: 10, 1: 12, 3: 16, 10: 30}
	for streak, want := range cases {
		if got := app.Score(true, streak); got != want {
			t.Fatalf("expected %d points at streak %d, got %d", want, streak, got)
		}
	}
}

// A flawless run of n answers is worth 10n + n(n-1).
func TestScoreClosedForm(t *testing.T) {
	for n := 1; n <= 20; n++ {
		total := 0
		for i := 0; i < n; i++ {
			total += app.Score(true, i)
		}
		if want := 10*n + n*(n-1); total != want {
			t.Fatalf("expected %d total after %d correct answers, got %d", want, n, total)
		}
	}
}
