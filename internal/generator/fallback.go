package generator

import "ratio-quiz-service/internal/domain"

// Fallback returns the canned question substituted when generation fails.
// It is deterministic so the degraded path stays predictable; the requested
// mode is ignored because only a known-good simplify question qualifies.
func Fallback(_ domain.Mode) domain.Question {
	return domain.Question{
		ID:            "fallback-1",
		Text:          "Simplify the ratio 10:15.",
		Options:       []string{"2:3", "3:2", "1:2", "5:3"},
		CorrectAnswer: "2:3",
		Explanation:   "Divide both terms by 5: 10/5 = 2, 15/5 = 3, so the answer is 2:3.",
		Type:          domain.ModeSimplify,
	}
}
