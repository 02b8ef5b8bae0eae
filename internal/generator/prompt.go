package generator

import (
	"fmt"

	"ratio-quiz-service/internal/domain"
)

// buildPrompt constructs the per-mode generation prompt. The model is asked
// for strict JSON so the response can be unmarshaled directly.
func buildPrompt(mode domain.Mode, difficulty domain.Difficulty, count int) string {
	base := fmt.Sprintf(`You are a math teacher writing multiple-choice practice questions
about ratios and proportions for school students.
Write %d unique questions at %s difficulty.

Rules:
1. Every question has exactly 4 distinct options.
2. Wrong options must be plausible (e.g. the result of inverting the ratio
   or adding the terms instead of dividing).
3. Answer format should match the question (e.g. "2:3", "15", "40%%").
4. Respond with JSON only, shaped as:
   {"questions": [{"text": "...", "options": ["..."], "correctAnswer": "...",
   "explanation": "...", "type": "SIMPLIFY|FIND_X|WORD_PROBLEM"}]}
`, count, difficulty)

	switch mode {
	case domain.ModeSimplify:
		return base + `Topic: simplifying ratios. Example: "Simplify the ratio 12:18."`
	case domain.ModeFindX:
		return base + `Topic: finding the unknown term of a proportion. Example: "5:x = 10:20".`
	case domain.ModeWordProblem:
		return base + `Topic: everyday word problems involving ratios.`
	default:
		return base + `Mix the topics across the questions.`
	}
}
