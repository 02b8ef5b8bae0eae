package app

import "ratio-quiz-service/internal/domain"

const (
	basePoints  = 10
	streakBonus = 2
)

// Score returns the points awarded for an answer given the streak measured
// before it: a miss is worth nothing, a hit is worth the base plus an
// escalating bonus for consecutive correct answers.
func Score(correct bool, streak int) int {
	if !correct {
		return 0
	}
	return basePoints + streakBonus*streak
}

// applyAnswer folds one answer outcome into the session stats and returns
// the points awarded. Any miss resets the streak to zero.
func applyAnswer(stats *domain.SessionStats, correct bool) int {
	points := Score(correct, stats.Streak)
	stats.Score += points
	if correct {
		stats.Streak++
		stats.CorrectAnswers++
	} else {
		stats.Streak = 0
	}
	stats.TotalQuestions++
	return points
}
