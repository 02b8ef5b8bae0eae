package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"ratio-quiz-service/internal/domain"
)

// QuestionLoader reads the fallback question bank from Postgres. Options are
// stored as a JSONB array per row.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, text, options, correct_answer, explanation, mode
		   FROM questions
		  WHERE ($1 = 'MIXED' OR mode = $1) AND difficulty = $2`,
		string(mode), string(difficulty))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q       domain.Question
			rawOpts []byte
			qMode   string
		)
		if err := rows.Scan(&q.ID, &q.Text, &rawOpts, &q.CorrectAnswer, &q.Explanation, &qMode); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOpts, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		q.Type = domain.Mode(qMode)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}
