package domain

// Mode selects the kind of ratio question the batch source produces.
type Mode string

const (
	ModeSimplify    Mode = "SIMPLIFY"
	ModeFindX       Mode = "FIND_X"
	ModeWordProblem Mode = "WORD_PROBLEM"
	// ModeMixed resolves per generated question to one of the other three.
	ModeMixed Mode = "MIXED"
)

// Valid reports whether m is one of the closed set of modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeSimplify, ModeFindX, ModeWordProblem, ModeMixed:
		return true
	}
	return false
}

// Difficulty is passed through to the batch source unchanged.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Valid reports whether d is one of the closed set of difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is an immutable multiple-choice question. The batch source
// guarantees CorrectAnswer is one of Options and Options has no duplicates.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Type          Mode     `json:"type"`
}

// SessionStats aggregates one playthrough. All fields reset to zero on
// game start; the persisted high score lives outside the session.
type SessionStats struct {
	Score          int `json:"score"`
	Streak         int `json:"streak"`
	CorrectAnswers int `json:"correctAnswers"`
	TotalQuestions int `json:"totalQuestions"`
}

// GameState is the session state machine's mode.
type GameState string

const (
	StateMenu    GameState = "MENU"
	StatePlaying GameState = "PLAYING"
)

// GameUpdate is a snapshot pushed to subscribers whenever the session
// changes: state transitions, queue growth, answers, advances.
type GameUpdate struct {
	State     GameState    `json:"state"`
	Ready     bool         `json:"ready"`
	Question  *Question    `json:"question,omitempty"`
	Stats     SessionStats `json:"stats"`
	HighScore int          `json:"highScore"`
}

// AnswerResult summarizes the outcome of a single submission.
type AnswerResult struct {
	Correct     bool         `json:"correct"`
	Explanation string       `json:"explanation"`
	Points      int          `json:"points"`
	Stats       SessionStats `json:"stats"`
	HighScore   int          `json:"highScore"`
}
