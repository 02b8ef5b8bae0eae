package domain

import "errors"

var (
	// ErrNotPlaying is returned when a play action arrives while in the menu.
	ErrNotPlaying = errors.New("no game in progress")
	// ErrAlreadyPlaying is returned when a game is started twice.
	ErrAlreadyPlaying = errors.New("game already in progress")
	// ErrNoCurrentQuestion is returned when answering before a question is ready.
	ErrNoCurrentQuestion = errors.New("no question ready")
	// ErrAlreadyAnswered is returned on a duplicate submission for the same question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrInvalidMode indicates a mode outside the closed variant set.
	ErrInvalidMode = errors.New("invalid game mode")
	// ErrInvalidDifficulty indicates a difficulty outside the closed variant set.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrNoQuestions indicates the question bank has no entries for the request.
	ErrNoQuestions = errors.New("no questions available")
)
