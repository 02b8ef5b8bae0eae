package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ratio-quiz-service/internal/app"
	"ratio-quiz-service/internal/domain"
	"ratio-quiz-service/internal/feedback"
)

func TestWebSocketGameFlow(t *testing.T) {
	source := &instantSource{}
	newGame := func() *app.Game {
		return app.NewGame(context.Background(), source, nil, feedback.Nop{})
	}
	wsHandler := NewWSHandler(newGame)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot is the menu.
	update := readUntil(conn, t, "update", nil)
	if update["state"] != string(domain.StateMenu) {
		t.Fatalf("expected menu snapshot, got %v", update)
	}

	// Start a game and wait for the first question to land.
	writeMessage(conn, t, "start", map[string]any{
		"mode":       string(domain.ModeSimplify),
		"difficulty": string(domain.DifficultyEasy),
	})
	update = readUntil(conn, t, "update", func(payload map[string]any) bool {
		ready, _ := payload["ready"].(bool)
		return ready
	})
	question, ok := update["question"].(map[string]any)
	if !ok {
		t.Fatalf("expected question in ready update, got %v", update)
	}

	// Answer correctly.
	writeMessage(conn, t, "answer", map[string]any{
		"option": question["correctAnswer"],
	})
	result := readUntil(conn, t, "answerResult", nil)
	if correct, _ := result["correct"].(bool); !correct {
		t.Fatalf("expected correct answer, got %v", result)
	}
	if points, _ := result["points"].(float64); points != 10 {
		t.Fatalf("expected 10 points, got %v", result["points"])
	}

	// A duplicate submission is rejected with an error payload.
	writeMessage(conn, t, "answer", map[string]any{
		"option": question["correctAnswer"],
	})
	errPayload := readUntil(conn, t, "error", nil)
	if errPayload["message"] != domain.ErrAlreadyAnswered.Error() {
		t.Fatalf("expected duplicate-answer error, got %v", errPayload)
	}

	// Advance, then leave for the menu.
	writeMessage(conn, t, "next", nil)
	writeMessage(conn, t, "exit", nil)
	update = readUntil(conn, t, "update", func(payload map[string]any) bool {
		return payload["state"] == string(domain.StateMenu)
	})
	if ready, _ := update["ready"].(bool); ready {
		t.Fatalf("expected queue discarded on exit, got %v", update)
	}
}

func writeMessage(conn *websocket.Conn, t *testing.T, msgType string, payload map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// readUntil reads messages until one of msgType arrives whose payload
// satisfies accept (nil accepts anything).
func readUntil(conn *websocket.Conn, t *testing.T, msgType string, accept func(map[string]any) bool) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type != msgType {
			continue
		}
		if accept == nil || accept(msg.Payload) {
			return msg.Payload
		}
	}
}

// instantSource returns a fresh batch synchronously.
type instantSource struct{}

func (instantSource) Generate(_ context.Context, mode domain.Mode, _ domain.Difficulty, count int) ([]domain.Question, error) {
	batch := make([]domain.Question, count)
	for i := range batch {
		batch[i] = domain.Question{
			ID:            "q-" + string(rune('a'+i)),
			Text:          "Simplify the ratio 10:15.",
			Options:       []string{"2:3", "3:2", "1:2", "5:3"},
			CorrectAnswer: "2:3",
			Explanation:   "Divide both terms by 5.",
			Type:          mode,
		}
	}
	return batch, nil
}
