package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"ratio-quiz-service/internal/app"
	"ratio-quiz-service/internal/domain"
)

// WSHandler exposes the game over a websocket. Each connection owns its own
// session; the client drives it with start/answer/next/exit commands and
// receives pushed game updates as the queue fills and state changes.
type WSHandler struct {
	newGame  func() *app.Game
	upgrader websocket.Upgrader
}

func NewWSHandler(newGame func() *app.Game) *WSHandler {
	return &WSHandler{
		newGame: newGame,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Mode       domain.Mode       `json:"mode"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type mutePayload struct {
	Muted bool `json:"muted"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs one game session over the socket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	game := h.newGame()
	// Discard any in-flight fetch once the client goes away.
	defer func() { _ = game.Exit() }()

	updates, cancel := game.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "update", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(game, inbound, send)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(game *app.Game, inbound inboundMessage, send chan<- outboundMessage[any]) {
	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid start payload")
			return
		}
		if err := game.Start(payload.Mode, payload.Difficulty); err != nil {
			send <- errorMessage(err.Error())
		}
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid answer payload")
			return
		}
		result, err := game.SubmitAnswer(payload.Option)
		if err != nil {
			send <- errorMessage(err.Error())
			return
		}
		send <- outboundMessage[any]{Type: "answerResult", Payload: result}
	case "next":
		if err := game.Next(); err != nil {
			send <- errorMessage(err.Error())
		}
	case "exit":
		if err := game.Exit(); err != nil {
			send <- errorMessage(err.Error())
		}
	case "stats":
		send <- outboundMessage[any]{Type: "stats", Payload: game.Stats()}
	case "mute":
		var payload mutePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid mute payload")
			return
		}
		game.SetMuted(payload.Muted)
	default:
		send <- errorMessage("unsupported message type")
	}
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
