package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"ratio-quiz-service/internal/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"
)

// Gemini generates question batches via the Gemini REST API. Any failure
// along the way (transport, status, malformed payload, unusable questions)
// collapses to the canned fallback batch, so callers can treat this source
// as non-failing.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// GeminiOption customizes the client.
type GeminiOption func(*Gemini)

// WithModel overrides the model ID.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithBaseURL points the client at a different endpoint (used in tests).
func WithBaseURL(url string) GeminiOption {
	return func(g *Gemini) {
		if url != "" {
			g.baseURL = url
		}
	}
}

// WithHTTPClient overrides the HTTP client, including its timeout.
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(g *Gemini) {
		if client != nil {
			g.client = client
		}
	}
}

// NewGemini creates a Gemini-backed question source.
func NewGemini(apiKey string, opts ...GeminiOption) *Gemini {
	g := &Gemini{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string  `json:"responseMimeType"`
		Temperature      float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// rawQuestion mirrors the JSON shape the model is asked to produce.
type rawQuestion struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Type          string   `json:"type"`
}

type questionsPayload struct {
	Questions []rawQuestion `json:"questions"`
}

// Generate asks the model for count questions of the given mode and
// difficulty. It returns at least one question: on any failure the
// deterministic fallback is substituted instead of an error.
func (g *Gemini) Generate(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty, count int) ([]domain.Question, error) {
	if count <= 0 {
		count = 1
	}

	batch, err := g.generate(ctx, mode, difficulty, count)
	if err != nil || len(batch) == 0 {
		log.Printf("gemini generation failed, using fallback: %v", err)
		return []domain.Question{Fallback(mode)}, nil
	}
	return batch, nil
}

func (g *Gemini) generate(ctx context.Context, mode domain.Mode, difficulty domain.Difficulty, count int) ([]domain.Question, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(mode, difficulty, count)}}}},
	}
	reqBody.GenerationConfig.ResponseMimeType = "application/json"
	reqBody.GenerationConfig.Temperature = 0.8

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	log.Printf("gemini responded in %v (%d bytes)", time.Since(start), len(body))

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty gemini response")
	}

	var payload questionsPayload
	if err := json.Unmarshal([]byte(parsed.Candidates[0].Content.Parts[0].Text), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}

	stamp := time.Now().UnixMilli()
	questions := make([]domain.Question, 0, len(payload.Questions))
	for i, raw := range payload.Questions {
		question, err := g.buildQuestion(raw, mode)
		if err != nil {
			log.Printf("skipping malformed question: %v", err)
			continue
		}
		question.ID = fmt.Sprintf("%d-%d", stamp, i)
		questions = append(questions, question)
	}
	return questions, nil
}

// buildQuestion validates and normalizes a raw model question: options are
// deduplicated, the correct answer is guaranteed to be present, and the
// final list is shuffled so the answer position varies.
func (g *Gemini) buildQuestion(raw rawQuestion, mode domain.Mode) (domain.Question, error) {
	if raw.Text == "" || raw.CorrectAnswer == "" {
		return domain.Question{}, fmt.Errorf("missing text or answer")
	}

	options := dedupe(append(raw.Options, raw.CorrectAnswer))
	if len(options) < 2 {
		return domain.Question{}, fmt.Errorf("fewer than two distinct options")
	}
	g.shuffle(options)

	questionType := mode
	if mode == domain.ModeMixed {
		if t := domain.Mode(raw.Type); t.Valid() && t != domain.ModeMixed {
			questionType = t
		} else {
			questionType = domain.ModeWordProblem
		}
	}

	return domain.Question{
		Text:          raw.Text,
		Options:       options,
		CorrectAnswer: raw.CorrectAnswer,
		Explanation:   raw.Explanation,
		Type:          questionType,
	}, nil
}

// dedupe removes duplicate options preserving first-seen order.
func dedupe(options []string) []string {
	seen := make(map[string]struct{}, len(options))
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if opt == "" {
			continue
		}
		if _, ok := seen[opt]; ok {
			continue
		}
		seen[opt] = struct{}{}
		out = append(out, opt)
	}
	return out
}

// shuffle is an in-place Fisher-Yates shuffle. One Gemini instance serves
// concurrent fetches, so access to the shared rand.Rand is serialized.
func (g *Gemini) shuffle(options []string) {
	g.rndMu.Lock()
	defer g.rndMu.Unlock()
	for i := len(options) - 1; i > 0; i-- {
		j := g.rnd.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
