package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"ratio-quiz-service/internal/app"
	"ratio-quiz-service/internal/config"
	"ratio-quiz-service/internal/domain"
	"ratio-quiz-service/internal/feedback"
	"ratio-quiz-service/internal/generator"
	"ratio-quiz-service/internal/infra/memory"
	pgloader "ratio-quiz-service/internal/infra/postgres"
	redisstore "ratio-quiz-service/internal/infra/redis"
	transport "ratio-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var store app.HighScoreStore
	if redisClient != nil {
		store = redisstore.NewHighScoreStore(redisClient)
	} else {
		store = memory.NewHighScoreStore()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader generator.Loader = memory.NewStaticBank(sampleBank())
	if pool != nil {
		loader = pgloader.NewQuestionLoader(pool)
	}
	bankTTL := config.Duration(cfg.Quiz.BankTTL, 10*time.Minute)
	bank := generator.NewBank(loader, bankTTL)

	var source app.Source = bank
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		geminiTimeout := config.Duration(cfg.Gemini.Timeout, 60*time.Second)
		source = generator.NewGemini(apiKey,
			generator.WithModel(cfg.Gemini.Model),
			generator.WithHTTPClient(&http.Client{Timeout: geminiTimeout}),
		)
	} else {
		log.Printf("GEMINI_API_KEY not set, serving questions from the bank")
	}

	chime := feedback.NewChime()
	newGame := func() *app.Game {
		return app.NewGame(ctx, source, store, chime)
	}
	wsHandler := transport.NewWSHandler(newGame)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting ratio quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBank provides a minimal offline question bank; swap in the Postgres
// loader for production deployments.
func sampleBank() []memory.BankEntry {
	return []memory.BankEntry{
		{
			Question: domain.Question{
				ID:            "bank-1",
				Text:          "Simplify the ratio 12:18.",
				Options:       []string{"2:3", "3:2", "6:9", "4:6"},
				CorrectAnswer: "2:3",
				Explanation:   "Divide both terms by 6: 12/6 = 2, 18/6 = 3.",
				Type:          domain.ModeSimplify,
			},
			Difficulty: domain.DifficultyEasy,
		},
		{
			Question: domain.Question{
				ID:            "bank-2",
				Text:          "Find x: 5:x = 10:20.",
				Options:       []string{"10", "5", "15", "2"},
				CorrectAnswer: "10",
				Explanation:   "Cross-multiply: 10x = 100, so x = 10.",
				Type:          domain.ModeFindX,
			},
			Difficulty: domain.DifficultyEasy,
		},
		{
			Question: domain.Question{
				ID:            "bank-3",
				Text:          "A recipe uses flour and sugar in a 3:1 ratio. How much sugar goes with 9 cups of flour?",
				Options:       []string{"3 cups", "1 cup", "6 cups", "9 cups"},
				CorrectAnswer: "3 cups",
				Explanation:   "9 cups of flour is 3 parts, so 1 part of sugar is 3 cups.",
				Type:          domain.ModeWordProblem,
			},
			Difficulty: domain.DifficultyEasy,
		},
	}
}
