package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/navlens/nav-audit/internal/llm"
	"github.com/navlens/nav-audit/internal/llm/openai"
	"github.com/navlens/nav-audit/internal/pipeline"
)

// navaudit analyzes a single plain-text fund document and prints the
// resulting report as JSON. Nothing is persisted.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	if len(os.Args) < 2 {
		logger.Error("usage: navaudit <document.txt>")
		os.Exit(2)
	}
	path := os.Args[1]

	b, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read document", "path", path, "error", err)
		os.Exit(1)
	}

	var reasoner llm.Reasoner
	reasoningEnabled := os.Getenv("OPENAI_API_KEY") != ""
	if reasoningEnabled {
		reasoner = openai.NewClient(openai.Config{
			Model:             getenv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:            os.Getenv("OPENAI_API_KEY"),
			Temperature:       0.0,
			Timeout:           45 * time.Second,
			LenientStructured: true,
		}, logger)
	}

	processor := pipeline.NewProcessor(logger,
		pipeline.Config{ReasoningEnabled: reasoningEnabled},
		reasoner, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := processor.AnalyzeText(ctx, string(b), filepath.Base(path))
	if err != nil {
		logger.Error("analyze", "path", path, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("encode report", "error", err)
		os.Exit(1)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
