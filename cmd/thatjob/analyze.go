package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/philipposk/ThatJob/internal/analyze"
	"github.com/philipposk/ThatJob/internal/config"
	"github.com/philipposk/ThatJob/internal/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a job posting URL and print the structured posting as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.OpenAIKey == "" && cfg.GeminiKey == "" {
		return fmt.Errorf("at least one of OPENAI_API_KEY or GEMINI_API_KEY is required")
	}

	log := logger.New(os.Getenv("LOG_LEVEL"), true)
	ctx := context.Background()

	chain, err := newProviderChain(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer chain.Close()

	analyzer := analyze.New(chain, cfg.UseBrowser, log)
	posting, err := analyzer.FromURL(ctx, uuid.Nil, args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(posting)
}
