package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipposk/ThatJob/internal/cache"
	"github.com/philipposk/ThatJob/internal/config"
	"github.com/philipposk/ThatJob/internal/logger"
	"github.com/philipposk/ThatJob/internal/research"
)

var researchCmd = &cobra.Command{
	Use:   "research <company>",
	Short: "Research a company and print its profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
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

	researcher := research.New(chain, cache.NewMemory(), research.DefaultTTL, log)
	company := researcher.Company(ctx, args[0])

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(company)
}
