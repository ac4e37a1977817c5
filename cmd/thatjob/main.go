// Package main provides the entry point for the ThatJob HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "thatjob",
	Short: "ThatJob HTTP API Server",
	Long:  "ThatJob extracts structured profiles from career materials, researches companies, scores job fit and generates tailored CVs and cover letters via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
