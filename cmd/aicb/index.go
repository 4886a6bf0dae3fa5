package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/config"
	"github.com/aicb-dev/aicb/internal/index"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Scan and index ChatGPT, Claude, and Gemini conversation logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Scanning roots...\n")
			fmt.Fprintf(os.Stderr, "  Claude:  %s\n", cfg.ClaudeRoot)
			fmt.Fprintf(os.Stderr, "  Gemini:  %s\n", cfg.GeminiRoot)
			if cfg.ChatGPTPath != "" {
				fmt.Fprintf(os.Stderr, "  ChatGPT: %s\n", cfg.ChatGPTPath)
			}

			stats, err := index.IndexAll(db, cfg.ClaudeRoot, cfg.GeminiRoot, cfg.ChatGPTPath)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}
