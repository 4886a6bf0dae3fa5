package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/config"
	"github.com/aicb-dev/aicb/internal/index"
	"github.com/aicb-dev/aicb/internal/render"
)

func previewCmd() *cobra.Command {
	var hitSeq int
	var context int
	var query string

	cmd := &cobra.Command{
		Use:   "preview <convKey>",
		Short: "Preview a conversation with context around a hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			out, _, err := render.RenderConversation(db, args[0], render.Options{
				HitSeq:  hitSeq,
				Context: context,
				Query:   query,
			})
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hitSeq, "hit", -1, "Message sequence number to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")

	return cmd
}
