package main

import (
	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/config"
	"github.com/aicb-dev/aicb/internal/index"
	"github.com/aicb-dev/aicb/internal/open"
)

func openCmd() *cobra.Command {
	var hitSeq int

	cmd := &cobra.Command{
		Use:   "open <convKey>",
		Short: "Open the original conversation file in $EDITOR",
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

			return open.OpenConversation(db, args[0], hitSeq)
		},
	}

	cmd.Flags().IntVar(&hitSeq, "hit", -1, "Message sequence number to jump to")

	return cmd
}
