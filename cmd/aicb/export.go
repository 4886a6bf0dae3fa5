package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/export"
	"github.com/aicb-dev/aicb/internal/parse"
)

func exportCmd() *cobra.Command {
	var format string
	var srcFormat string
	var convID string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Export a conversation as text, markdown, or JSON",
		Long: `Renders one conversation from an export file or session directory.
When the source holds more than one conversation, pick one with --id;
otherwise the first (most recent) conversation is exported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			convs, err := parse.LoadConversations(args[0], parse.Format(srcFormat))
			if err != nil {
				return err
			}
			if len(convs) == 0 {
				return fmt.Errorf("no conversations in %s", args[0])
			}

			conv := convs[0]
			if convID != "" {
				conv = nil
				for _, c := range convs {
					if c.ID == convID {
						conv = c
						break
					}
				}
				if conv == nil {
					return fmt.Errorf("conversation %s not found in %s", convID, args[0])
				}
			}

			content, err := export.New(nil).Export(conv, f)
			if err != nil {
				return err
			}

			if outPath != "" {
				return os.WriteFile(outPath, []byte(content), 0o644)
			}
			fmt.Print(content)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Output format (text/markdown/json)")
	cmd.Flags().StringVar(&srcFormat, "source-format", "auto", "Source format (auto/chatgpt/claude/gemini)")
	cmd.Flags().StringVar(&convID, "id", "", "Conversation ID to export")
	cmd.Flags().StringVar(&outPath, "out", "", "Write to file instead of stdout")

	return cmd
}
