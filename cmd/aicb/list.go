package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/parse"
	"github.com/aicb-dev/aicb/internal/tree"
)

func listCmd() *cobra.Command {
	var format string
	var byName bool
	var flat bool

	cmd := &cobra.Command{
		Use:   "list <path>",
		Short: "List conversations in an export file or session directory",
		Long: `Lists conversations from a ChatGPT export, a Claude project directory,
or a Gemini session root, organized by the folder tree stored alongside
the source. Use --flat to ignore the organization.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			convs, err := parse.LoadConversations(args[0], parse.Format(format))
			if err != nil {
				return err
			}

			if flat {
				for _, c := range convs {
					printConv(c, 0)
				}
				return nil
			}

			t := tree.Load(args[0])
			for _, item := range t.Items(convs, !byName, true) {
				if item.Node.IsFolder {
					marker := "▸"
					if item.Node.Expanded {
						marker = "▾"
					}
					fmt.Printf("%s%s %s/\n", indent(item.Depth), marker, item.Node.Name)
					continue
				}
				printConv(item.Conversation, item.Depth)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "Source format (auto/chatgpt/claude/gemini)")
	cmd.Flags().BoolVar(&byName, "by-name", false, "Sort conversations by title instead of date")
	cmd.Flags().BoolVar(&flat, "flat", false, "Ignore the folder organization")

	return cmd
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func printConv(c *parse.Conversation, depth int) {
	when := "-"
	if !c.CreateTime.IsZero() {
		when = c.CreateTime.Format("2006-01-02 15:04")
	}
	fmt.Printf("%s%s  %s  [%d msgs]  %s\n", indent(depth), when, c.Title, len(c.Messages), c.ID)
}
