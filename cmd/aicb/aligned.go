package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/export"
	"github.com/aicb-dev/aicb/internal/parse"
)

func alignedCmd() *cobra.Command {
	var foldLines int
	var outDir string

	cmd := &cobra.Command{
		Use:   "aligned <session.jsonl>",
		Short: "Render a Claude session as line-aligned JSON and plaintext documents",
		Long: `Produces two files next to each other, <stem>.aligned.json and
<stem>.aligned.txt, where line N of one always describes the same record
as line N of the other. Long outputs are folded to head and tail lines
around a "(N lines folded)" marker.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := parse.RawEntries(args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no entries in %s", args[0])
			}

			jsonDoc, textDoc := export.ExportAligned(entries, foldLines)

			dir := outDir
			if dir == "" {
				dir = filepath.Dir(args[0])
			}
			stem := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			jsonPath := filepath.Join(dir, stem+".aligned.json")
			textPath := filepath.Join(dir, stem+".aligned.txt")

			if err := os.WriteFile(jsonPath, []byte(jsonDoc), 0o644); err != nil {
				return err
			}
			if err := os.WriteFile(textPath, []byte(textDoc), 0o644); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Wrote %s and %s\n", jsonPath, textPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&foldLines, "fold-lines", export.DefaultFoldLines, "Fold strings longer than this many lines")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for output files (default: next to the session)")

	return cmd
}
