package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/config"
	"github.com/aicb-dev/aicb/internal/parse"
)

func projectsCmd() *cobra.Command {
	var forDir string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List Claude projects, most recently used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if forDir != "" {
				dir := parse.FindProjectForDir(cfg.ClaudeRoot, forDir)
				if dir == "" {
					return fmt.Errorf("no project covers %s", forDir)
				}
				fmt.Println(dir)
				return nil
			}

			projects, err := parse.ListProjects(cfg.ClaudeRoot)
			if err != nil {
				return err
			}
			for _, p := range projects {
				when := "-"
				if !p.LastModified.IsZero() {
					when = p.LastModified.Format("2006-01-02 15:04")
				}
				fmt.Printf("%s  [%d sessions]  %s\n", when, p.Sessions, p.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&forDir, "for", "", "Print the project directory covering this path")

	return cmd
}
