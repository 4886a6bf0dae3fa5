package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aicb-dev/aicb/internal/parse"
	"github.com/aicb-dev/aicb/internal/tree"
)

func treeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Organize conversations into folders",
		Long: `Manages the folder organization stored in a sidecar file next to the
conversation source. The source data itself is never modified.`,
	}

	cmd.AddCommand(treeLsCmd())
	cmd.AddCommand(treeMkdirCmd())
	cmd.AddCommand(treeMvCmd())
	cmd.AddCommand(treeRmCmd())
	cmd.AddCommand(treeRenameCmd())
	cmd.AddCommand(treeUpCmd())
	cmd.AddCommand(treeDownCmd())
	cmd.AddCommand(treeResetOrderCmd())

	return cmd
}

func treeLsCmd() *cobra.Command {
	var format string
	var byName bool

	cmd := &cobra.Command{
		Use:   "ls <path>",
		Short: "Show the folder tree with node IDs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			convs, err := parse.LoadConversations(args[0], parse.Format(format))
			if err != nil {
				return err
			}

			t := tree.Load(args[0])
			for _, item := range t.Items(convs, !byName, true) {
				if item.Node.IsFolder {
					fmt.Printf("%s%s/  (%s)\n", indent(item.Depth), item.Node.Name, item.Node.ID)
				} else {
					fmt.Printf("%s%s  (%s)\n", indent(item.Depth), item.Node.Name, item.Node.ID)
				}
			}
			return t.Save()
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "Source format (auto/chatgpt/claude/gemini)")
	cmd.Flags().BoolVar(&byName, "by-name", false, "Sort conversations by title instead of date")

	return cmd
}

func treeMkdirCmd() *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "mkdir <path> <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := tree.Load(args[0])
			id := t.CreateFolder(args[1], parentID)
			if err := t.Save(); err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "Parent folder ID (default: root)")

	return cmd
}

func treeMvCmd() *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "mv <path> <nodeID>",
		Short: "Move a node into a folder (or to the root)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := tree.Load(args[0])
			if err := t.MoveNode(args[1], parentID); err != nil {
				return err
			}
			return t.Save()
		},
	}

	cmd.Flags().StringVar(&parentID, "into", "", "Destination folder ID (default: root)")

	return cmd
}

func treeRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path> <nodeID>",
		Short: "Remove a node and its subtree from the organization",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := tree.Load(args[0])
			t.DeleteNode(args[1])
			return t.Save()
		},
	}
}

func treeRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> <nodeID> <name>",
		Short: "Rename a folder or conversation node",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := tree.Load(args[0])
			if t.Node(args[1]) == nil {
				return fmt.Errorf("node not found: %s", args[1])
			}
			t.RenameNode(args[1], args[2])
			return t.Save()
		},
	}
}

func treeUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up <path> <nodeID>",
		Short: "Move an item up within its parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := tree.Load(args[0])
			if !t.MoveItemUp(args[1]) {
				fmt.Println("(already at top)")
				return nil
			}
			return t.Save()
		},
	}
}

func treeDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down <path> <nodeID>",
		Short: "Move an item down within its parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := tree.Load(args[0])
			if !t.MoveItemDown(args[1]) {
				fmt.Println("(already at bottom)")
				return nil
			}
			return t.Save()
		},
	}
}

func treeResetOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-order <path>",
		Short: "Discard manual ordering, restoring automatic sort",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := tree.Load(args[0])
			t.ClearCustomOrder()
			return t.Save()
		},
	}
}
