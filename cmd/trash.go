package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/surveyloom-cli/internal/config"
)

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Manage answers excluded from every count",
}

var trashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trash answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if len(c.TrashList) == 0 {
			fmt.Println("(empty)")
			return nil
		}
		for _, t := range c.TrashList {
			fmt.Printf("- %s\n", t)
		}
		return nil
	},
}

var trashAddCmd = &cobra.Command{
	Use:   "add <answer...>",
	Short: "Add answers to the trash list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		n := c.AddTrash(args...)
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Added %d answers (%d in list)\n", n, len(c.TrashList))
		return nil
	},
}

var trashRemoveCmd = &cobra.Command{
	Use:   "remove <answer...>",
	Short: "Remove answers from the trash list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		n := c.RemoveTrash(args...)
		if n == 0 {
			return fmt.Errorf("none of %q is in the trash list", args)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Removed %d answers (%d in list)\n", n, len(c.TrashList))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trashCmd)
	trashCmd.AddCommand(trashListCmd, trashAddCmd, trashRemoveCmd)
}
