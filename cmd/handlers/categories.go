package handlers

import (
	"fmt"
	"os"
	"strings"

	"newslistener/internal/logger"

	"github.com/spf13/cobra"
)

// NewCategoriesCmd creates the predefined category command
func NewCategoriesCmd() *cobra.Command {
	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "Browse predefined news categories",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List predefined categories usable with generate --category",
		Run: func(cmd *cobra.Command, args []string) {
			all, _ := cmd.Flags().GetBool("all")
			if err := runCategoriesList(all); err != nil {
				logger.Error("Failed to list categories", err)
				os.Exit(1)
			}
		},
	}
	listCmd.Flags().Bool("all", false, "Include inactive categories")
	categoriesCmd.AddCommand(listCmd)

	return categoriesCmd
}

func runCategoriesList(all bool) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	cats, err := st.ListPredefinedCategories(!all)
	if err != nil {
		return err
	}

	fmt.Printf("📚 %d categor(ies)\n", len(cats))
	for _, c := range cats {
		active := ""
		if !c.IsActive {
			active = " (inactive)"
		}
		fmt.Printf("  [%d] %s%s\n", c.ID, c.Name, active)
		if c.Description != "" {
			fmt.Printf("      %s\n", c.Description)
		}
		fmt.Printf("      feeds: %s\n", strings.Join(c.RSSURLs, ", "))
		if c.Language != "" {
			fmt.Printf("      language: %s\n", c.Language)
		}
	}
	return nil
}
