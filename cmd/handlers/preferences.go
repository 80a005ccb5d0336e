package handlers

import (
	"fmt"
	"os"
	"strings"
	"time"

	"newslistener/internal/core"
	"newslistener/internal/logger"

	"github.com/spf13/cobra"
)

// NewPreferencesCmd creates the user preference command
func NewPreferencesCmd() *cobra.Command {
	preferencesCmd := &cobra.Command{
		Use:   "preferences",
		Short: "Show and update your stored generation preferences",
	}

	preferencesCmd.AddCommand(newPreferencesShowCmd())
	preferencesCmd.AddCommand(newPreferencesSetCmd())

	return preferencesCmd
}

func newPreferencesShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show your stored preferences",
		Run: func(cmd *cobra.Command, args []string) {
			userID, _ := cmd.Flags().GetInt64("user")
			if err := runPreferencesShow(userID); err != nil {
				logger.Error("Failed to show preferences", err)
				os.Exit(1)
			}
		},
	}
	showCmd.Flags().Int64("user", 1, "User id")
	return showCmd
}

func newPreferencesSetCmd() *cobra.Command {
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Replace your stored preferences",
		Long: `Store default feeds, filters, language, and audio style. They apply when
generating with --prefs and fill in language and style whenever a request
leaves them out.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runPreferencesSet(cmd); err != nil {
				logger.Error("Failed to save preferences", err)
				os.Exit(1)
			}
		},
	}
	setCmd.Flags().Int64("user", 1, "User id")
	setCmd.Flags().StringSlice("feeds", nil, "RSS feed URLs to read from")
	setCmd.Flags().StringSlice("topics", nil, "Preferred topics")
	setCmd.Flags().StringSlice("keywords", nil, "Custom keywords")
	setCmd.Flags().StringSlice("exclude-keywords", nil, "Keywords that exclude an item")
	setCmd.Flags().StringSlice("exclude-domains", nil, "Source domains to exclude")
	setCmd.Flags().String("language", "", "Default script language")
	setCmd.Flags().String("style", "", "Default audio style")
	return setCmd
}

func runPreferencesShow(userID int64) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	prefs, err := st.GetUserPreference(userID)
	if err != nil {
		return err
	}
	if prefs == nil {
		fmt.Println("No stored preferences. Set them with: newslistener preferences set")
		return nil
	}

	fmt.Printf("⚙️  Preferences for user %d\n", userID)
	printList("feeds", prefs.IncludeSourceRSSURLs)
	printList("topics", prefs.PreferredTopics)
	printList("keywords", prefs.CustomKeywords)
	printList("exclude keywords", prefs.ExcludeKeywords)
	printList("exclude domains", prefs.ExcludeSourceDomains)
	if prefs.DefaultLanguage != "" {
		fmt.Printf("   language: %s\n", prefs.DefaultLanguage)
	}
	if prefs.DefaultAudioStyle != "" {
		fmt.Printf("   style: %s\n", prefs.DefaultAudioStyle)
	}
	fmt.Printf("   updated: %s\n", prefs.UpdatedAt.Format(time.DateTime))
	return nil
}

func printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("   %s: %s\n", label, strings.Join(items, ", "))
}

func runPreferencesSet(cmd *cobra.Command) error {
	userID, _ := cmd.Flags().GetInt64("user")

	prefs := &core.UserPreference{UserID: userID}
	prefs.IncludeSourceRSSURLs, _ = cmd.Flags().GetStringSlice("feeds")
	prefs.PreferredTopics, _ = cmd.Flags().GetStringSlice("topics")
	prefs.CustomKeywords, _ = cmd.Flags().GetStringSlice("keywords")
	prefs.ExcludeKeywords, _ = cmd.Flags().GetStringSlice("exclude-keywords")
	prefs.ExcludeSourceDomains, _ = cmd.Flags().GetStringSlice("exclude-domains")
	prefs.DefaultLanguage, _ = cmd.Flags().GetString("language")
	prefs.DefaultAudioStyle, _ = cmd.Flags().GetString("style")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.SaveUserPreference(prefs); err != nil {
		return err
	}
	fmt.Printf("✅ Preferences saved for user %d\n", userID)
	return nil
}
