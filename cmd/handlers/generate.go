package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"newslistener/internal/core"
	"newslistener/internal/criteria"
	"newslistener/internal/logger"
	"newslistener/internal/podcast"

	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the podcast generation command
func NewGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a news podcast episode",
		Long: `Collect news for the given source, write a narration script, and
synthesize it into an MP3 episode.

Sources:
  --urls       narrate specific article URLs
  --category   use a predefined category by id
  --prefs      use your stored preferences
  --feeds      direct input: RSS feed URLs plus optional filters`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runGenerate(cmd); err != nil {
				logger.Error("Generation failed", err)
				os.Exit(1)
			}
		},
	}

	generateCmd.Flags().StringSlice("urls", nil, "Specific article URLs to narrate")
	generateCmd.Flags().Int64("category", 0, "Predefined category id")
	generateCmd.Flags().Bool("prefs", false, "Generate from stored preferences")
	generateCmd.Flags().StringSlice("feeds", nil, "RSS feed URLs (direct input)")
	generateCmd.Flags().StringSlice("topics", nil, "Topics to include")
	generateCmd.Flags().StringSlice("keywords", nil, "Keywords to include")
	generateCmd.Flags().StringSlice("exclude-keywords", nil, "Keywords that exclude an item")
	generateCmd.Flags().StringSlice("exclude-domains", nil, "Source domains to exclude")
	generateCmd.Flags().String("language", "", "Script language (en, es, fr)")
	generateCmd.Flags().String("style", "", "Audio style (standard, engaging_storyteller, ...)")
	generateCmd.Flags().Int64("user", 1, "User id")
	generateCmd.Flags().Bool("force", false, "Regenerate even when a cached episode exists")
	generateCmd.Flags().Bool("wait", true, "Poll until generation finishes")

	return generateCmd
}

func runGenerate(cmd *cobra.Command) error {
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	userID, _ := cmd.Flags().GetInt64("user")
	force, _ := cmd.Flags().GetBool("force")
	wait, _ := cmd.Flags().GetBool("wait")

	ctx := context.Background()
	svc, cleanup, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.RequestGeneration(ctx, userID, req, force)
	if err != nil {
		return err
	}

	if result.Cached {
		fmt.Println("✅ Served from cache")
		printEpisode(result.Episode)
		return nil
	}

	fmt.Printf("🎙️  Generation started (digest %d)\n", result.DigestID)
	if !wait {
		fmt.Println("Finishing in the background; check progress with:")
		fmt.Printf("  newslistener status %d\n", result.DigestID)
		return nil
	}
	return pollUntilDone(svc, result.DigestID)
}

// requestFromFlags maps generate's flags onto a generation request,
// inferring the source type from which source flag was used.
func requestFromFlags(cmd *cobra.Command) (criteria.Request, error) {
	urls, _ := cmd.Flags().GetStringSlice("urls")
	categoryID, _ := cmd.Flags().GetInt64("category")
	usePrefs, _ := cmd.Flags().GetBool("prefs")
	feedURLs, _ := cmd.Flags().GetStringSlice("feeds")

	req := criteria.Request{
		URLs:       urls,
		CategoryID: categoryID,
		RSSURLs:    feedURLs,
	}
	req.Topics, _ = cmd.Flags().GetStringSlice("topics")
	req.Keywords, _ = cmd.Flags().GetStringSlice("keywords")
	req.ExcludeKeywords, _ = cmd.Flags().GetStringSlice("exclude-keywords")
	req.ExcludeSourceDomains, _ = cmd.Flags().GetStringSlice("exclude-domains")
	req.Language, _ = cmd.Flags().GetString("language")
	req.AudioStyle, _ = cmd.Flags().GetString("style")

	switch {
	case len(urls) > 0:
		req.SourceType = core.SourceSpecificURLs
	case categoryID > 0:
		req.SourceType = core.SourcePredefinedCategory
	case usePrefs:
		req.SourceType = core.SourceUserPreferences
	case len(feedURLs) > 0:
		req.SourceType = core.SourceDirectInput
	default:
		return req, fmt.Errorf("choose a source: --urls, --category, --prefs, or --feeds")
	}
	return req, nil
}

// pollUntilDone watches the digest until it reaches a terminal state.
func pollUntilDone(svc *podcast.Service, digestID int64) error {
	var lastStatus core.DigestStatus
	for {
		info, err := svc.Status(digestID)
		if err != nil {
			return err
		}
		if info.Digest.Status != lastStatus {
			lastStatus = info.Digest.Status
			fmt.Printf("⏳ %s\n", lastStatus)
		}
		switch info.Digest.Status {
		case core.StatusCompleted:
			fmt.Println("✅ Episode ready")
			printEpisode(info.Episode)
			return nil
		case core.StatusFailed:
			return fmt.Errorf("generation failed: %s", info.Digest.ErrorMessage)
		}
		time.Sleep(2 * time.Second)
	}
}

func printEpisode(ep *core.Episode) {
	if ep == nil {
		return
	}
	fmt.Printf("🔊 Audio: %s\n", ep.AudioURL)
	fmt.Printf("📁 File: %s\n", ep.StoragePath)
	fmt.Printf("⏱️  Duration: %ds\n", ep.DurationSeconds)
	if ep.UserGivenName != "" {
		fmt.Printf("📛 Name: %s\n", ep.UserGivenName)
	}
}
