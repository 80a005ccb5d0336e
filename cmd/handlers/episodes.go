package handlers

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"newslistener/internal/logger"

	"github.com/spf13/cobra"
)

// NewEpisodesCmd creates the episode management command
func NewEpisodesCmd() *cobra.Command {
	episodesCmd := &cobra.Command{
		Use:   "episodes",
		Short: "List and manage generated episodes",
	}

	episodesCmd.AddCommand(newEpisodesListCmd())
	episodesCmd.AddCommand(newEpisodesRenameCmd())

	return episodesCmd
}

func newEpisodesListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your generated episodes, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			userID, _ := cmd.Flags().GetInt64("user")
			if err := runEpisodesList(userID); err != nil {
				logger.Error("Failed to list episodes", err)
				os.Exit(1)
			}
		},
	}
	listCmd.Flags().Int64("user", 1, "User id")
	return listCmd
}

func newEpisodesRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <episode-id> <name>",
		Short: "Give an episode a display name",
		Long:  `Set the user-facing name of an episode. The audio file, language, and style are untouched.`,
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if err := runEpisodesRename(args[0], strings.Join(args[1:], " ")); err != nil {
				logger.Error("Failed to rename episode", err)
				os.Exit(1)
			}
		},
	}
}

func runEpisodesList(userID int64) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	episodes, err := st.ListEpisodes(userID)
	if err != nil {
		return err
	}
	if len(episodes) == 0 {
		fmt.Println("No episodes yet. Generate one with: newslistener generate")
		return nil
	}

	fmt.Printf("🎧 %d episode(s)\n", len(episodes))
	for _, ep := range episodes {
		name := ep.UserGivenName
		if name == "" {
			name = fmt.Sprintf("digest %d", ep.DigestID)
		}
		fmt.Printf("  [%d] %s (%s/%s, %ds) %s\n",
			ep.ID, name, ep.Language, ep.AudioStyle, ep.DurationSeconds, ep.AudioURL)
	}
	return nil
}

func runEpisodesRename(idArg, name string) error {
	episodeID, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid episode id %q", idArg)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.RenameEpisode(episodeID, name); err != nil {
		return err
	}
	fmt.Printf("✅ Episode %d renamed to %q\n", episodeID, name)
	return nil
}
