package handlers

import (
	"fmt"
	"os"
	"strconv"

	"newslistener/internal/core"
	"newslistener/internal/logger"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the digest status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <digest-id>",
		Short: "Show the status of a generation request",
		Long:  `Display the pipeline state of a digest, a script excerpt once one exists, and the episode once audio is ready.`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := runStatus(args[0]); err != nil {
				logger.Error("Failed to get status", err)
				os.Exit(1)
			}
		},
	}
}

func runStatus(arg string) error {
	digestID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid digest id %q", arg)
	}

	svc, cleanup, err := statusService()
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := svc.Status(digestID)
	if err != nil {
		return err
	}

	fmt.Printf("📋 Digest %d\n", info.Digest.ID)
	fmt.Printf("   Status: %s\n", info.Digest.Status)
	fmt.Printf("   Created: %s\n", info.Digest.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("   Updated: %s\n", info.Digest.UpdatedAt.Format("2006-01-02 15:04:05"))
	if info.Digest.Status == core.StatusFailed {
		fmt.Printf("   Error: %s\n", info.Digest.ErrorMessage)
	}
	if info.ScriptPreview != "" {
		fmt.Printf("   Script: %s\n", info.ScriptPreview)
	}
	printEpisode(info.Episode)
	return nil
}
