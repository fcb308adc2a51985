// ABOUTME: Index command to push a stored session thread into memory
// ABOUTME: Supports summarized and per-message indexing modes
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/membridge/recall/internal/models"
)

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	var perMessage bool

	cmd := &cobra.Command{
		Use:   "index [thread-id]",
		Short: "Index a stored session thread into long-term memory",
		Long: `Load the messages checkpointed for a session thread and write
them to the memory index, either as one session summary (default) or
as one record per message. Records already present are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0], perMessage)
		},
	}

	cmd.Flags().BoolVar(&perMessage, "per-message", false, "Index every message instead of a session summary")

	return cmd
}

func runIndex(cmd *cobra.Command, threadID string, perMessage bool) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.writer == nil {
		return fmt.Errorf("long-term memory is not configured (set ELASTICSEARCH_URL and ELASTICSEARCH_API_KEY)")
	}

	ctx := cmd.Context()
	if err := a.ensureIndex(ctx); err != nil {
		return fmt.Errorf("ensuring memory index: %w", err)
	}

	msgs, err := a.sessions.Messages(ctx, threadID)
	if err != nil {
		return fmt.Errorf("loading thread %q: %w", threadID, err)
	}
	if len(msgs) == 0 {
		return fmt.Errorf("no messages stored for thread %q", threadID)
	}

	mode := models.IndexSummarized
	if perMessage {
		mode = models.IndexPerMessage
	}

	stats, err := a.writer.Index(ctx, msgs, threadID, mode)
	if err != nil {
		return fmt.Errorf("indexing thread %q: %w", threadID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d record(s), skipped %d duplicate(s), %d error(s).\n",
		stats.Indexed, stats.Skipped, stats.Errors)
	return nil
}
