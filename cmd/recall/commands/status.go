// ABOUTME: Status command showing configuration and memory connectivity
// ABOUTME: Works without an OpenAI key so it can diagnose partial setups
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/membridge/recall/internal/config"
	"github.com/membridge/recall/internal/session"
	"github.com/membridge/recall/internal/store"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration and long-term memory status",
		RunE:  runStatus,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Chat model:       %s\n", cfg.ChatModel)
	fmt.Fprintf(out, "Embedding model:  %s (%d dimensions)\n", cfg.EmbeddingModel, cfg.EmbeddingDimension())
	fmt.Fprintf(out, "Session store:    %s\n", cfg.SessionDBPath)

	if sessions, err := session.Open(cfg.SessionDBPath); err == nil {
		if threads, err := sessions.Threads(ctx); err == nil {
			fmt.Fprintf(out, "Stored threads:   %d\n", len(threads))
		}
		sessions.Close()
	}

	if cfg.RerankerURL != "" {
		fmt.Fprintf(out, "Context pruning:  %s (%s)\n", cfg.RerankerURL, cfg.RerankerModel)
	} else {
		fmt.Fprintln(out, "Context pruning:  disabled")
	}

	if !cfg.HasElastic() {
		fmt.Fprintln(out, "Long-term memory: not configured")
		return nil
	}

	st, err := store.New(store.Config{
		URL:       cfg.ElasticURL,
		APIKey:    cfg.ElasticAPIKey,
		Index:     cfg.IndexName(),
		Dimension: cfg.EmbeddingDimension(),
	})
	if err != nil {
		return fmt.Errorf("creating elasticsearch gateway: %w", err)
	}

	if err := st.Ping(ctx); err != nil {
		fmt.Fprintf(out, "Long-term memory: unreachable (%v)\n", err)
		return nil
	}

	exists, err := st.IndexExists(ctx)
	if err != nil {
		return fmt.Errorf("checking memory index: %w", err)
	}
	if !exists {
		fmt.Fprintf(out, "Long-term memory: connected, index %s not created yet\n", cfg.IndexName())
		return nil
	}

	count, err := st.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting memory records: %w", err)
	}
	fmt.Fprintf(out, "Long-term memory: %d record(s) in %s\n", count, cfg.IndexName())
	return nil
}
