// ABOUTME: Root CLI command with global flags and logging setup
// ABOUTME: Hosts the retrieval tuning knobs shared by all subcommands
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool

	rankWindow          int
	confidenceThreshold float64
	pruningThreshold    float64
)

const banner = `
██████╗ ███████╗ ██████╗ █████╗ ██╗     ██╗
██╔══██╗██╔════╝██╔════╝██╔══██╗██║     ██║
██████╔╝█████╗  ██║     ███████║██║     ██║
██╔══██╗██╔══╝  ██║     ██╔══██║██║     ██║
██║  ██║███████╗╚██████╗██║  ██║███████╗███████╗
╚═╝  ╚═╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚══════╝╚══════╝`

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall",
		Short: "Conversational agent with confidence-gated long-term memory",
		Long: banner + `

Recall is a conversational agent whose long-term memory lives in an
Elasticsearch vector index. Before answering from memory it retrieves
candidates, prunes and summarizes them, and verifies with the language
model that they actually answer the question. Memory is only trusted
when both the similarity score and the relevance check pass.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed retrieval and reduction information")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.PersistentFlags().IntVar(&rankWindow, "rank-window", 10, "Nearest-neighbor candidates fetched before top-k selection")
	cmd.PersistentFlags().Float64Var(&confidenceThreshold, "confidence-threshold", 0.7, "Minimum similarity score to trust long-term memory")
	cmd.PersistentFlags().Float64Var(&pruningThreshold, "pruning-threshold", 0.3, "Per-sentence relevance threshold for context pruning (lower keeps more)")

	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
