// ABOUTME: One-shot question command showing the confidence trail
// ABOUTME: Decides between memory-grounded and plain model answers
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/membridge/recall/internal/models"
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question through the memory pipeline",
		Long: `Run one question through retrieval, reduction, and relevance
verification, then answer either from long-term memory or from the
model alone, printing which path was taken and why.`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	question := args[0]
	out := cmd.OutOrStdout()

	decision := a.engine.Decide(ctx, question, a.params())

	switch decision.Outcome {
	case models.OutcomeUseMemory:
		fmt.Fprintf(out, "[memory] max similarity %.4f\n\n", decision.MaxScore)
		answer, err := a.answerFromMemory(ctx, question, decision.Payload)
		if err != nil {
			return fmt.Errorf("answering from memory: %w", err)
		}
		fmt.Fprintln(out, answer)
	case models.OutcomeFallBack:
		fmt.Fprintf(out, "[fallback] %s\n\n", decision.Payload)
		answer, err := a.llm.Complete(ctx, question)
		if err != nil {
			return fmt.Errorf("answering without memory: %w", err)
		}
		fmt.Fprintln(out, answer)
	default:
		fmt.Fprintf(out, "[no memory] %s\n\n", decision.Payload)
		answer, err := a.llm.Complete(ctx, question)
		if err != nil {
			return fmt.Errorf("answering without memory: %w", err)
		}
		fmt.Fprintln(out, answer)
	}

	return nil
}
