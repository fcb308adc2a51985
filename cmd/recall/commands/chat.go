// ABOUTME: Interactive chat loop backed by the memory pipeline
// ABOUTME: Records the transcript and offers to index it on exit
package commands

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/membridge/recall/internal/models"
	"github.com/membridge/recall/internal/session"
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	var threadID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat session with long-term memory",
		Long: `Start an interactive session. Each question runs through the
memory pipeline first; the agent answers from stored conversations
when retrieval is confident, otherwise from the model alone. On exit
you can index the session into long-term memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, threadID)
		},
	}

	cmd.Flags().StringVar(&threadID, "thread", "", "Session thread identifier (default: generated)")

	return cmd
}

func runChat(cmd *cobra.Command, threadID string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if err := a.ensureIndex(ctx); err != nil {
		slog.Warn("could not ensure memory index", "error", err)
	}

	if threadID == "" {
		threadID = uuid.NewString()
	}
	transcript := session.NewTranscript(threadID)

	fmt.Fprintf(out, "Session %s\n", threadID)
	fmt.Fprintln(out, `Type "quit" to exit.`)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}

		m := transcript.Record(models.KindHuman, input)
		if err := a.sessions.Append(ctx, threadID, m); err != nil {
			slog.Warn("failed to checkpoint message", "id", m.ID, "error", err)
		}

		decision := a.engine.Decide(ctx, input, a.params())

		var answer string
		switch decision.Outcome {
		case models.OutcomeUseMemory:
			if verbose {
				fmt.Fprintf(out, "[memory %.4f]\n", decision.MaxScore)
			}
			answer, err = a.answerFromMemory(ctx, input, decision.Payload)
		default:
			if verbose {
				fmt.Fprintf(out, "[fallback] %s\n", decision.Payload)
			}
			answer, err = a.llm.Complete(ctx, input)
		}
		if err != nil {
			fmt.Fprintf(out, "Agent: sorry, something went wrong: %v\n", err)
			continue
		}

		fmt.Fprintf(out, "Agent: %s\n", answer)
		am := transcript.Record(models.KindAI, answer)
		if err := a.sessions.Append(ctx, threadID, am); err != nil {
			slog.Warn("failed to checkpoint message", "id", am.ID, "error", err)
		}
	}

	return offerIndexing(cmd, a, transcript, scanner)
}

// offerIndexing asks whether to store the finished conversation and in
// which mode.
func offerIndexing(cmd *cobra.Command, a *app, transcript *session.Transcript, scanner *bufio.Scanner) error {
	if a.writer == nil || transcript.Len() == 0 {
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, "\nStore this conversation in long-term memory? [y/N] ")
	if !scanner.Scan() {
		return nil
	}
	if strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
		return nil
	}

	mode := models.IndexSummarized
	fmt.Fprint(out, "Index as (1) a session summary or (2) every message? [1/2] ")
	if scanner.Scan() && strings.TrimSpace(scanner.Text()) == "2" {
		mode = models.IndexPerMessage
	}

	stats, err := a.writer.Index(cmd.Context(), transcript.Messages(), transcript.ThreadID(), mode)
	if err != nil {
		return fmt.Errorf("indexing conversation: %w", err)
	}

	fmt.Fprintf(out, "Indexed %d record(s), skipped %d duplicate(s), %d error(s).\n",
		stats.Indexed, stats.Skipped, stats.Errors)
	return nil
}
