// ABOUTME: Recall command builds grounded context snippets for a request
// ABOUTME: Deterministic retrieval over project files, bounded by budget
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelstore/keel/internal/recall"
)

var (
	recallIntent   string
	recallEntities []string
)

// NewRecallCmd creates the recall command
func NewRecallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall [text]",
		Short: "Build context snippets for a request",
		Long: `Build context snippets for a request.

Selects relevant material from the project files by intent and keyword
match, within a fixed character budget. Same store plus same request
always produces the same output.`,
		Args: cobra.ExactArgs(1),
		RunE: runRecall,
		Example: `  keel recall "what did we pick for the floor?" --intent recall
  keel recall "plan the tile order" --intent plan --entities tile,grout`,
	}
	cmd.Flags().StringVar(&recallIntent, "intent", "recall", "Request intent: recall, plan, execute, status")
	cmd.Flags().StringSliceVar(&recallEntities, "entities", nil, "Extra entity keywords (comma-separated)")

	return cmd
}

func runRecall(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}

	policy := recall.DefaultPolicy()
	if cfg.PolicyFile != "" {
		policy, err = recall.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return fmt.Errorf("loading recall policy: %w", err)
		}
	}
	policy.Budget = cfg.SnippetBudget
	policy.LogTail = cfg.LogTail

	engine := recall.NewEngine(st, policy)
	blocks, err := engine.BuildSnippets(recallIntent, recallEntities, args[0])
	if err != nil {
		return fmt.Errorf("building snippets: %w", err)
	}

	if len(blocks) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No relevant context found")
		}
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), recall.Render(blocks))
	return nil
}
