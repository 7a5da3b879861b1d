// ABOUTME: CLI commands for conflict detection and resolution
// ABOUTME: detect, sync into inbox, and resolve by winner
package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keelstore/keel/internal/conflict"
)

var conflictsJSON bool

// NewConflictsCmd creates the conflicts command group
func NewConflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Detect and resolve contradictory decisions",
		Long: `Detect and resolve contradictory decisions.

Two current decisions conflict when they target the same topic but
say different things. Detected conflicts can be synced into the inbox
and resolved by naming the decision that wins.`,
	}

	detect := &cobra.Command{
		Use:   "detect",
		Short: "Scan current decisions for contradictions",
		RunE:  runConflictsDetect,
	}
	detect.Flags().BoolVar(&conflictsJSON, "json", false, "Emit JSON instead of text")

	sync := &cobra.Command{
		Use:   "sync",
		Short: "File detected conflicts as open inbox items",
		RunE:  runConflictsSync,
	}

	resolve := &cobra.Command{
		Use:   "resolve <conflict-inbox-id> <winner-decision-id>",
		Short: "Resolve a conflict by keeping one decision",
		Args:  cobra.ExactArgs(2),
		RunE:  runConflictsResolve,
		Example: `  keel conflicts resolve inbox_2026_08_30_001 dec_2026_08_28_002`,
	}

	cmd.AddCommand(detect, sync, resolve)
	return cmd
}

func runConflictsDetect(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	conflicts, err := conflict.NewDetector(st).DetectConflicts()
	if err != nil {
		return fmt.Errorf("detecting conflicts: %w", err)
	}

	if conflictsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(conflicts)
	}

	if len(conflicts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No conflicts detected")
		return nil
	}
	for _, c := range conflicts {
		key := c.Domain
		if c.Surface != "" {
			key += "/" + c.Surface
		}
		fmt.Fprintf(cmd.OutOrStdout(), "- %s: %s\n", key, strings.Join(c.DecisionIDs, " vs "))
		for i, text := range c.Texts {
			fmt.Fprintf(cmd.OutOrStdout(), "    %d. %s\n", i+1, truncate(text, 100))
		}
	}
	return nil
}

func runConflictsSync(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	added, err := conflict.NewDetector(st).EnsureConflictsInInbox()
	if err != nil {
		return fmt.Errorf("syncing conflicts to inbox: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d new conflict item(s) filed\n", added)
	}
	return nil
}

func runConflictsResolve(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	ok, err := conflict.NewDetector(st).ResolveConflictByWinner(args[0], args[1])
	if err != nil {
		return fmt.Errorf("resolving conflict %s: %w", args[0], err)
	}
	if !ok {
		return fmt.Errorf("decision %s is not part of conflict %s", args[1], args[0])
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Conflict resolved, kept %s\n", args[1])
	}
	return nil
}
