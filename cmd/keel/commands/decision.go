// ABOUTME: CLI commands for the decision ledger
// ABOUTME: add, supersede, list, current, and candidate promotion
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelstore/keel/internal/models"
)

var (
	decisionDomain     string
	decisionSurface    string
	decisionStatus     string
	decisionEvidence   []string
	decisionConfidence string
	listDomain         string
	listStatus         string
	listHistory        bool
	listLimit          int
	listJSON           bool
)

// NewDecisionCmd creates the decision command group
func NewDecisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decision",
		Short: "Record and inspect project decisions",
		Long: `Record and inspect project decisions.

Decisions live in an append-only ledger. Nothing is ever rewritten:
changing a decision appends a new row that supersedes the old one.`,
	}

	add := &cobra.Command{
		Use:   "add [text]",
		Short: "Record a decision",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecisionAdd,
		Example: `  keel decision add "Matte black fixtures throughout" --domain bathroom.fixtures
  keel decision add "Heated floor under tile" --domain bathroom.floor --surface heating --status candidate`,
	}
	add.Flags().StringVar(&decisionDomain, "domain", "", "Dot-namespaced topic, e.g. bathroom.floor")
	add.Flags().StringVar(&decisionSurface, "surface", "", "Sub-aspect within the domain")
	add.Flags().StringVar(&decisionStatus, "status", "final", "Lifecycle status: candidate or final")
	add.Flags().StringSliceVar(&decisionEvidence, "evidence", nil, "Evidence references (comma-separated)")
	add.Flags().StringVar(&decisionConfidence, "confidence", "", "Confidence: low, medium, high")

	supersede := &cobra.Command{
		Use:   "supersede <old-id> [text]",
		Short: "Replace a decision, keeping the old one in history",
		Args:  cobra.ExactArgs(2),
		RunE:  runDecisionSupersede,
	}
	supersede.Flags().StringVar(&decisionDomain, "domain", "", "Dot-namespaced topic of the new decision")
	supersede.Flags().StringVar(&decisionSurface, "surface", "", "Sub-aspect within the domain")
	supersede.Flags().StringSliceVar(&decisionEvidence, "evidence", nil, "Evidence references")
	supersede.Flags().StringVar(&decisionConfidence, "confidence", "", "Confidence: low, medium, high")

	list := &cobra.Command{
		Use:   "list",
		Short: "List decisions and pending candidates",
		RunE:  runDecisionList,
	}
	list.Flags().StringVar(&listDomain, "domain", "", "Filter to a domain (matches sub-domains)")
	list.Flags().StringVar(&listStatus, "status", "", "Filter by status")
	list.Flags().BoolVar(&listHistory, "history", false, "Show full append-order history")
	list.Flags().IntVar(&listLimit, "limit", 50, "Maximum rows shown")
	list.Flags().BoolVar(&listJSON, "json", false, "Emit JSON instead of text")

	current := &cobra.Command{
		Use:   "current",
		Short: "Show the current non-superseded decisions",
		RunE:  runDecisionCurrent,
	}
	current.Flags().BoolVar(&listJSON, "json", false, "Emit JSON instead of text")

	promote := &cobra.Command{
		Use:   "promote <candidate-id>",
		Short: "Promote a pending candidate into a final decision",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecisionPromote,
	}

	cmd.AddCommand(add, supersede, list, current, promote)
	return cmd
}

func runDecisionAdd(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	status := models.DecisionStatus(decisionStatus)
	var rec models.DecisionRecord
	if status == models.DecisionCandidate {
		rec, err = st.AddCandidate(decisionDomain, decisionSurface, args[0], decisionEvidence, models.Confidence(decisionConfidence))
	} else {
		rec, err = st.AddDecision(decisionDomain, decisionSurface, status, args[0], "", decisionEvidence, models.Confidence(decisionConfidence))
	}
	if err != nil {
		return fmt.Errorf("recording decision: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded %s [%s]\n", rec.ID, rec.Status)
	}
	return nil
}

func runDecisionSupersede(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	newRec, _, err := st.SupersedeDecision(args[0], decisionDomain, decisionSurface, args[1], decisionEvidence, models.Confidence(decisionConfidence))
	if err != nil {
		return fmt.Errorf("superseding %s: %w", args[0], err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s superseded by %s\n", args[0], newRec.ID)
	}
	return nil
}

func runDecisionList(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	rows, err := st.ListDecisions(listDomain, models.DecisionStatus(listStatus), listHistory, listLimit)
	if err != nil {
		return fmt.Errorf("listing decisions: %w", err)
	}
	candidates, err := st.ListCandidates()
	if err != nil {
		return fmt.Errorf("listing candidates: %w", err)
	}

	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"decisions": rows, "candidates": candidates})
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Decisions (confirmed):")
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "- (none)")
	}
	for _, r := range rows {
		fmt.Fprintf(cmd.OutOrStdout(), "- [%s] %s %s [%s]\n", day(r.CreatedAt), r.ID, truncate(r.Text, 80), r.Status)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "")
	fmt.Fprintln(cmd.OutOrStdout(), "Pending / unconfirmed:")
	if len(candidates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "- (none)")
	}
	for _, c := range candidates {
		fmt.Fprintf(cmd.OutOrStdout(), "- %s %s\n", c.ID, truncate(c.Text, 80))
	}
	return nil
}

func runDecisionCurrent(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	rows, err := st.CurrentDecisions()
	if err != nil {
		return fmt.Errorf("deriving current decisions: %w", err)
	}

	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No current decisions")
		return nil
	}
	for _, r := range rows {
		key := r.Domain
		if r.Surface != "" {
			key += "/" + r.Surface
		}
		if key != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s (%s) %s\n", r.ID, key, truncate(r.Text, 80))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s %s\n", r.ID, truncate(r.Text, 80))
		}
	}
	return nil
}

func runDecisionPromote(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	rec, err := st.PromoteCandidate(args[0])
	if err != nil {
		return fmt.Errorf("promoting %s: %w", args[0], err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Promoted %s to %s\n", args[0], rec.ID)
	}
	return nil
}
