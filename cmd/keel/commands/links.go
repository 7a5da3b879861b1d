// ABOUTME: CLI commands for cross-links between records and artifacts
// ABOUTME: add and list typed link events
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelstore/keel/internal/models"
)

var (
	linkReason     string
	linkConfidence string
	linkToText     string
	linkTypeFilter string
	linkLimit      int
	linkJSON       bool
)

// NewLinksCmd creates the links command group
func NewLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Connect uploads, deliverables, and decisions",
		Long: `Connect uploads, deliverables, and decisions.

Links are append-only events with content-derived ids, so recording
the same link twice is harmless.`,
	}

	add := &cobra.Command{
		Use:   "add <type> <from> [to]",
		Short: "Record a link between two records",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  runLinksAdd,
		Example: `  keel links add upload_to_decision uploads/tile-quote.pdf dec_2026_08_28_002 --reason "quote backs the tile pick"
  keel links add upload_to_decision uploads/tile-quote.pdf --to-text "white hex tile"`,
	}
	add.Flags().StringVar(&linkReason, "reason", "", "Why the two records are connected")
	add.Flags().StringVar(&linkConfidence, "confidence", "", "Confidence: low, medium, high")
	add.Flags().StringVar(&linkToText, "to-text", "", "Resolve the target by exact current decision text instead of an id")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded links",
		RunE:  runLinksList,
	}
	list.Flags().StringVar(&linkTypeFilter, "type", "", "Filter by link type")
	list.Flags().IntVar(&linkLimit, "limit", 50, "Maximum links shown")
	list.Flags().BoolVar(&linkJSON, "json", false, "Emit JSON instead of text")

	cmd.AddCommand(add, list)
	return cmd
}

func runLinksAdd(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	var to string
	switch {
	case len(args) == 3 && linkToText != "":
		return fmt.Errorf("pass either <to> or --to-text, not both")
	case len(args) == 3:
		to = args[2]
	case linkToText != "":
		dec, err := st.FindCurrentDecisionByText(linkToText)
		if err != nil {
			return fmt.Errorf("resolving target decision: %w", err)
		}
		to = dec.ID
	default:
		return fmt.Errorf("a target is required: pass <to> or --to-text")
	}

	link, err := st.AddLink(models.LinkType(args[0]), args[1], to, linkReason, models.Confidence(linkConfidence))
	if err != nil {
		return fmt.Errorf("adding link: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Linked %s -> %s (%s)\n", link.From, link.To, link.ID)
	}
	return nil
}

func runLinksList(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	links, err := st.ListLinks(models.LinkType(linkTypeFilter), linkLimit)
	if err != nil {
		return fmt.Errorf("listing links: %w", err)
	}

	if linkJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(links)
	}

	if len(links) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No links recorded")
		return nil
	}
	for _, l := range links {
		fmt.Fprintf(cmd.OutOrStdout(), "- [%s] %s -> %s", l.Type, l.From, l.To)
		if l.Reason != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " (%s)", truncate(l.Reason, 60))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "")
	}
	return nil
}
