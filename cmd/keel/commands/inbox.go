// ABOUTME: CLI commands for the inbox of open questions and conflicts
// ABOUTME: add, resolve, and list inbox items
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelstore/keel/internal/models"
)

var (
	inboxType    string
	inboxRefs    []string
	inboxHistory bool
	inboxLimit   int
	inboxJSON    bool
)

// NewInboxCmd creates the inbox command group
func NewInboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Track open questions, pending decisions, and conflicts",
		Long: `Track open questions, pending decisions, and conflicts.

The inbox is an append-only log. Resolving an item appends a resolved
row; the original stays in history.`,
	}

	add := &cobra.Command{
		Use:   "add [text]",
		Short: "Raise a question or note a gap",
		Args:  cobra.ExactArgs(1),
		RunE:  runInboxAdd,
		Example: `  keel inbox add "Which grout color for the floor tile?"
  keel inbox add "Need fixture spec sheet" --type missing_requirements`,
	}
	add.Flags().StringVar(&inboxType, "type", "clarification", "Item type: clarification, pending_decision, conflict, missing_requirements")
	add.Flags().StringSliceVar(&inboxRefs, "refs", nil, "Related record references")

	resolve := &cobra.Command{
		Use:   "resolve <item-id> [note]",
		Short: "Resolve an open inbox item",
		Args:  cobra.ExactArgs(2),
		RunE:  runInboxResolve,
	}
	resolve.Flags().StringSliceVar(&inboxRefs, "refs", nil, "References recording how it was resolved")

	list := &cobra.Command{
		Use:   "list",
		Short: "List open inbox items",
		RunE:  runInboxList,
	}
	list.Flags().BoolVar(&inboxHistory, "history", false, "Include resolved items and full history")
	list.Flags().IntVar(&inboxLimit, "limit", 50, "Maximum items shown")
	list.Flags().BoolVar(&inboxJSON, "json", false, "Emit JSON instead of text")

	cmd.AddCommand(add, resolve, list)
	return cmd
}

func runInboxAdd(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	item, err := st.AppendInboxItem(models.InboxItemType(inboxType), args[0], inboxRefs)
	if err != nil {
		return fmt.Errorf("adding inbox item: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s [%s]\n", item.ID, item.Type)
	}
	return nil
}

func runInboxResolve(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	if err := st.ResolveInboxItem(args[0], args[1], inboxRefs); err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Resolved %s\n", args[0])
	}
	return nil
}

func runInboxList(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	var items []models.InboxItem
	if inboxHistory {
		items, err = st.ListInbox(true)
	} else {
		items, err = st.ListOpenInbox(inboxLimit)
	}
	if err != nil {
		return fmt.Errorf("listing inbox: %w", err)
	}

	if inboxJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Inbox is empty")
		return nil
	}
	for _, item := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "- %s [%s/%s] %s\n", item.ID, item.Type, item.Status, truncate(item.Text, 100))
	}
	return nil
}
