// ABOUTME: CLI commands for upload notes captured during file ingestion
// ABOUTME: add and list note rows
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	noteUpload string
	noteLimit  int
	noteJSON   bool
)

// NewNoteCmd creates the note command group
func NewNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Record answers captured while ingesting uploads",
	}

	add := &cobra.Command{
		Use:   "add [answer]",
		Short: "Record an upload note",
		Args:  cobra.ExactArgs(1),
		RunE:  runNoteAdd,
		Example: `  keel note add "Quote covers tile and grout, not labor" --upload uploads/tile-quote.pdf`,
	}
	add.Flags().StringVar(&noteUpload, "upload", "", "Path of the upload the note is about")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent upload notes",
		RunE:  runNoteList,
	}
	list.Flags().IntVar(&noteLimit, "limit", 20, "Maximum notes shown")
	list.Flags().BoolVar(&noteJSON, "json", false, "Emit JSON instead of text")

	cmd.AddCommand(add, list)
	return cmd
}

func runNoteAdd(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	note, err := st.AppendUploadNote(noteUpload, args[0])
	if err != nil {
		return fmt.Errorf("adding note: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded %s\n", note.ID)
	}
	return nil
}

func runNoteList(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	notes, err := st.ListUploadNotes(noteLimit)
	if err != nil {
		return fmt.Errorf("listing notes: %w", err)
	}

	if noteJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(notes)
	}

	if len(notes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No upload notes")
		return nil
	}
	for _, n := range notes {
		if n.UploadPath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "- [%s] %s: %s\n", day(n.CreatedAt), n.UploadPath, truncate(n.Answer, 80))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "- [%s] %s\n", day(n.CreatedAt), truncate(n.Answer, 80))
		}
	}
	return nil
}
