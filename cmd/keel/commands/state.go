// ABOUTME: CLI commands for project state, narrative docs, and owner identity
// ABOUTME: show state, set focus/phase, read and write documents
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keelstore/keel/internal/models"
	"github.com/keelstore/keel/internal/store"
)

var (
	statePhase string
	stateJSON  bool
	ownerName  string
	ownerEmail string
)

// NewStateCmd creates the state command group
func NewStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show and update project state and documents",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the project state document",
		RunE:  runStateShow,
	}
	show.Flags().BoolVar(&stateJSON, "json", false, "Emit JSON instead of text")

	focus := &cobra.Command{
		Use:   "focus [text]",
		Short: "Set the current focus",
		Args:  cobra.ExactArgs(1),
		RunE:  runStateFocus,
	}

	phase := &cobra.Command{
		Use:   "phase [name]",
		Short: "Set the project phase",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatePhase,
	}

	doc := &cobra.Command{
		Use:   "doc <name> [file]",
		Short: "Show or replace a narrative document",
		Long: `Show or replace a narrative document.

Valid names are project_map and working_doc. With only a name the
document is printed; with a file argument its contents replace the
document (use "-" to read from stdin).`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runStateDoc,
	}

	owner := &cobra.Command{
		Use:   "owner",
		Short: "Update the owner profile in the identity area",
		RunE:  runStateOwner,
	}
	owner.Flags().StringVar(&ownerName, "name", "", "Owner name")
	owner.Flags().StringVar(&ownerEmail, "email", "", "Owner email")

	cmd.AddCommand(show, focus, phase, doc, owner)
	return cmd
}

func runStateShow(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	ps, err := st.ProjectState()
	if err != nil {
		return fmt.Errorf("reading project state: %w", err)
	}

	if stateJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ps)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Project: %s\n", ps.Project)
	if ps.Phase != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Phase:   %s\n", ps.Phase)
	}
	if ps.CurrentFocus != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Focus:   %s\n", ps.CurrentFocus)
	}
	if ps.UpdatedAt != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Updated: %s\n", ps.UpdatedAt)
	}
	return nil
}

func runStateFocus(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	if err := st.SetCurrentFocus(args[0]); err != nil {
		return fmt.Errorf("setting focus: %w", err)
	}

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Focus updated")
	}
	return nil
}

func runStatePhase(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	ps, err := st.ProjectState()
	if err != nil {
		return fmt.Errorf("reading project state: %w", err)
	}
	ps.Phase = args[0]
	if err := st.WriteProjectState(ps); err != nil {
		return fmt.Errorf("writing project state: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Phase set to %s\n", args[0])
	}
	return nil
}

func runStateDoc(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	name, err := docFileName(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		content, err := st.ReadDocument(name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		if content == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(empty)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	}

	var data []byte
	if args[1] == "-" {
		data, err = os.ReadFile("/dev/stdin")
	} else {
		data, err = os.ReadFile(args[1])
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if err := st.WriteDocument(name, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s updated\n", args[0])
	}
	return nil
}

func docFileName(short string) (string, error) {
	switch short {
	case "project_map":
		return store.ProjectMapFile, nil
	case "working_doc":
		return store.WorkingDocFile, nil
	}
	return "", fmt.Errorf("unknown document %q (want project_map or working_doc)", short)
}

func runStateOwner(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	if ownerName == "" && ownerEmail == "" {
		profile, err := st.OwnerProfile()
		if err != nil {
			return fmt.Errorf("reading owner profile: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Name:  %s\nEmail: %s\n", profile.Name, profile.Email)
		return nil
	}

	profile, err := st.OwnerProfile()
	if err != nil {
		return fmt.Errorf("reading owner profile: %w", err)
	}
	if ownerName != "" {
		profile.Name = ownerName
	}
	if ownerEmail != "" {
		profile.Email = ownerEmail
	}
	if err := st.WriteOwnerProfile(models.OwnerProfile{Name: profile.Name, Email: profile.Email}); err != nil {
		return fmt.Errorf("writing owner profile: %w", err)
	}

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Owner profile updated")
	}
	return nil
}
