// ABOUTME: Root CLI command with global flags and subcommand wiring
// ABOUTME: Every subcommand shares the same project-scoped store setup
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	project string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keel",
		Short: "Canonical truth store for project memory",
		Long: `keel is the canonical truth store behind a project-memory system.

It durably records decisions and open questions in append-only logs,
detects and resolves conflicts between decisions, and answers bounded,
deterministic retrieval queries over a small set of canonical documents.

All history is append-only: nothing is ever rewritten, and the current
state of any record is derived fresh from disk on every read.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&project, "project", "", "Project name (default from KEEL_PROJECT)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewDecisionCmd())
	cmd.AddCommand(NewInboxCmd())
	cmd.AddCommand(NewConflictsCmd())
	cmd.AddCommand(NewRecallCmd())
	cmd.AddCommand(NewLinksCmd())
	cmd.AddCommand(NewStateCmd())
	cmd.AddCommand(NewNoteCmd())
	cmd.AddCommand(NewVersionCmd())
	cmd.AddCommand(NewMCPCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
