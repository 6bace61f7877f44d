package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/the-momentum/open-wearables-sync/models"
)

// NewSyncCommand creates the one-shot sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync attempt and exit",
		Long: `Run a single sync attempt.

A paused session is continued from where it left off; otherwise a new
incremental session starts. The first sync of a user is always a full
export. Exits zero on a completed session and on a resumable pause; a
non-zero exit means re-authentication is required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}

			outcome, err := a.services.Orchestrator.StartSync(cmd.Context(), full)
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}

			fmt.Printf("sync %s\n", outcome)
			if outcome == models.OutcomeIncomplete {
				fmt.Println("progress saved; run `wearsync resume` to continue")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "re-export all history instead of syncing incrementally")

	return cmd
}

// NewResumeCommand creates the resume command.
func NewResumeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Continue a paused sync session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}

			outcome, err := a.services.Orchestrator.Resume(cmd.Context())
			if err != nil {
				return fmt.Errorf("resume: %w", err)
			}

			fmt.Printf("sync %s\n", outcome)
			return nil
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard sync progress and staged chunks",
		Long: `Delete the current user's session state and purge their staged outbox
items. The next sync starts a fresh full export. Credentials are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}

			if err := a.services.Orchestrator.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset: %w", err)
			}

			fmt.Println("sync state reset")
			return nil
		},
	}
}
