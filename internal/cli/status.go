package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sync progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}

			status, err := a.services.Orchestrator.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}

			if status.UserKey == "" {
				fmt.Println("no sync state")
				return nil
			}

			fmt.Printf("user:             %s\n", status.UserKey)
			fmt.Printf("running:          %v\n", status.Running)
			fmt.Printf("full export:      %v (done before: %v)\n", status.FullExport, status.FullExportDone)
			fmt.Printf("records sent:     %d\n", status.TotalSent)
			for _, tp := range status.Types {
				state := "pending"
				if tp.Completed {
					state = "done"
				}
				fmt.Printf("  %-22s %8d sent  %s\n", tp.Type, tp.SentCount, state)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")

	return cmd
}
