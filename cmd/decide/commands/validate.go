package commands

import (
	"fmt"

	"github.com/benvon/smart-decide/internal/validation"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a decision request without deciding",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadRequest(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := validation.ValidateDecisionContext(&req); err != nil {
				printValidationError(cmd.ErrOrStderr(), err)
				return fmt.Errorf("request is invalid")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d tasks\n", len(req.Tasks))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Request file, YAML or JSON; - for stdin (required)")
	return cmd
}
