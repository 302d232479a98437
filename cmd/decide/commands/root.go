// Package commands implements the decide command line tool.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benvon/smart-decide/internal/models"
	"github.com/benvon/smart-decide/internal/validation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewRootCmd creates the decide root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "decide",
		Short:         "Pick the next task to work on",
		Long:          "Offline front end to the decision engine. Reads a decision request from a YAML or JSON file.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewValidateCmd())
	return rootCmd
}

// loadRequest reads a decision request from path, or from in when path is "-".
// JSON input is accepted since it is valid YAML.
func loadRequest(path string, in io.Reader) (models.DecisionContext, error) {
	var req models.DecisionContext
	if strings.TrimSpace(path) == "" {
		return req, fmt.Errorf("--file is required")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("read request: %w", err)
	}

	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}

// printValidationError writes one line per failing field
func printValidationError(w io.Writer, err error) {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		fmt.Fprintf(w, "invalid request: %v\n", err)
		return
	}
	fmt.Fprintln(w, "invalid request:")
	for _, line := range strings.Split(strings.TrimPrefix(verr.Error(), "validation failed: "), "; ") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
