package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bountyvault/internal/errs"
)

// writeOutput renders value in the --output format. text is used for the
// default human-readable form.
func writeOutput(cmd *cobra.Command, value any, text func(w io.Writer) error) error {
	w := cmd.OutOrStdout()
	switch strings.ToLower(strings.TrimSpace(outputFormat)) {
	case "", "text":
		return errs.Wrap(text(w), "write text output")
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return errs.Wrap(encoder.Encode(value), "write json output")
	case "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return errs.Wrap(err, "write yaml output")
		}
		return errs.Wrap(encoder.Close(), "flush yaml output")
	default:
		return fmt.Errorf("unsupported output format %q (text|json|yaml)", outputFormat)
	}
}

func textLines(lines ...string) func(w io.Writer) error {
	return func(w io.Writer) error {
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}
}
