package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sant0-9/policygen/internal/flow"
)

var flowsJSON bool

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "List the registered flows",
	RunE: func(cmd *cobra.Command, args []string) error {
		flows := flow.Flows()
		out := cmd.OutOrStdout()

		if flowsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(flows)
		}

		for _, f := range flows {
			fmt.Fprintf(out, "%s\n", f.Name)
			fmt.Fprintf(out, "  prompt:  %s\n", f.Template)
			fmt.Fprintf(out, "  input:   %s\n", f.InputSchema)
			fmt.Fprintf(out, "  output:  %s\n", f.OutputSchema)
			fmt.Fprintf(out, "  fields:  %s\n", strings.Join(f.Placeholders, ", "))
		}
		return nil
	},
}

func init() {
	flowsCmd.Flags().BoolVar(&flowsJSON, "json", false, "print as JSON")
}
