package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sant0-9/policygen/internal/contract"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize an existing privacy policy",
	Long: `Prints a plain-language summary of a policy read from a file, or from
stdin when no file (or "-") is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}

	backend, err := newBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	res := backend.SummarizePolicy(cmd.Context(), contract.SummaryRequest{PrivacyPolicyText: string(data)})
	fmt.Fprintln(cmd.OutOrStdout(), res.Summary)
	return nil
}
