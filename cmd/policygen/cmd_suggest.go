package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sant0-9/policygen/internal/catalog"
	"github.com/sant0-9/policygen/internal/contract"
)

var (
	businessType string
	practices    string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest a template for a business",
	Long: `Asks the generator which template fits a business best.

Example:
  policygen suggest --business-type "online shop" --practices "orders, newsletter, cookies"`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVar(&businessType, "business-type", "", "the kind of business, e.g. e-commerce")
	suggestCmd.Flags().StringVar(&practices, "practices", "", "how the business handles personal data")
	_ = suggestCmd.MarkFlagRequired("business-type")
	_ = suggestCmd.MarkFlagRequired("practices")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	backend, err := newBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	res := backend.SuggestTemplate(cmd.Context(), contract.SuggestionRequest{
		BusinessType:          businessType,
		DataHandlingPractices: practices,
	})

	out := cmd.OutOrStdout()
	if res.TemplateSuggestion == "" {
		fmt.Fprintln(out, res.Reason)
		return nil
	}

	fmt.Fprintf(out, "Suggested template: %s\n", res.TemplateSuggestion)
	if res.Reason != "" {
		fmt.Fprintf(out, "Reason: %s\n", res.Reason)
	}

	cat, _ := catalog.Load(cfg.Language, catalog.DefaultDir())
	if t := cat.Match(res.TemplateSuggestion); t != nil {
		fmt.Fprintf(out, "Use it with: policygen generate --template %s --answers answers.yaml\n", t.ID)
	}
	return nil
}
