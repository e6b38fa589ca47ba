package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sant0-9/policygen/internal/catalog"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List policy templates",
	Long: `Lists the built-in templates and those found in
~/.config/policygen/templates/<id>/TEMPLATE.md. A user template with a
built-in's id replaces it.`,
	RunE: runTemplates,
}

var (
	newTemplateName string
	newTemplateDesc string
	newTemplateFrom string
)

var templatesAddCmd = &cobra.Command{
	Use:   "add [id]",
	Short: "Create a user template",
	Long: `Writes a new TEMPLATE.md into the user templates directory. Defaults are
read from a YAML file with the five practice fields:

  dataCollectionPractices: ...
  dataUsagePractices: ...
  dataSharingPractices: ...
  dataSecurityMeasures: ...
  userRights: ...`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplatesAdd,
}

func init() {
	templatesAddCmd.Flags().StringVar(&newTemplateName, "name", "", "display name (defaults to the id)")
	templatesAddCmd.Flags().StringVar(&newTemplateDesc, "description", "", "one-line description")
	templatesAddCmd.Flags().StringVar(&newTemplateFrom, "defaults", "", "YAML file with default answers")
	templatesCmd.AddCommand(templatesAddCmd)
}

func loadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Language, catalog.DefaultDir())
	if err != nil {
		if cat == nil {
			return nil, err
		}
		log.Warn("some user templates were skipped", zap.Error(err))
	}
	return cat, nil
}

func runTemplates(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSOURCE\tDESCRIPTION")
	for _, t := range cat.All() {
		source := "built-in"
		if !t.Builtin {
			source = t.Path
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, source, t.Description)
	}
	return w.Flush()
}

func runTemplatesAdd(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	t := &catalog.Template{
		ID:          args[0],
		Name:        newTemplateName,
		Description: newTemplateDesc,
	}
	if t.Name == "" {
		t.Name = args[0]
	}
	if newTemplateFrom != "" {
		data, err := os.ReadFile(newTemplateFrom)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, &t.Defaults); err != nil {
			return fmt.Errorf("parse %s: %w", newTemplateFrom, err)
		}
	}

	if err := cat.Save(t); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created template %q at %s\n", t.ID, t.Path)
	return nil
}
