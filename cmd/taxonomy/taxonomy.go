// Package taxonomy implements the command to list the classes the model
// can identify.
package taxonomy

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Mark0fPride/app-cnn/internal/conf"
	"github.com/Mark0fPride/app-cnn/internal/taxonomy"
)

// Command returns the taxonomy subcommand.
func Command(appSettings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "List the mushroom classes the model can identify",
		RunE: func(cmd *cobra.Command, args []string) error {
			tax, err := load(appSettings)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"#", "Scientific name", "Common name", "Edibility"})
			for i, scientificName := range tax.Classes() {
				t.AppendRow(table.Row{i, scientificName, tax.CommonName(scientificName), tax.Edibility(scientificName)})
			}
			t.Render()
			return nil
		},
	}
}

func load(appSettings *conf.Settings) (*taxonomy.Taxonomy, error) {
	if appSettings.Classifier.TaxonomyPath != "" {
		return taxonomy.LoadFile(appSettings.Classifier.TaxonomyPath, appSettings.Classifier.Locale)
	}
	return taxonomy.Load(appSettings.Classifier.Locale)
}
