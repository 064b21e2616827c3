// Package correct implements the command to swap a record's label for one
// of its runner-up candidates.
package correct

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mark0fPride/app-cnn/internal/conf"
	"github.com/Mark0fPride/app-cnn/internal/correction"
	"github.com/Mark0fPride/app-cnn/internal/datastore"
	"github.com/Mark0fPride/app-cnn/internal/errors"
	"github.com/Mark0fPride/app-cnn/internal/taxonomy"
)

// Command returns the correct subcommand.
func Command(appSettings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct <record-id> <scientific-name>",
		Short: "Replace a record's label with one of its alternatives",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return errors.Newf("invalid record id %q", args[0]).
					Category(errors.CategoryValidation).Build()
			}
			newLabel := args[1]

			store := datastore.New(appSettings)
			if err := store.Open(); err != nil {
				return err
			}
			defer store.Close()

			tax, err := loadTaxonomy(appSettings)
			if err != nil {
				return err
			}

			workflow := correction.New(store, tax)
			updated, applied, err := workflow.Swap(cmd.Context(), uint(id), newLabel)
			if err != nil {
				return err
			}
			if !applied {
				fmt.Printf("no change: record %d does not offer %q as an alternative\n", id, newLabel)
				return nil
			}
			fmt.Printf("record %d is now %s (%s), alternatives: %v\n",
				updated.ID, updated.ScientificName, updated.Edibility, updated.Alternatives)
			return nil
		},
	}
	return cmd
}

func loadTaxonomy(appSettings *conf.Settings) (*taxonomy.Taxonomy, error) {
	if appSettings.Classifier.TaxonomyPath != "" {
		return taxonomy.LoadFile(appSettings.Classifier.TaxonomyPath, appSettings.Classifier.Locale)
	}
	return taxonomy.Load(appSettings.Classifier.Locale)
}
