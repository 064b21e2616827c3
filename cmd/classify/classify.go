// Package classify implements the command to classify mushroom photos.
package classify

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Mark0fPride/app-cnn/internal/conf"
	"github.com/Mark0fPride/app-cnn/internal/datastore"
	"github.com/Mark0fPride/app-cnn/internal/mushroomnet"
	"github.com/Mark0fPride/app-cnn/internal/observability"
	"github.com/Mark0fPride/app-cnn/internal/pipeline"
	"github.com/Mark0fPride/app-cnn/internal/taxonomy"
)

// Command returns the classify subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [image...]",
		Short: "Classify mushroom photos and store the identifications",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd.Context(), settings, args)
		},
	}
	return cmd
}

func runClassify(ctx context.Context, settings *conf.Settings, imagePaths []string) error {
	tax, err := loadTaxonomy(settings)
	if err != nil {
		return err
	}

	model, err := mushroomnet.New(settings)
	if err != nil {
		return err
	}
	defer model.Close()

	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return err
	}
	defer store.Close()

	if settings.Telemetry.Enabled {
		server := observability.StartServer(settings.Telemetry.Listen)
		defer server.Close()
	}

	p := pipeline.New(model, tax, store, settings)

	for _, imagePath := range imagePaths {
		req := pipeline.NewRequest(imagePath)
		result, err := p.Classify(ctx, req)
		if err != nil {
			return fmt.Errorf("classifying %s: %w", imagePath, err)
		}
		printResult(imagePath, result, tax)
	}
	return nil
}

func printResult(imagePath string, result *pipeline.Result, tax *taxonomy.Taxonomy) {
	if !result.Recognized() {
		fmt.Printf("%s: not recognized (best guess %s at %.1f%%, below the confidence gate)\n",
			imagePath, result.Label, result.Confidence)
		return
	}

	record := result.Record
	fmt.Printf("%s: %s (%s), %.1f%% confidence, %s [record %d]\n",
		imagePath, record.ScientificName, result.CommonName,
		result.Confidence, record.Edibility, record.ID)

	if len(record.Alternatives) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Rank", "Scientific name", "Common name"})
	for i, alternative := range record.Alternatives {
		t.AppendRow(table.Row{i + 2, alternative, tax.CommonName(alternative)})
	}
	t.Render()
}

func loadTaxonomy(settings *conf.Settings) (*taxonomy.Taxonomy, error) {
	if settings.Classifier.TaxonomyPath != "" {
		return taxonomy.LoadFile(settings.Classifier.TaxonomyPath, settings.Classifier.Locale)
	}
	return taxonomy.Load(settings.Classifier.Locale)
}
