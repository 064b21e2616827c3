// Package history implements the command to browse, search and delete
// stored identifications.
package history

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Mark0fPride/app-cnn/internal/conf"
	"github.com/Mark0fPride/app-cnn/internal/datastore"
	"github.com/Mark0fPride/app-cnn/internal/errors"
	"github.com/Mark0fPride/app-cnn/internal/history"
	"github.com/Mark0fPride/app-cnn/internal/settings"
	"github.com/Mark0fPride/app-cnn/internal/taxonomy"
)

// Command returns the history subcommand.
func Command(appSettings *conf.Settings) *cobra.Command {
	var (
		query     string
		fromDate  string
		toDate    string
		showAll   bool
		deleteIDs []uint
		deleteAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse, search and delete stored identifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(appSettings)
			if err := store.Open(); err != nil {
				return err
			}
			defer store.Close()

			tax, err := loadTaxonomy(appSettings)
			if err != nil {
				return err
			}

			engine := history.New(store, tax)
			defer engine.Close()

			switch {
			case deleteAll:
				if err := engine.DeleteAll(); err != nil {
					return err
				}
				fmt.Println("history cleared")
				return nil
			case len(deleteIDs) > 0:
				if err := engine.DeleteByIDs(deleteIDs); err != nil {
					return err
				}
				fmt.Printf("deleted %d record(s)\n", len(deleteIDs))
				return nil
			}

			q, err := buildQuery(query, fromDate, toDate, showAll)
			if err != nil {
				return err
			}
			engine.SetQuery(q)

			userSettings := readUserSettings(appSettings)
			for state := range engine.States() {
				switch s := state.(type) {
				case history.Results:
					printRecords(s.Records, tax, userSettings)
					return nil
				case history.Failed:
					return s.Err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Text to match against scientific and common names")
	cmd.Flags().StringVar(&fromDate, "from", "", "Start date (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(&toDate, "to", "", "End date (YYYY-MM-DD), inclusive")
	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "Ignore the date range and show every record")
	cmd.Flags().UintSliceVar(&deleteIDs, "delete", nil, "Delete the records with these ids and exit")
	cmd.Flags().BoolVar(&deleteAll, "delete-all", false, "Delete every record and exit")

	return cmd
}

// buildQuery assembles the engine query from the flags. Missing dates fall
// back to the default trailing window.
func buildQuery(text, fromDate, toDate string, showAll bool) (history.Query, error) {
	q := history.DefaultQuery()
	q.Text = text
	q.ShowAll = showAll

	if fromDate != "" {
		from, err := time.ParseInLocation("2006-01-02", fromDate, time.Local)
		if err != nil {
			return q, errors.Newf("invalid --from date %q: %v", fromDate, err).
				Category(errors.CategoryValidation).Build()
		}
		q.From = from.UnixMilli()
	}
	if toDate != "" {
		to, err := time.ParseInLocation("2006-01-02", toDate, time.Local)
		if err != nil {
			return q, errors.Newf("invalid --to date %q: %v", toDate, err).
				Category(errors.CategoryValidation).Build()
		}
		// inclusive end of day
		q.To = to.Add(24*time.Hour - time.Millisecond).UnixMilli()
	}
	return q, nil
}

func printRecords(records []datastore.Identification, tax *taxonomy.Taxonomy, userSettings settings.UserSettings) {
	if len(records) == 0 {
		fmt.Println("no matching records")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	header := table.Row{"ID", "Name", "Confidence", "Edibility"}
	if userSettings.DisplayTimestamp {
		header = append(header, "Captured")
	}
	t.AppendHeader(header)

	for i := range records {
		record := &records[i]
		name := settings.FormatName(record.ScientificName, tax.CommonName(record.ScientificName), userSettings.NameFormat)
		confidence := "-"
		if record.Confidence != nil {
			confidence = fmt.Sprintf("%.1f%%", *record.Confidence)
		}
		row := table.Row{record.ID, name, confidence, record.Edibility}
		if userSettings.DisplayTimestamp {
			row = append(row, settings.FormatTimestamp(record.CapturedAt, userSettings.TimeFormat))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func readUserSettings(appSettings *conf.Settings) settings.UserSettings {
	userSettings, err := settings.NewStore(appSettings.UserSettingsPath).Read()
	if err != nil {
		return settings.Default()
	}
	return userSettings
}

func loadTaxonomy(appSettings *conf.Settings) (*taxonomy.Taxonomy, error) {
	if appSettings.Classifier.TaxonomyPath != "" {
		return taxonomy.LoadFile(appSettings.Classifier.TaxonomyPath, appSettings.Classifier.Locale)
	}
	return taxonomy.Load(appSettings.Classifier.Locale)
}
