// Package correction lets a user replace a record's primary label with one
// of its runner-up labels.
package correction

import (
	"context"
	"log/slog"

	"github.com/Mark0fPride/app-cnn/internal/datastore"
	"github.com/Mark0fPride/app-cnn/internal/logging"
	"github.com/Mark0fPride/app-cnn/internal/observability"
	"github.com/Mark0fPride/app-cnn/internal/taxonomy"
)

// Workflow applies label corrections to stored identification records.
type Workflow struct {
	store    datastore.Interface
	taxonomy *taxonomy.Taxonomy
	log      *slog.Logger
}

// New creates a correction workflow over the given store and taxonomy.
func New(store datastore.Interface, tax *taxonomy.Taxonomy) *Workflow {
	return &Workflow{
		store:    store,
		taxonomy: tax,
		log:      logging.ForService("correction"),
	}
}

// Swap replaces the record's primary label with newLabel, which must be
// one of its current alternatives. A missing record or a label not among
// the alternatives is a no-op, not an error: the updated record is nil and
// applied is false.
//
// The evicted primary is appended to the end of the alternatives rather
// than re-ranked; the model's ordering no longer applies once a human has
// overridden the label, and the confidence is cleared for the same reason.
func (w *Workflow) Swap(ctx context.Context, id uint, newLabel string) (*datastore.Identification, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	record, err := w.store.Get(id)
	if err != nil {
		return nil, false, err
	}
	if record == nil {
		w.log.Warn("correction for missing record ignored", "id", id, "label", newLabel)
		return nil, false, nil
	}
	if !record.HasAlternative(newLabel) {
		w.log.Warn("correction label not among alternatives, ignored",
			"id", id, "label", newLabel, "primary", record.ScientificName)
		return nil, false, nil
	}

	updated := record.Copy()

	alternatives := make([]string, 0, datastore.MaxAlternatives)
	for _, alternative := range record.Alternatives {
		if alternative != newLabel {
			alternatives = append(alternatives, alternative)
		}
	}
	alternatives = append(alternatives, record.ScientificName)
	if len(alternatives) > datastore.MaxAlternatives {
		alternatives = alternatives[:datastore.MaxAlternatives]
	}

	updated.ScientificName = newLabel
	updated.Alternatives = alternatives
	updated.Confidence = nil
	updated.Edibility = w.taxonomy.Edibility(newLabel)

	// Full-record replace, last writer wins.
	if err := w.store.Update(&updated); err != nil {
		observability.StoreErrorsTotal.Inc()
		return nil, false, err
	}

	observability.CorrectionsTotal.Inc()
	w.log.Info("label corrected",
		"id", id,
		"old_label", record.ScientificName,
		"new_label", newLabel)
	return &updated, true, nil
}
