// Package pipeline turns a raw photo into a stored, queryable
// identification record: scores from the model, softmax, top-K selection,
// confidence gate, taxonomy lookup, persistence.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Mark0fPride/app-cnn/internal/conf"
	"github.com/Mark0fPride/app-cnn/internal/datastore"
	"github.com/Mark0fPride/app-cnn/internal/errors"
	"github.com/Mark0fPride/app-cnn/internal/logging"
	"github.com/Mark0fPride/app-cnn/internal/observability"
	"github.com/Mark0fPride/app-cnn/internal/taxonomy"
)

// topK is the number of candidate labels kept per classification:
// one primary plus up to MaxAlternatives runner-ups.
const topK = 1 + datastore.MaxAlternatives

// Scorer produces raw class scores for an image, one per taxonomy class in
// model output order.
type Scorer interface {
	RawScores(ctx context.Context, imagePath string) ([]float32, error)
}

// Request identifies one capture → classify → persist sequence. The token
// lets an asynchronous caller pair a result with the capture that produced
// it without holding mutable state in between.
type Request struct {
	Token      uuid.UUID
	ImagePath  string
	CapturedAt time.Time
}

// NewRequest creates a classification request for the image at imagePath,
// stamped with the current time.
func NewRequest(imagePath string) Request {
	return Request{
		Token:      uuid.New(),
		ImagePath:  imagePath,
		CapturedAt: time.Now(),
	}
}

// Result is the outcome of a completed classification. Record is nil when
// the top probability fell below the confidence gate; Label and Confidence
// always describe the best guess.
type Result struct {
	Token      uuid.UUID
	Label      string  // top-1 scientific name
	CommonName string  // localized common name of the top-1 label
	Confidence float64 // top-1 probability in percent
	Record     *datastore.Identification
	Elapsed    time.Duration
}

// Recognized reports whether the classification cleared the confidence
// gate and was persisted.
func (r *Result) Recognized() bool {
	return r.Record != nil
}

// Pipeline assembles identification records from model scores.
type Pipeline struct {
	scorer        Scorer
	taxonomy      *taxonomy.Taxonomy
	store         datastore.Interface
	minConfidence float64 // gate in percent, inclusive
	log           *slog.Logger
}

// New creates a classification pipeline. All collaborators are explicit,
// there is no ambient lookup.
func New(scorer Scorer, tax *taxonomy.Taxonomy, store datastore.Interface, settings *conf.Settings) *Pipeline {
	return &Pipeline{
		scorer:        scorer,
		taxonomy:      tax,
		store:         store,
		minConfidence: settings.Classifier.MinConfidence,
		log:           logging.ForService("pipeline"),
	}
}

// Classify runs the full pipeline for one request. Exactly one record is
// inserted on an accepted classification, none on a below-gate result or
// any failure. Technical failures are returned as errors, a below-gate
// top-1 is a valid Result with Record nil.
func (p *Pipeline) Classify(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	result, err := p.classify(ctx, req)
	elapsed := time.Since(start)
	observability.InferenceDuration.Observe(elapsed.Seconds())

	switch {
	case err != nil:
		observability.ClassificationsTotal.WithLabelValues(observability.OutcomeError).Inc()
		return nil, err
	case result.Recognized():
		observability.ClassificationsTotal.WithLabelValues(observability.OutcomeRecognized).Inc()
	default:
		observability.ClassificationsTotal.WithLabelValues(observability.OutcomeNotRecognized).Inc()
	}
	result.Elapsed = elapsed
	return result, nil
}

func (p *Pipeline) classify(ctx context.Context, req Request) (*Result, error) {
	scores, err := p.scorer.RawScores(ctx, req.ImagePath)
	if err != nil {
		return nil, err
	}

	classes := p.taxonomy.Classes()
	if len(scores) != len(classes) {
		return nil, errors.Newf("mismatched scores and taxonomy lengths: %d vs %d", len(scores), len(classes)).
			Component("pipeline").
			Category(errors.CategoryValidation).
			Build()
	}

	probs := softmax(scores)
	ranked := rankIndices(probs)

	primary := classes[ranked[0]]
	confidence := probs[ranked[0]] * 100

	result := &Result{
		Token:      req.Token,
		Label:      primary,
		CommonName: p.taxonomy.CommonName(primary),
		Confidence: confidence,
	}

	// Confidence gate: a top-1 strictly below the minimum is reported as
	// not recognized and nothing is persisted.
	if confidence < p.minConfidence {
		p.log.Info("classification below confidence gate",
			"token", req.Token.String(),
			"best_guess", primary,
			"confidence", confidence,
			"gate", p.minConfidence)
		return result, nil
	}

	alternatives := make([]string, 0, datastore.MaxAlternatives)
	for _, idx := range ranked[1:min(topK, len(ranked))] {
		alternatives = append(alternatives, classes[idx])
	}

	record := &datastore.Identification{
		ImagePath:      req.ImagePath,
		ScientificName: primary,
		Alternatives:   alternatives,
		CapturedAt:     req.CapturedAt.UnixMilli(),
		Confidence:     &confidence,
		Edibility:      p.taxonomy.Edibility(primary),
	}

	if err := p.store.Save(record); err != nil {
		observability.StoreErrorsTotal.Inc()
		return nil, fmt.Errorf("persisting identification: %w", err)
	}

	p.log.Info("classification stored",
		"token", req.Token.String(),
		"id", record.ID,
		"label", primary,
		"confidence", confidence)

	result.Record = record
	return result, nil
}
