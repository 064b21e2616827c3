package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mark0fPride/app-cnn/internal/conf"
	"github.com/Mark0fPride/app-cnn/internal/datastore"
	"github.com/Mark0fPride/app-cnn/internal/taxonomy"
)

// fakeScorer returns canned scores, standing in for the model.
type fakeScorer struct {
	scores []float32
	err    error
}

func (f *fakeScorer) RawScores(_ context.Context, _ string) ([]float32, error) {
	return f.scores, f.err
}

func newTestPipeline(t *testing.T, scorer Scorer, minConfidence float64) (*Pipeline, datastore.Interface) {
	t.Helper()

	settings := &conf.Settings{}
	settings.Classifier.MinConfidence = minConfidence
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = t.TempDir() + "/test.db"

	store := datastore.New(settings)
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	tax, err := taxonomy.Load("en")
	require.NoError(t, err)

	return New(scorer, tax, store, settings), store
}

// rankedScores builds a score vector over all classes where class 5
// (Boletus edulis) wins, followed by classes 1 through 4.
func rankedScores(t *testing.T) []float32 {
	t.Helper()
	tax, err := taxonomy.Load("en")
	require.NoError(t, err)

	scores := make([]float32, tax.NumClasses())
	scores[5] = 5
	scores[1] = 4
	scores[2] = 3
	scores[3] = 2
	scores[4] = 1
	return scores
}

func TestClassifyStoresAcceptedResult(t *testing.T) {
	t.Parallel()

	pipeline, store := newTestPipeline(t, &fakeScorer{scores: rankedScores(t)}, 10.0)

	req := NewRequest("/photos/boletus.jpg")
	result, err := pipeline.Classify(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, req.Token, result.Token)
	assert.True(t, result.Recognized())
	assert.Equal(t, "Boletus edulis", result.Label)
	assert.Equal(t, "Porcini", result.CommonName)
	assert.Greater(t, result.Confidence, 10.0)

	require.NotNil(t, result.Record)
	record := result.Record
	assert.NotZero(t, record.ID)
	assert.Equal(t, "/photos/boletus.jpg", record.ImagePath)
	assert.Equal(t, "Boletus edulis", record.ScientificName)
	assert.Equal(t, req.CapturedAt.UnixMilli(), record.CapturedAt)
	assert.Equal(t, "Edible", record.Edibility)
	require.NotNil(t, record.Confidence)
	assert.InDelta(t, result.Confidence, *record.Confidence, 1e-9)

	// Runner-ups in rank order, never including the primary.
	assert.Equal(t, []string{
		"Amanita muscaria",
		"Amanita phalloides",
		"Amanita rubescens",
		"Armillaria mellea",
	}, record.Alternatives)
	assert.Len(t, record.Alternatives, datastore.MaxAlternatives)
	assert.NotContains(t, record.Alternatives, record.ScientificName)

	// Exactly one record persisted.
	all, err := store.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, record.ID, all[0].ID)
}

func TestClassifyBelowGateDoesNotPersist(t *testing.T) {
	t.Parallel()

	tax, err := taxonomy.Load("en")
	require.NoError(t, err)

	// Uniform scores: each class gets 100/N percent, well below the gate.
	scores := make([]float32, tax.NumClasses())
	pipeline, store := newTestPipeline(t, &fakeScorer{scores: scores}, 10.0)

	result, err := pipeline.Classify(context.Background(), NewRequest("/photos/blurry.jpg"))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.False(t, result.Recognized())
	assert.Nil(t, result.Record)
	// The best guess is still reported: ties resolve to the first class.
	assert.Equal(t, tax.Classes()[0], result.Label)
	assert.InDelta(t, 100.0/float64(tax.NumClasses()), result.Confidence, 1e-9)

	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestClassifyGateIsInclusive(t *testing.T) {
	t.Parallel()

	scores := rankedScores(t)
	// Derive the exact top-1 percentage the classify path will compute.
	probs := softmax(scores)
	exact := probs[rankIndices(probs)[0]] * 100

	t.Run("exactly at the gate is accepted", func(t *testing.T) {
		t.Parallel()
		pipeline, store := newTestPipeline(t, &fakeScorer{scores: scores}, exact)

		result, err := pipeline.Classify(context.Background(), NewRequest("/photos/edge.jpg"))
		require.NoError(t, err)
		assert.True(t, result.Recognized())

		all, err := store.GetAll()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("just below the gate is rejected", func(t *testing.T) {
		t.Parallel()
		pipeline, store := newTestPipeline(t, &fakeScorer{scores: scores}, math.Nextafter(exact, math.Inf(1)))

		result, err := pipeline.Classify(context.Background(), NewRequest("/photos/edge.jpg"))
		require.NoError(t, err)
		assert.False(t, result.Recognized())

		all, err := store.GetAll()
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestClassifyScorerErrorPersistsNothing(t *testing.T) {
	t.Parallel()

	pipeline, store := newTestPipeline(t, &fakeScorer{err: assert.AnError}, 10.0)

	result, err := pipeline.Classify(context.Background(), NewRequest("/photos/broken.jpg"))
	require.Error(t, err)
	assert.Nil(t, result)

	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestClassifyRejectsMismatchedScoreLength(t *testing.T) {
	t.Parallel()

	pipeline, store := newTestPipeline(t, &fakeScorer{scores: []float32{1, 2, 3}}, 10.0)

	result, err := pipeline.Classify(context.Background(), NewRequest("/photos/short.jpg"))
	require.Error(t, err)
	assert.Nil(t, result)

	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNewRequestAssignsUniqueTokens(t *testing.T) {
	t.Parallel()

	first := NewRequest("/photos/a.jpg")
	second := NewRequest("/photos/a.jpg")
	assert.NotEqual(t, first.Token, second.Token)
	assert.False(t, first.CapturedAt.IsZero())
}
