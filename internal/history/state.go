package history

import "github.com/Mark0fPride/app-cnn/internal/datastore"

// State is the sealed result type emitted by the engine. Consumers switch
// over the concrete variants; there are no nullable fields or sentinels.
type State interface {
	searchState()
}

// Idle is emitted before the first query is set.
type Idle struct{}

// Loading is emitted when a new query starts and no results for it have
// arrived yet.
type Loading struct {
	Query Query
}

// Results carries the filtered records for the query that produced them.
type Results struct {
	Query   Query
	Records []datastore.Identification
}

// Failed carries the error that terminated a query's stream.
type Failed struct {
	Query Query
	Err   error
}

func (Idle) searchState()    {}
func (Loading) searchState() {}
func (Results) searchState() {}
func (Failed) searchState()  {}
