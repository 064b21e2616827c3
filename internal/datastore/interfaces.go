// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Mark0fPride/app-cnn/internal/conf"
	"github.com/Mark0fPride/app-cnn/internal/errors"
)

// Interface abstracts the underlying database implementation and defines the
// operations the pipeline needs from the record store.
type Interface interface {
	Open() error
	Close() error

	Save(identification *Identification) error
	Update(identification *Identification) error
	Delete(identification *Identification) error
	DeleteAll() error
	DeleteByIDs(ids []uint) error

	Get(id uint) (*Identification, error)
	GetAll() ([]Identification, error)
	GetMostRecent() (*Identification, error)
	GetByDateRange(from, to int64) ([]Identification, error)

	WatchAll(ctx context.Context) <-chan []Identification
	WatchByID(ctx context.Context, id uint) <-chan *Identification
	WatchMostRecent(ctx context.Context) <-chan *Identification
	WatchByDateRange(ctx context.Context, from, to int64) <-chan []Identification
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB      *gorm.DB // GORM database instance
	changes notifier // broadcasts after every committed mutation
}

// New creates a new datastore instance based on the provided settings.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// Save inserts a new identification record. Conflicting inserts are ignored
// rather than failed, mirroring an insert-or-ignore policy.
func (ds *DataStore) Save(identification *Identification) error {
	if err := ds.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(identification).Error; err != nil {
		return errors.New(fmt.Errorf("saving identification: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	ds.changes.broadcast()
	return nil
}

// Update replaces a stored record in full by its primary key.
// Last writer wins, there is no version check.
func (ds *DataStore) Update(identification *Identification) error {
	if identification.ID == 0 {
		return errors.Newf("cannot update identification without an ID").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}
	// Session with FullSaveAssociations off and Save performs a full-row
	// update, including fields reset to zero values.
	if err := ds.DB.Session(&gorm.Session{FullSaveAssociations: false}).Save(identification).Error; err != nil {
		return errors.New(fmt.Errorf("updating identification %d: %w", identification.ID, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	ds.changes.broadcast()
	return nil
}

// Delete removes a single identification record.
func (ds *DataStore) Delete(identification *Identification) error {
	if err := ds.DB.Delete(identification).Error; err != nil {
		return errors.New(fmt.Errorf("deleting identification %d: %w", identification.ID, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	ds.changes.broadcast()
	return nil
}

// DeleteAll removes every identification record. Deleting an already empty
// store is not an error.
func (ds *DataStore) DeleteAll() error {
	if err := ds.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Identification{}).Error; err != nil {
		return errors.New(fmt.Errorf("deleting all identifications: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	ds.changes.broadcast()
	return nil
}

// DeleteByIDs removes exactly the records with the given ids.
func (ds *DataStore) DeleteByIDs(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := ds.DB.Delete(&Identification{}, ids).Error; err != nil {
		return errors.New(fmt.Errorf("deleting identifications by ids: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	ds.changes.broadcast()
	return nil
}

// Get retrieves an identification record by its ID. A missing record
// returns nil without error.
func (ds *DataStore) Get(id uint) (*Identification, error) {
	var identification Identification
	err := ds.DB.First(&identification, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, errors.New(fmt.Errorf("getting identification %d: %w", id, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return &identification, nil
}

// GetAll retrieves every identification record in store order.
func (ds *DataStore) GetAll() ([]Identification, error) {
	var identifications []Identification
	if err := ds.DB.Find(&identifications).Error; err != nil {
		return nil, errors.New(fmt.Errorf("getting all identifications: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return identifications, nil
}

// GetMostRecent retrieves the newest record by capture timestamp, or nil
// when the store is empty.
func (ds *DataStore) GetMostRecent() (*Identification, error) {
	var identification Identification
	err := ds.DB.Order("captured_at DESC").First(&identification).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, errors.New(fmt.Errorf("getting most recent identification: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return &identification, nil
}

// GetByDateRange retrieves records whose capture timestamp falls within
// [from, to], inclusive at both ends.
func (ds *DataStore) GetByDateRange(from, to int64) ([]Identification, error) {
	var identifications []Identification
	if err := ds.DB.Where("captured_at BETWEEN ? AND ?", from, to).Find(&identifications).Error; err != nil {
		return nil, errors.New(fmt.Errorf("getting identifications between %d and %d: %w", from, to, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return identifications, nil
}
