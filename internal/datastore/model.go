// model.go this code defines the data model for the application
package datastore

// MaxAlternatives is the maximum number of runner-up labels kept per record.
const MaxAlternatives = 4

// Identification represents a single stored classification result.
type Identification struct {
	ID             uint   `gorm:"primaryKey"`
	ImagePath      string // locator of the source image, owned by the platform media store
	ScientificName string `gorm:"index:idx_identifications_sciname"` // current best label
	// Runner-up labels in rank order, excluding the current best label.
	Alternatives []string `gorm:"serializer:json"`
	CapturedAt   int64    `gorm:"index:idx_identifications_captured"` // epoch milliseconds, set once at creation
	// Model confidence in percent. Nil after a manual correction.
	Confidence *float64
	Edibility  string // localized edibility display for the current best label
}

// Copy creates a deep copy of the Identification struct
func (r *Identification) Copy() Identification {
	identification := *r
	if r.Alternatives != nil {
		identification.Alternatives = make([]string, len(r.Alternatives))
		copy(identification.Alternatives, r.Alternatives)
	}
	if r.Confidence != nil {
		confidence := *r.Confidence
		identification.Confidence = &confidence
	}
	return identification
}

// HasAlternative reports whether label is among the runner-up labels.
func (r *Identification) HasAlternative(label string) bool {
	for _, alternative := range r.Alternatives {
		if alternative == label {
			return true
		}
	}
	return false
}
