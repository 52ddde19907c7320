package ports

import (
	"pillartwo/domain/entity"
)

// EntityStore is the read side of the roster. Every returned entity is a
// deep copy.
type EntityStore interface {
	All() []entity.Entity
	ByID(id int) (entity.Entity, bool)
	ByRegion(region string) []entity.Entity
	BelowETR(threshold float64) []entity.Entity
	WithTopUpTax() []entity.Entity
	Anomalous() []entity.Entity
	JurisdictionAggregates() []entity.JurisdictionAggregate
	SummaryStatistics() entity.SummaryStatistics
}

// Annotator computes an annotation for one entity.
type Annotator func(e entity.Entity) entity.Annotation

// AnnotatingStore lets a classifier fill in annotations, at most once per
// entity.
type AnnotatingStore interface {
	EntityStore
	// AnnotateOnce runs fn for every entity that has not been annotated yet
	// and returns the number of entities it annotated.
	AnnotateOnce(fn Annotator) int
}
