// Package memory holds the entity roster in process memory.
package memory

import (
	"fmt"
	"sync"

	"pillartwo/domain/entity"
	"pillartwo/domain/rules"
	"pillartwo/internal"
	"pillartwo/ports"
)

// Store is a fixed roster with copy-on-read queries. The only mutation is the
// annotation pass, which runs at most once per entity.
type Store struct {
	mu       sync.RWMutex
	entities []entity.Entity
	index    map[int]int
	once     []sync.Once

	regions     map[string][]string
	minimumRate float64
	logger      *internal.Logger
}

var _ ports.AnnotatingStore = (*Store)(nil)

// NewStore copies the given entities into a new store. IDs must be unique.
func NewStore(entities []entity.Entity, cfg rules.Config, logger *internal.Logger) (*Store, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Store{
		entities:    entity.CloneAll(entities),
		index:       make(map[int]int, len(entities)),
		once:        make([]sync.Once, len(entities)),
		regions:     cfg.Regions,
		minimumRate: cfg.MinimumRate,
		logger:      logger,
	}
	for i, e := range s.entities {
		if _, dup := s.index[e.ID]; dup {
			return nil, fmt.Errorf("duplicate entity id %d", e.ID)
		}
		s.index[e.ID] = i
	}
	logger.Debug("entity store loaded %d entities", len(s.entities))
	return s, nil
}

// All returns the full roster in load order.
func (s *Store) All() []entity.Entity {
	return s.filter(func(entity.Entity) bool { return true })
}

// ByID looks up one entity.
func (s *Store) ByID(id int) (entity.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return entity.Entity{}, false
	}
	return s.entities[i].Clone(), true
}

// ByRegion returns entities whose jurisdiction belongs to the region.
// "all" returns the roster; an unknown region returns nothing.
func (s *Store) ByRegion(region string) []entity.Entity {
	if region == rules.RegionAll {
		return s.All()
	}
	countries, ok := s.regions[region]
	if !ok {
		s.logger.Debug("unknown region %q", region)
		return []entity.Entity{}
	}
	members := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		members[c] = struct{}{}
	}
	return s.filter(func(e entity.Entity) bool {
		_, ok := members[e.Jurisdiction]
		return ok
	})
}

// BelowETR returns entities with an ETR strictly below threshold.
func (s *Store) BelowETR(threshold float64) []entity.Entity {
	return s.filter(func(e entity.Entity) bool { return e.JurisdictionalETR < threshold })
}

// WithTopUpTax returns entities with a positive reported top-up tax.
func (s *Store) WithTopUpTax() []entity.Entity {
	return s.filter(func(e entity.Entity) bool { return e.TopUpTax > 0 })
}

// Anomalous returns entities flagged by the annotation pass.
func (s *Store) Anomalous() []entity.Entity {
	return s.filter(entity.Entity.IsAnomaly)
}

// JurisdictionAggregates rolls the roster up by jurisdiction.
func (s *Store) JurisdictionAggregates() []entity.JurisdictionAggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entity.Aggregate(s.entities)
}

// SummaryStatistics summarizes the roster against the minimum rate.
func (s *Store) SummaryStatistics() entity.SummaryStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entity.Summarize(s.entities, s.minimumRate)
}

// AnnotateOnce attaches fn's annotation to every entity that has none.
// Entities already annotated, by this or an earlier call, are skipped.
func (s *Store) AnnotateOnce(fn ports.Annotator) int {
	annotated := 0
	for i := range s.once {
		s.once[i].Do(func() {
			s.mu.RLock()
			e := s.entities[i].Clone()
			s.mu.RUnlock()
			if e.Annotated() {
				return
			}

			ann := fn(e)

			s.mu.Lock()
			s.entities[i].Annotation = &ann
			s.mu.Unlock()
			annotated++
		})
	}
	if annotated > 0 {
		s.logger.Debug("annotated %d entities", annotated)
	}
	return annotated
}

func (s *Store) filter(keep func(entity.Entity) bool) []entity.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}
