package policy

import (
	"encoding/json"
	"fmt"
	"math"

	"coc_roster_eval/internal/domain/roster"
	"coc_roster_eval/internal/domain/scoring"

	"github.com/rs/zerolog/log"
)

// Document keys and current schema versions. Migrated documents are written
// back immediately, so a migration runs at most once per document.
const (
	WeightsDocKey      = "scoring_weights"
	RequirementsDocKey = "donation_requirements"

	weightsSchemaVersion      = 1
	requirementsSchemaVersion = 2
)

// DocumentStore is the persistence boundary for policy documents
type DocumentStore interface {
	GetDocument(key string, out interface{}) (bool, error)
	PutDocument(key string, doc interface{}) error
}

// Store loads and saves the two policy documents: scoring weights and
// donation requirements. Reads never fail the caller; a missing or corrupt
// document degrades to the hard-coded defaults. Writes are validated and
// rejected with a descriptive error, leaving the stored document unchanged.
type Store struct {
	docs DocumentStore
}

func NewStore(docs DocumentStore) *Store {
	return &Store{docs: docs}
}

type weightsDocument struct {
	SchemaVersion int                    `json:"schemaVersion"`
	Weights       scoring.ScoringWeights `json:"weights"`
}

type requirementsDocument struct {
	SchemaVersion int                         `json:"schemaVersion"`
	Roles         roster.DonationRequirements `json:"roles"`
}

// LoadWeights returns the stored scoring weights, migrating legacy
// documents, or the defaults when nothing usable is stored.
func (s *Store) LoadWeights() scoring.ScoringWeights {
	var raw json.RawMessage
	found, err := s.docs.GetDocument(WeightsDocKey, &raw)
	if err != nil {
		log.Warn().Err(err).Msg("Scoring weights document unreadable, using defaults")
		return scoring.DefaultWeights()
	}
	if !found {
		return scoring.DefaultWeights()
	}

	doc, migrated, err := migrateWeights(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Scoring weights document unparseable, using defaults")
		return scoring.DefaultWeights()
	}

	if migrated {
		if err := s.docs.PutDocument(WeightsDocKey, doc); err != nil {
			log.Error().Err(err).Msg("Failed to write back migrated scoring weights")
		} else {
			log.Info().Msg("Migrated scoring weights document to current schema")
		}
	}

	return doc.Weights
}

// SaveWeights validates and persists a new weight vector. Negative values
// are tolerated per policy; non-finite values are rejected.
func (s *Store) SaveWeights(weights scoring.ScoringWeights) error {
	for name, value := range map[string]float64{
		"townHall":       weights.TownHall,
		"warStars":       weights.WarStars,
		"donations":      weights.Donations,
		"warPreference":  weights.WarPreference,
		"leagueTier":     weights.LeagueTier,
		"avgStars":       weights.AvgStars,
		"avgDestruction": weights.AvgDestruction,
		"threeStarRate":  weights.ThreeStarRate,
		"participation":  weights.Participation,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("weight %s must be finite, got %f", name, value)
		}
	}

	return s.docs.PutDocument(WeightsDocKey, weightsDocument{
		SchemaVersion: weightsSchemaVersion,
		Weights:       weights,
	})
}

// LoadRequirements returns the stored donation requirements, migrating
// legacy documents, or the defaults when nothing usable is stored.
func (s *Store) LoadRequirements() roster.DonationRequirements {
	var raw json.RawMessage
	found, err := s.docs.GetDocument(RequirementsDocKey, &raw)
	if err != nil {
		log.Warn().Err(err).Msg("Donation requirements document unreadable, using defaults")
		return roster.DefaultRequirements()
	}
	if !found {
		return roster.DefaultRequirements()
	}

	doc, migrated, err := migrateRequirements(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Donation requirements document unparseable, using defaults")
		return roster.DefaultRequirements()
	}

	if migrated {
		if err := s.docs.PutDocument(RequirementsDocKey, doc); err != nil {
			log.Error().Err(err).Msg("Failed to write back migrated donation requirements")
		} else {
			log.Info().Msg("Migrated donation requirements document to current schema")
		}
	}

	return doc.Roles
}

// SaveRequirements validates and persists a new requirements document. A
// rejected document leaves the stored one untouched.
func (s *Store) SaveRequirements(reqs roster.DonationRequirements) error {
	if err := reqs.Validate(); err != nil {
		return fmt.Errorf("invalid donation requirements: %w", err)
	}

	return s.docs.PutDocument(RequirementsDocKey, requirementsDocument{
		SchemaVersion: requirementsSchemaVersion,
		Roles:         reqs,
	})
}
