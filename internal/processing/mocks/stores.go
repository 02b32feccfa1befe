package mocks

import (
	"sync"

	"coc_roster_eval/internal/app"
	"coc_roster_eval/internal/domain/roster"
	"coc_roster_eval/internal/domain/scoring"
	"coc_roster_eval/internal/history"
)

// MockHistoryProvider is a test double for the history.Provider
type MockHistoryProvider struct {
	mu sync.Mutex

	// Responses keyed by member tag; tags without an entry report no history
	Histories map[string]history.History
	StatsErr  error

	StatsCalledWithTags []string
	ReloadCalled        bool
}

// NewMockHistoryProvider creates a new mock history provider
func NewMockHistoryProvider() *MockHistoryProvider {
	return &MockHistoryProvider{Histories: make(map[string]history.History)}
}

func (m *MockHistoryProvider) Stats(memberTag string) (history.History, error) {
	m.mu.Lock()
	m.StatsCalledWithTags = append(m.StatsCalledWithTags, memberTag)
	m.mu.Unlock()

	if m.StatsErr != nil {
		return history.NoHistory(), m.StatsErr
	}
	if hist, ok := m.Histories[memberTag]; ok {
		return hist, nil
	}
	return history.NoHistory(), nil
}

func (m *MockHistoryProvider) Reload() {
	m.mu.Lock()
	m.ReloadCalled = true
	m.mu.Unlock()
}

// MockPolicyStore is a test double for the policy.Store
type MockPolicyStore struct {
	Weights      scoring.ScoringWeights
	Requirements roster.DonationRequirements

	LoadWeightsCalled      bool
	LoadRequirementsCalled bool
}

// NewMockPolicyStore creates a mock policy store seeded with the defaults
func NewMockPolicyStore() *MockPolicyStore {
	return &MockPolicyStore{
		Weights:      scoring.DefaultWeights(),
		Requirements: roster.DefaultRequirements(),
	}
}

func (m *MockPolicyStore) LoadWeights() scoring.ScoringWeights {
	m.LoadWeightsCalled = true
	return m.Weights
}

func (m *MockPolicyStore) LoadRequirements() roster.DonationRequirements {
	m.LoadRequirementsCalled = true
	return m.Requirements
}

// MockSnapshotStore is a test double for the storage.Store snapshot methods
type MockSnapshotStore struct {
	mu sync.Mutex

	Existing map[string]bool
	SaveErr  error

	Saved []*app.WarSnapshot
}

// NewMockSnapshotStore creates a new mock snapshot store
func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{Existing: make(map[string]bool)}
}

func (m *MockSnapshotStore) SaveWarSnapshot(snap *app.WarSnapshot) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saved = append(m.Saved, snap)
	m.Existing[snap.WarTag] = true
	return nil
}

func (m *MockSnapshotStore) HasWarSnapshot(warTag string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Existing[warTag]
}
