package mocks

import (
	"context"
	"fmt"
	"sync"

	"coc_roster_eval/internal/app"
)

// MockCoCClient is a test double for the coc.Client. Player responses are
// keyed by tag because the evaluator fetches profiles concurrently.
type MockCoCClient struct {
	mu sync.Mutex

	// Responses to return
	ClanResponse        *app.ClanResponse
	PlayerResponses     map[string]*app.Player
	LeagueGroupResponse *app.LeagueGroup
	LeagueWarResponses  map[string]*app.ClanWar
	CurrentWarResponse  *app.ClanWar

	// Errors to return
	ClanError        error
	PlayerErrors     map[string]error
	LeagueGroupError error
	LeagueWarErrors  map[string]error
	CurrentWarError  error

	// Call tracking
	GetClanCalled           bool
	GetLeagueGroupCalled    bool
	GetCurrentWarCalled     bool
	GetPlayerCalledWithTags []string
	GetLeagueWarCalledWith  []string
}

// NewMockCoCClient creates a new mock API client
func NewMockCoCClient() *MockCoCClient {
	return &MockCoCClient{
		PlayerResponses:    make(map[string]*app.Player),
		LeagueWarResponses: make(map[string]*app.ClanWar),
		PlayerErrors:       make(map[string]error),
		LeagueWarErrors:    make(map[string]error),
	}
}

func (m *MockCoCClient) GetClan(ctx context.Context, clanTag string) (*app.ClanResponse, error) {
	m.mu.Lock()
	m.GetClanCalled = true
	m.mu.Unlock()
	return m.ClanResponse, m.ClanError
}

func (m *MockCoCClient) GetPlayer(ctx context.Context, playerTag string) (*app.Player, error) {
	m.mu.Lock()
	m.GetPlayerCalledWithTags = append(m.GetPlayerCalledWithTags, playerTag)
	m.mu.Unlock()

	if err, ok := m.PlayerErrors[playerTag]; ok {
		return nil, err
	}
	if player, ok := m.PlayerResponses[playerTag]; ok {
		return player, nil
	}
	return nil, fmt.Errorf("no mock player for tag %s", playerTag)
}

func (m *MockCoCClient) GetLeagueGroup(ctx context.Context, clanTag string) (*app.LeagueGroup, error) {
	m.mu.Lock()
	m.GetLeagueGroupCalled = true
	m.mu.Unlock()
	return m.LeagueGroupResponse, m.LeagueGroupError
}

func (m *MockCoCClient) GetLeagueWar(ctx context.Context, warTag string) (*app.ClanWar, error) {
	m.mu.Lock()
	m.GetLeagueWarCalledWith = append(m.GetLeagueWarCalledWith, warTag)
	m.mu.Unlock()

	if err, ok := m.LeagueWarErrors[warTag]; ok {
		return nil, err
	}
	if war, ok := m.LeagueWarResponses[warTag]; ok {
		return war, nil
	}
	return nil, fmt.Errorf("no mock war for tag %s", warTag)
}

func (m *MockCoCClient) GetCurrentWar(ctx context.Context, clanTag string) (*app.ClanWar, error) {
	m.mu.Lock()
	m.GetCurrentWarCalled = true
	m.mu.Unlock()

	if m.CurrentWarError != nil {
		return nil, m.CurrentWarError
	}
	if m.CurrentWarResponse != nil {
		return m.CurrentWarResponse, nil
	}
	return nil, fmt.Errorf("no mock current war for clan %s", clanTag)
}
