package coc

import (
	"context"

	"coc_roster_eval/internal/app"
)

// CoCAPI defines the interface for interacting with the Clash of Clans API.
// This separates infrastructure concerns from business logic.
type CoCAPI interface {
	// Core API endpoints
	GetClan(ctx context.Context, clanTag string) (*app.ClanResponse, error)
	GetPlayer(ctx context.Context, playerTag string) (*app.Player, error)
	GetLeagueGroup(ctx context.Context, clanTag string) (*app.LeagueGroup, error)
	GetLeagueWar(ctx context.Context, warTag string) (*app.ClanWar, error)
	GetCurrentWar(ctx context.Context, clanTag string) (*app.ClanWar, error)

	// API call tracking
	GetAPICallCount() int64
	IncrementAPICall()
	ResetAPICallCount()
}
