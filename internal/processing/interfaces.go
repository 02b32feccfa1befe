package processing

import (
	"context"

	"coc_roster_eval/internal/app"
	"coc_roster_eval/internal/domain/roster"
	"coc_roster_eval/internal/domain/scoring"
	"coc_roster_eval/internal/history"
)

// CoCClientInterface defines the API client methods used by the evaluator
type CoCClientInterface interface {
	GetClan(ctx context.Context, clanTag string) (*app.ClanResponse, error)
	GetPlayer(ctx context.Context, playerTag string) (*app.Player, error)
	GetLeagueGroup(ctx context.Context, clanTag string) (*app.LeagueGroup, error)
	GetLeagueWar(ctx context.Context, warTag string) (*app.ClanWar, error)
	GetCurrentWar(ctx context.Context, clanTag string) (*app.ClanWar, error)
}

// HistoryProviderInterface defines the historical stats lookup used by the evaluator
type HistoryProviderInterface interface {
	Stats(memberTag string) (history.History, error)
	Reload()
}

// PolicyStoreInterface defines the policy document access used by the evaluator
type PolicyStoreInterface interface {
	LoadWeights() scoring.ScoringWeights
	LoadRequirements() roster.DonationRequirements
}

// SnapshotStoreInterface defines the war snapshot persistence used during
// CWL participation collection
type SnapshotStoreInterface interface {
	SaveWarSnapshot(snap *app.WarSnapshot) error
	HasWarSnapshot(warTag string) bool
}

// ParticipationServiceInterface defines the war telemetry collection used
// by the evaluator
type ParticipationServiceInterface interface {
	FetchParticipation(ctx context.Context, clanTag string) (*ParticipationResult, error)
	ArchiveCurrentWar(ctx context.Context, clanTag string) error
}
