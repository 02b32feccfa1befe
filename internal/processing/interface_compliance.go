package processing

import (
	"coc_roster_eval/internal/coc"
	"coc_roster_eval/internal/history"
	"coc_roster_eval/internal/policy"
	"coc_roster_eval/internal/storage"
)

// Compile-time interface compliance checks
// These will cause compilation errors if the types don't implement the interfaces

var (
	_ CoCClientInterface            = (*coc.Client)(nil)
	_ HistoryProviderInterface      = (*history.Provider)(nil)
	_ PolicyStoreInterface          = (*policy.Store)(nil)
	_ SnapshotStoreInterface        = (*storage.Store)(nil)
	_ ParticipationServiceInterface = (*ParticipationService)(nil)
)
