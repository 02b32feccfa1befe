package processing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coc_roster_eval/internal/app"
	"coc_roster_eval/internal/coc"
	"coc_roster_eval/internal/domain/cwl"

	"github.com/rs/zerolog/log"
)

// placeholderWarTag marks rounds the API has not scheduled yet
const placeholderWarTag = "#0"

// ParticipationResult is the outcome of collecting one CWL season for a clan
type ParticipationResult struct {
	Season    string
	State     string
	Summaries map[string]cwl.ParticipationSummary
}

// ParticipationService collects CWL round wars and aggregates per-member
// participation. Rounds that cannot be fetched are skipped so one bad war
// never discards the rest of the season.
type ParticipationService struct {
	cocClient         CoCClientInterface
	snapshots         SnapshotStoreInterface
	perRoundAllowance int
}

// NewParticipationService creates a participation service. perRoundAllowance
// is the attacks available to each member per CWL round, normally 1.
func NewParticipationService(cocClient CoCClientInterface, snapshots SnapshotStoreInterface, perRoundAllowance int) *ParticipationService {
	return &ParticipationService{
		cocClient:         cocClient,
		snapshots:         snapshots,
		perRoundAllowance: perRoundAllowance,
	}
}

// FetchParticipation walks the clan's current league group and aggregates
// attack usage per member. A clan outside any league season yields an empty
// result rather than an error. The tag is normalized up front because war
// records always carry '#'-prefixed uppercase tags, while the configured
// tag may be bare or lowercase.
func (ps *ParticipationService) FetchParticipation(ctx context.Context, clanTag string) (*ParticipationResult, error) {
	clanTag = coc.NormalizeTag(clanTag)

	group, err := ps.cocClient.GetLeagueGroup(ctx, clanTag)
	if err != nil {
		var notFound *coc.NotFoundError
		if errors.As(err, &notFound) {
			log.Info().
				Str("clan_tag", clanTag).
				Msg("Clan is not in a league season, skipping participation")
			return &ParticipationResult{Summaries: map[string]cwl.ParticipationSummary{}}, nil
		}
		return nil, fmt.Errorf("failed to get league group: %w", err)
	}

	warTags := collectWarTags(group)
	log.Debug().
		Str("season", group.Season).
		Str("state", group.State).
		Int("war_count", len(warTags)).
		Msg("Collected league group war tags")

	records := make([]cwl.CompetitionRecord, 0, len(warTags))
	for _, warTag := range warTags {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		war, err := ps.cocClient.GetLeagueWar(ctx, warTag)
		if err != nil {
			log.Warn().
				Err(err).
				Str("war_tag", warTag).
				Msg("Failed to fetch league war, skipping round")
			continue
		}

		record, ok := cwl.RecordFromWar(warTag, war, clanTag)
		if !ok {
			continue
		}
		records = append(records, record)

		ps.persistCompletedWar(warTag, group.Season, war)
	}

	return &ParticipationResult{
		Season:    group.Season,
		State:     group.State,
		Summaries: cwl.AggregateParticipation(records, ps.perRoundAllowance),
	}, nil
}

// ArchiveCurrentWar persists the clan's regular war once it has ended, so
// the history index covers regular wars alongside league rounds. A private
// war log reports 404 and is skipped quietly.
func (ps *ParticipationService) ArchiveCurrentWar(ctx context.Context, clanTag string) error {
	war, err := ps.cocClient.GetCurrentWar(ctx, coc.NormalizeTag(clanTag))
	if err != nil {
		var notFound *coc.NotFoundError
		if errors.As(err, &notFound) {
			log.Debug().
				Str("clan_tag", clanTag).
				Msg("Current war unavailable, skipping archive")
			return nil
		}
		return fmt.Errorf("failed to get current war: %w", err)
	}

	if war.State == "notInWar" {
		return nil
	}

	ps.persistCompletedWar(regularWarKey(war), "", war)
	return nil
}

// regularWarKey derives a stable snapshot key for a regular war, which has
// no war tag of its own. The opponent and end time identify the matchup.
func regularWarKey(war *app.ClanWar) string {
	return fmt.Sprintf("%s@%s", war.Opponent.Tag, war.EndTime)
}

// persistCompletedWar stores a finished war exactly once so the history
// index can replay it in later seasons. Persistence failures are logged and
// do not affect the current cycle.
func (ps *ParticipationService) persistCompletedWar(warTag, season string, war *app.ClanWar) {
	if war.State != "warEnded" || ps.snapshots.HasWarSnapshot(warTag) {
		return
	}

	snap := &app.WarSnapshot{
		WarTag:    warTag,
		Season:    season,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		War:       *war,
	}
	if err := ps.snapshots.SaveWarSnapshot(snap); err != nil {
		log.Error().
			Err(err).
			Str("war_tag", warTag).
			Msg("Failed to persist completed war snapshot")
		return
	}

	log.Info().
		Str("war_tag", warTag).
		Str("season", season).
		Msg("Persisted completed war snapshot")
}

// collectWarTags flattens the group's rounds into a deduplicated tag list,
// dropping the unscheduled-round placeholder.
func collectWarTags(group *app.LeagueGroup) []string {
	seen := make(map[string]bool)
	tags := make([]string, 0)
	for _, round := range group.Rounds {
		for _, warTag := range round.WarTags {
			if warTag == "" || warTag == placeholderWarTag || seen[warTag] {
				continue
			}
			seen[warTag] = true
			tags = append(tags, warTag)
		}
	}
	return tags
}
