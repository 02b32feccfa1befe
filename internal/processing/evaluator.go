package processing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"coc_roster_eval/internal/app"
	"coc_roster_eval/internal/domain/cwl"
	"coc_roster_eval/internal/domain/roster"
	"coc_roster_eval/internal/domain/scoring"
	"coc_roster_eval/internal/history"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentPlayerFetches bounds the player profile fan-out so a large
// roster does not trip API rate limits
const maxConcurrentPlayerFetches = 4

// MemberEvaluation is the full evaluation of one clan member for a cycle
type MemberEvaluation struct {
	Profile        roster.MemberProfile     `json:"profile"`
	Participation  cwl.ParticipationSummary `json:"cwlParticipation"`
	History        history.History          `json:"-"`
	Features       scoring.FeatureVector    `json:"-"`
	Score          float64                  `json:"score"`
	DisplayScore   int                      `json:"displayScore"`
	Recommendation roster.Recommendation    `json:"recommendation"`
}

// ClanEvaluation is one completed evaluation cycle for a clan, with members
// ordered by descending score
type ClanEvaluation struct {
	ClanTag      string                      `json:"clanTag"`
	ClanName     string                      `json:"clanName"`
	Season       string                      `json:"season,omitempty"`
	GeneratedAt  time.Time                   `json:"generatedAt"`
	Weights      scoring.ScoringWeights      `json:"weights"`
	Requirements roster.DonationRequirements `json:"requirements"`
	Members      []MemberEvaluation          `json:"members"`
}

// Evaluator runs evaluation cycles for a single clan. Starting a new cycle
// supersedes any cycle still in flight: the older cycle is cancelled and its
// result discarded. The most recent completed cycle is cached so policy
// changes can be replayed without touching the network.
type Evaluator struct {
	cocClient     CoCClientInterface
	historyStats  HistoryProviderInterface
	policyStore   PolicyStoreInterface
	participation ParticipationServiceInterface
	config        *app.Config

	mu            sync.Mutex
	cancelCurrent context.CancelFunc
	generation    int64
	lastResult    *ClanEvaluation
}

// NewEvaluator creates an Evaluator with interface dependencies for testability
func NewEvaluator(
	cocClient CoCClientInterface,
	historyStats HistoryProviderInterface,
	policyStore PolicyStoreInterface,
	participation ParticipationServiceInterface,
	config *app.Config,
) *Evaluator {
	return &Evaluator{
		cocClient:     cocClient,
		historyStats:  historyStats,
		policyStore:   policyStore,
		participation: participation,
		config:        config,
	}
}

// beginCycle cancels any in-flight cycle and registers a new one
func (e *Evaluator) beginCycle(parent context.Context) (context.Context, context.CancelFunc, int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelCurrent != nil {
		e.cancelCurrent()
		log.Debug().Int64("generation", e.generation).Msg("Superseded in-flight evaluation cycle")
	}

	ctx, cancel := context.WithCancel(parent)
	e.cancelCurrent = cancel
	e.generation++
	return ctx, cancel, e.generation
}

// commitResult caches the cycle result unless a newer cycle has started
func (e *Evaluator) commitResult(generation int64, result *ClanEvaluation) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if generation != e.generation {
		return false
	}
	e.lastResult = result
	e.cancelCurrent = nil
	return true
}

// EvaluateClan runs one full evaluation cycle: roster fetch, CWL
// participation, per-member profile and history fan-out, scoring, and
// classification. Individual member failures are logged and skipped;
// the cycle only fails when the roster itself cannot be fetched or the
// cycle is superseded.
func (e *Evaluator) EvaluateClan(ctx context.Context) (*ClanEvaluation, error) {
	ctx, cancel, generation := e.beginCycle(ctx)
	defer cancel()

	startTime := time.Now()
	log.Info().
		Str("clan_tag", e.config.ClanTag).
		Int64("generation", generation).
		Msg("Starting evaluation cycle")

	clanResp, err := e.cocClient.GetClan(ctx, e.config.ClanTag)
	if err != nil {
		return nil, fmt.Errorf("failed to get clan roster: %w", err)
	}

	participation, err := e.participation.FetchParticipation(ctx, e.config.ClanTag)
	if err != nil {
		return nil, fmt.Errorf("failed to collect league participation: %w", err)
	}

	// Regular war archival feeds the history index only and never aborts
	// the cycle.
	if err := e.participation.ArchiveCurrentWar(ctx, e.config.ClanTag); err != nil {
		log.Warn().
			Err(err).
			Str("clan_tag", e.config.ClanTag).
			Msg("Failed to archive current war, continuing cycle")
	}

	weights := e.policyStore.LoadWeights()
	requirements := e.policyStore.LoadRequirements()

	evaluations := make([]*MemberEvaluation, len(clanResp.MemberList))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPlayerFetches)

	for i, member := range clanResp.MemberList {
		i, member := i, member
		g.Go(func() error {
			eval, err := e.evaluateMember(gctx, member, participation.Summaries, weights, requirements)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn().
					Err(err).
					Str("member_tag", member.Tag).
					Str("member_name", member.Name).
					Msg("Failed to evaluate member, skipping")
				return nil
			}
			evaluations[i] = eval
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluation cycle aborted: %w", err)
	}

	members := make([]MemberEvaluation, 0, len(evaluations))
	for _, eval := range evaluations {
		if eval != nil {
			members = append(members, *eval)
		}
	}
	sortEvaluations(members)

	result := &ClanEvaluation{
		ClanTag:      clanResp.Tag,
		ClanName:     clanResp.Name,
		Season:       participation.Season,
		GeneratedAt:  time.Now().UTC(),
		Weights:      weights,
		Requirements: requirements,
		Members:      members,
	}

	if !e.commitResult(generation, result) {
		return nil, errors.New("evaluation cycle superseded by a newer cycle")
	}

	log.Info().
		Str("clan_tag", result.ClanTag).
		Int("members_evaluated", len(members)).
		Int("members_skipped", len(clanResp.MemberList)-len(members)).
		Dur("duration", time.Since(startTime)).
		Msg("Completed evaluation cycle")

	return result, nil
}

// evaluateMember merges the roster entry with the player profile, looks up
// stored war history, and produces the member's score and recommendation
func (e *Evaluator) evaluateMember(
	ctx context.Context,
	member app.ClanMember,
	summaries map[string]cwl.ParticipationSummary,
	weights scoring.ScoringWeights,
	requirements roster.DonationRequirements,
) (*MemberEvaluation, error) {
	role, err := roster.ParseRole(member.Role)
	if err != nil {
		return nil, fmt.Errorf("unrecognized roster role: %w", err)
	}

	player, err := e.cocClient.GetPlayer(ctx, member.Tag)
	if err != nil {
		return nil, fmt.Errorf("failed to get player profile: %w", err)
	}

	hist, err := e.historyStats.Stats(member.Tag)
	if err != nil {
		log.Warn().
			Err(err).
			Str("member_tag", member.Tag).
			Msg("War history unavailable, scoring without it")
		hist = history.NoHistory()
	}

	profile := roster.MemberProfile{
		Tag:               member.Tag,
		Name:              member.Name,
		Role:              role,
		TownHallLevel:     player.TownHallLevel,
		Donations:         member.Donations,
		DonationsReceived: member.DonationsReceived,
		WarStars:          player.WarStars,
		Trophies:          member.Trophies,
		WarOptedIn:        player.WarPreference == "in",
	}
	if member.League != nil {
		profile.LeagueTierID = member.League.ID
		profile.LeagueName = member.League.Name
	}

	part := summaries[member.Tag]
	features := scoring.ExtractFeatures(profile, hist, part)
	score := scoring.Score(features, weights)

	return &MemberEvaluation{
		Profile:        profile,
		Participation:  part,
		History:        hist,
		Features:       features,
		Score:          score,
		DisplayScore:   scoring.DisplayScore(score),
		Recommendation: roster.Classify(role, member.Donations, requirements),
	}, nil
}

// Recompute replays the cached cycle under new policy settings without any
// network traffic. The cached cycle itself is left untouched.
func (e *Evaluator) Recompute(weights scoring.ScoringWeights, requirements roster.DonationRequirements) (*ClanEvaluation, error) {
	e.mu.Lock()
	last := e.lastResult
	e.mu.Unlock()

	if last == nil {
		return nil, errors.New("no completed evaluation cycle to recompute")
	}

	members := make([]MemberEvaluation, len(last.Members))
	for i, member := range last.Members {
		member.Score = scoring.Score(member.Features, weights)
		member.DisplayScore = scoring.DisplayScore(member.Score)
		member.Recommendation = roster.Classify(member.Profile.Role, member.Profile.Donations, requirements)
		members[i] = member
	}
	sortEvaluations(members)

	return &ClanEvaluation{
		ClanTag:      last.ClanTag,
		ClanName:     last.ClanName,
		Season:       last.Season,
		GeneratedAt:  last.GeneratedAt,
		Weights:      weights,
		Requirements: requirements,
		Members:      members,
	}, nil
}

// LastEvaluation returns the most recent committed cycle, or nil
func (e *Evaluator) LastEvaluation() *ClanEvaluation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastResult
}

// sortEvaluations orders members by unrounded score descending, breaking
// ties by tag so equal scores render in a stable order
func sortEvaluations(members []MemberEvaluation) {
	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}
		return members[i].Profile.Tag < members[j].Profile.Tag
	})
}
