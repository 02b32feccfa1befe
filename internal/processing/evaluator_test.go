package processing

import (
	"context"
	"errors"
	"testing"

	"coc_roster_eval/internal/app"
	"coc_roster_eval/internal/domain/cwl"
	"coc_roster_eval/internal/domain/roster"
	"coc_roster_eval/internal/domain/scoring"
	"coc_roster_eval/internal/history"
	"coc_roster_eval/internal/processing/mocks"
)

type stubParticipation struct {
	result       *ParticipationResult
	err          error
	calls        int
	archiveCalls int
	archiveErr   error
}

func (s *stubParticipation) FetchParticipation(ctx context.Context, clanTag string) (*ParticipationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubParticipation) ArchiveCurrentWar(ctx context.Context, clanTag string) error {
	s.archiveCalls++
	return s.archiveErr
}

func emptyParticipation() *stubParticipation {
	return &stubParticipation{
		result: &ParticipationResult{Summaries: map[string]cwl.ParticipationSummary{}},
	}
}

func testRoster() *app.ClanResponse {
	return &app.ClanResponse{
		Tag:  testClanTag,
		Name: "Test Clan",
		MemberList: []app.ClanMember{
			{Tag: "#LEAD", Name: "Lead", Role: "leader", Donations: 5000, Trophies: 5200,
				League: &app.League{ID: 29000022, Name: "Legend League"}},
			{Tag: "#ELD", Name: "Eld", Role: "admin", Donations: 300, Trophies: 3100},
			{Tag: "#MEM", Name: "Mem", Role: "member", Donations: 1200, Trophies: 2800},
		},
	}
}

func testClientWithRoster() *mocks.MockCoCClient {
	client := mocks.NewMockCoCClient()
	client.ClanResponse = testRoster()
	client.PlayerResponses["#LEAD"] = &app.Player{Tag: "#LEAD", TownHallLevel: 16, WarStars: 2000, WarPreference: "in"}
	client.PlayerResponses["#ELD"] = &app.Player{Tag: "#ELD", TownHallLevel: 14, WarStars: 800, WarPreference: "in"}
	client.PlayerResponses["#MEM"] = &app.Player{Tag: "#MEM", TownHallLevel: 13, WarStars: 500, WarPreference: "out"}
	return client
}

func newTestEvaluator(client *mocks.MockCoCClient, hist *mocks.MockHistoryProvider, part ParticipationServiceInterface) *Evaluator {
	if hist == nil {
		hist = mocks.NewMockHistoryProvider()
	}
	config := &app.Config{ClanTag: testClanTag, CWLAttacksPerRound: 1}
	return NewEvaluator(client, hist, mocks.NewMockPolicyStore(), part, config)
}

func TestEvaluateClanFullCycle(t *testing.T) {
	client := testClientWithRoster()
	histProvider := mocks.NewMockHistoryProvider()
	histProvider.Histories["#MEM"] = history.HistoryOf(history.Stats{
		AvgStars:       2.1,
		AvgDestruction: 78.5,
		ThreeStarRate:  40,
		SampleSize:     10,
	})
	participation := &stubParticipation{
		result: &ParticipationResult{
			Season: "2026-08",
			Summaries: map[string]cwl.ParticipationSummary{
				"#MEM": {AttacksUsed: 5, AttacksPossible: 6, RoundsParticipated: 6},
			},
		},
	}

	evaluator := newTestEvaluator(client, histProvider, participation)

	result, err := evaluator.EvaluateClan(context.Background())
	if err != nil {
		t.Fatalf("EvaluateClan failed: %v", err)
	}

	if result.ClanName != "Test Clan" || result.Season != "2026-08" {
		t.Errorf("Expected clan metadata on result, got %+v", result)
	}
	if len(result.Members) != 3 {
		t.Fatalf("Expected 3 evaluated members, got %d", len(result.Members))
	}

	for i := 1; i < len(result.Members); i++ {
		if result.Members[i-1].Score < result.Members[i].Score {
			t.Errorf("Expected descending score order, got %f before %f",
				result.Members[i-1].Score, result.Members[i].Score)
		}
	}

	byTag := make(map[string]MemberEvaluation)
	for _, member := range result.Members {
		byTag[member.Profile.Tag] = member
	}

	if byTag["#LEAD"].Recommendation.Action != roster.ActionMaintain {
		t.Errorf("Expected leader maintained, got %v", byTag["#LEAD"].Recommendation)
	}
	if byTag["#ELD"].Recommendation.Action != roster.ActionDemote {
		t.Errorf("Expected underperforming elder demoted, got %v", byTag["#ELD"].Recommendation)
	}
	if byTag["#MEM"].Recommendation.Action != roster.ActionPromote {
		t.Errorf("Expected high-donation member promoted, got %v", byTag["#MEM"].Recommendation)
	}

	mem := byTag["#MEM"]
	if !mem.History.Present() {
		t.Error("Expected member war history attached")
	}
	if mem.Participation.AttacksUsed != 5 {
		t.Errorf("Expected participation carried onto evaluation, got %+v", mem.Participation)
	}
	if mem.Profile.WarOptedIn {
		t.Error("Expected warPreference out to map to opted out")
	}
	if byTag["#LEAD"].Profile.LeagueTierID != 29000022 {
		t.Errorf("Expected league tier on profile, got %d", byTag["#LEAD"].Profile.LeagueTierID)
	}

	for _, member := range result.Members {
		if member.Score != scoring.Score(member.Features, result.Weights) {
			t.Errorf("Score for %s inconsistent with its features", member.Profile.Tag)
		}
		if member.DisplayScore != scoring.DisplayScore(member.Score) {
			t.Errorf("DisplayScore for %s inconsistent with score", member.Profile.Tag)
		}
	}
}

func TestEvaluateClanSkipsFailedMembers(t *testing.T) {
	client := testClientWithRoster()
	delete(client.PlayerResponses, "#ELD")
	client.PlayerErrors["#ELD"] = errors.New("server error (status 503)")

	evaluator := newTestEvaluator(client, nil, emptyParticipation())

	result, err := evaluator.EvaluateClan(context.Background())
	if err != nil {
		t.Fatalf("Expected member failure to be isolated, got %v", err)
	}

	if len(result.Members) != 2 {
		t.Fatalf("Expected 2 evaluated members after skip, got %d", len(result.Members))
	}
	for _, member := range result.Members {
		if member.Profile.Tag == "#ELD" {
			t.Error("Expected failed member excluded from results")
		}
	}
}

func TestEvaluateClanSkipsUnrecognizedRole(t *testing.T) {
	client := testClientWithRoster()
	client.ClanResponse.MemberList[1].Role = "viceroy"

	evaluator := newTestEvaluator(client, nil, emptyParticipation())

	result, err := evaluator.EvaluateClan(context.Background())
	if err != nil {
		t.Fatalf("Expected unknown role to be isolated, got %v", err)
	}
	if len(result.Members) != 2 {
		t.Errorf("Expected unknown-role member skipped, got %d members", len(result.Members))
	}
}

func TestEvaluateClanRosterFetchFailure(t *testing.T) {
	client := mocks.NewMockCoCClient()
	client.ClanError = errors.New("server error (status 500)")

	evaluator := newTestEvaluator(client, nil, emptyParticipation())

	if _, err := evaluator.EvaluateClan(context.Background()); err == nil {
		t.Error("Expected roster fetch failure to fail the cycle")
	}
}

func TestEvaluateClanParticipationFailure(t *testing.T) {
	client := testClientWithRoster()
	participation := &stubParticipation{err: errors.New("server error (status 500)")}

	evaluator := newTestEvaluator(client, nil, participation)

	if _, err := evaluator.EvaluateClan(context.Background()); err == nil {
		t.Error("Expected participation collection failure to fail the cycle")
	}
}

func TestEvaluateClanArchivesCurrentWar(t *testing.T) {
	client := testClientWithRoster()
	participation := emptyParticipation()

	evaluator := newTestEvaluator(client, nil, participation)

	if _, err := evaluator.EvaluateClan(context.Background()); err != nil {
		t.Fatalf("EvaluateClan failed: %v", err)
	}
	if participation.archiveCalls != 1 {
		t.Errorf("Expected the cycle to archive the current war once, got %d calls", participation.archiveCalls)
	}
}

func TestEvaluateClanToleratesArchiveFailure(t *testing.T) {
	client := testClientWithRoster()
	participation := emptyParticipation()
	participation.archiveErr = errors.New("server error (status 500)")

	evaluator := newTestEvaluator(client, nil, participation)

	result, err := evaluator.EvaluateClan(context.Background())
	if err != nil {
		t.Fatalf("Expected archive failure to be tolerated, got %v", err)
	}
	if len(result.Members) != 3 {
		t.Errorf("Expected full roster evaluated despite archive failure, got %d members", len(result.Members))
	}
}

func TestEvaluateClanHistoryFailureDegrades(t *testing.T) {
	client := testClientWithRoster()
	histProvider := mocks.NewMockHistoryProvider()
	histProvider.StatsErr = errors.New("snapshot directory unreadable")

	evaluator := newTestEvaluator(client, histProvider, emptyParticipation())

	result, err := evaluator.EvaluateClan(context.Background())
	if err != nil {
		t.Fatalf("Expected history failure to degrade, got %v", err)
	}
	if len(result.Members) != 3 {
		t.Fatalf("Expected all members evaluated without history, got %d", len(result.Members))
	}
	for _, member := range result.Members {
		if member.History.Present() {
			t.Errorf("Expected no history for %s", member.Profile.Tag)
		}
	}
}

func TestRecomputeWithoutCompletedCycle(t *testing.T) {
	evaluator := newTestEvaluator(mocks.NewMockCoCClient(), nil, emptyParticipation())

	if _, err := evaluator.Recompute(scoring.DefaultWeights(), roster.DefaultRequirements()); err == nil {
		t.Error("Expected error when no cycle has completed")
	}
}

func TestRecomputeAppliesNewPolicyWithoutNetwork(t *testing.T) {
	client := testClientWithRoster()
	evaluator := newTestEvaluator(client, nil, emptyParticipation())

	first, err := evaluator.EvaluateClan(context.Background())
	if err != nil {
		t.Fatalf("EvaluateClan failed: %v", err)
	}
	fetchesAfterCycle := len(client.GetPlayerCalledWithTags)

	var zeroWeights scoring.ScoringWeights
	strict := roster.DefaultRequirements()
	strict.Member = roster.RoleRequirement{Promotion: 0, Maintenance: 2000}

	recomputed, err := evaluator.Recompute(zeroWeights, strict)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	if len(client.GetPlayerCalledWithTags) != fetchesAfterCycle {
		t.Error("Expected recompute to make no API calls")
	}

	for _, member := range recomputed.Members {
		if member.Score != 0 {
			t.Errorf("Expected zero weights to zero all scores, got %f", member.Score)
		}
		if member.Profile.Tag == "#MEM" && member.Recommendation.Action != roster.ActionKick {
			t.Errorf("Expected member below new maintenance flagged for removal, got %v",
				member.Recommendation)
		}
	}

	// The cached cycle must be untouched by the replay
	cached := evaluator.LastEvaluation()
	if cached.Weights != first.Weights {
		t.Error("Expected cached cycle to keep its original weights")
	}
	for i, member := range cached.Members {
		if member.Score != first.Members[i].Score {
			t.Error("Expected cached member scores unchanged by recompute")
		}
	}
}

func TestCommitResultRejectsSupersededCycle(t *testing.T) {
	evaluator := newTestEvaluator(mocks.NewMockCoCClient(), nil, emptyParticipation())

	_, cancelFirst, firstGen := evaluator.beginCycle(context.Background())
	defer cancelFirst()
	_, cancelSecond, secondGen := evaluator.beginCycle(context.Background())
	defer cancelSecond()

	if firstGen == secondGen {
		t.Fatal("Expected distinct generations per cycle")
	}

	stale := &ClanEvaluation{ClanTag: testClanTag}
	if evaluator.commitResult(firstGen, stale) {
		t.Error("Expected superseded cycle's result to be rejected")
	}
	if evaluator.LastEvaluation() != nil {
		t.Error("Expected no cached result from superseded cycle")
	}

	current := &ClanEvaluation{ClanTag: testClanTag}
	if !evaluator.commitResult(secondGen, current) {
		t.Error("Expected current cycle's result to be committed")
	}
	if evaluator.LastEvaluation() != current {
		t.Error("Expected current cycle cached")
	}
}

func TestBeginCycleCancelsInFlightCycle(t *testing.T) {
	evaluator := newTestEvaluator(mocks.NewMockCoCClient(), nil, emptyParticipation())

	firstCtx, cancelFirst, _ := evaluator.beginCycle(context.Background())
	defer cancelFirst()
	_, cancelSecond, _ := evaluator.beginCycle(context.Background())
	defer cancelSecond()

	select {
	case <-firstCtx.Done():
	default:
		t.Error("Expected starting a new cycle to cancel the in-flight one")
	}
}
