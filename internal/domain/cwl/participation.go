package cwl

import (
	"coc_roster_eval/internal/app"
)

// CompetitionRecord is one successfully fetched war round, reduced to the
// per-member attack usage of our clan's roster in that round. Records that
// failed to fetch are simply absent from the aggregation input.
type CompetitionRecord struct {
	WarTag string
	// AttacksUsed maps member tag to attacks used in this round. A member
	// appearing with 0 attacks still counts as participating in the round.
	AttacksUsed map[string]int
}

// ParticipationSummary accumulates one member's usage across all records of
// a tournament window.
type ParticipationSummary struct {
	AttacksUsed        int `json:"attacksUsed"`
	AttacksPossible    int `json:"attacksPossible"`
	RoundsParticipated int `json:"roundsParticipated"`
}

// RecordFromWar extracts a CompetitionRecord for the given clan from a war
// record, matching either side of the war by clan tag. Returns false when
// the clan is on neither side.
func RecordFromWar(warTag string, war *app.ClanWar, clanTag string) (CompetitionRecord, bool) {
	var side *app.WarClan
	switch clanTag {
	case war.Clan.Tag:
		side = &war.Clan
	case war.Opponent.Tag:
		side = &war.Opponent
	default:
		return CompetitionRecord{}, false
	}

	record := CompetitionRecord{
		WarTag:      warTag,
		AttacksUsed: make(map[string]int, len(side.Members)),
	}
	for _, member := range side.Members {
		record.AttacksUsed[member.Tag] = len(member.Attacks)
	}

	return record, true
}

// AggregateParticipation merges the records of one tournament window into a
// per-member summary. perRoundAllowance is the attack allowance per record,
// supplied by the caller (1 for the large league brackets, 2 for smaller
// ones). Upstream inconsistencies where a member somehow used more attacks
// than possible are tolerated, not asserted.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func AggregateParticipation(records []CompetitionRecord, perRoundAllowance int) map[string]ParticipationSummary {
	summaries := make(map[string]ParticipationSummary)

	for _, record := range records {
		for tag, used := range record.AttacksUsed {
			summary := summaries[tag]
			summary.AttacksUsed += used
			summary.RoundsParticipated++
			summaries[tag] = summary
		}
	}

	for tag, summary := range summaries {
		summary.AttacksPossible = perRoundAllowance * summary.RoundsParticipated
		summaries[tag] = summary
	}

	return summaries
}

// ParticipationRate returns attacksUsed / attacksPossible. A member with no
// possible attacks has a rate of exactly 0; the zero divide is guarded here
// so no NaN or Inf can escape into scoring.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func ParticipationRate(summary ParticipationSummary) float64 {
	if summary.AttacksPossible <= 0 {
		return 0
	}
	return float64(summary.AttacksUsed) / float64(summary.AttacksPossible)
}
