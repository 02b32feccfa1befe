package export

import (
	"context"
	"fmt"
	"time"

	"coc_roster_eval/internal/processing"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
)

// evaluationTable is the warehouse table receiving one row per member per cycle
const evaluationTable = "member_evaluations"

// Exporter streams completed evaluation cycles into BigQuery for long-term
// trend analysis. The export is append-only; each cycle adds one row per
// evaluated member.
type Exporter struct {
	client  *bigquery.Client
	dataset string
}

// NewExporter creates a BigQuery exporter for the given project and dataset
func NewExporter(ctx context.Context, projectID, dataset string) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	return &Exporter{
		client:  client,
		dataset: dataset,
	}, nil
}

// Close releases the underlying BigQuery client
func (e *Exporter) Close() error {
	return e.client.Close()
}

// EvaluationRow is one member evaluation flattened for the warehouse.
// History columns are nullable; members without recorded wars leave them
// unset.
type EvaluationRow struct {
	ClanTag     string    `bigquery:"clan_tag"`
	Season      string    `bigquery:"season"`
	GeneratedAt time.Time `bigquery:"generated_at"`

	MemberTag         string `bigquery:"member_tag"`
	MemberName        string `bigquery:"member_name"`
	Role              string `bigquery:"role"`
	TownHallLevel     int    `bigquery:"town_hall_level"`
	Donations         int    `bigquery:"donations"`
	DonationsReceived int    `bigquery:"donations_received"`
	WarStars          int    `bigquery:"war_stars"`

	Score        float64 `bigquery:"score"`
	DisplayScore int     `bigquery:"display_score"`
	Action       string  `bigquery:"action"`
	Reason       string  `bigquery:"reason"`
	Deficit      int     `bigquery:"deficit"`

	AttacksUsed        int `bigquery:"cwl_attacks_used"`
	AttacksPossible    int `bigquery:"cwl_attacks_possible"`
	RoundsParticipated int `bigquery:"cwl_rounds_participated"`

	AvgStars       bigquery.NullFloat64 `bigquery:"avg_stars"`
	AvgDestruction bigquery.NullFloat64 `bigquery:"avg_destruction"`
	ThreeStarRate  bigquery.NullFloat64 `bigquery:"three_star_rate"`
	SampleSize     bigquery.NullInt64   `bigquery:"sample_size"`
}

// RowsFromEvaluation flattens a completed cycle into warehouse rows.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func RowsFromEvaluation(eval *processing.ClanEvaluation) []*EvaluationRow {
	rows := make([]*EvaluationRow, 0, len(eval.Members))
	for _, member := range eval.Members {
		row := &EvaluationRow{
			ClanTag:     eval.ClanTag,
			Season:      eval.Season,
			GeneratedAt: eval.GeneratedAt,

			MemberTag:         member.Profile.Tag,
			MemberName:        member.Profile.Name,
			Role:              member.Profile.Role.String(),
			TownHallLevel:     member.Profile.TownHallLevel,
			Donations:         member.Profile.Donations,
			DonationsReceived: member.Profile.DonationsReceived,
			WarStars:          member.Profile.WarStars,

			Score:        member.Score,
			DisplayScore: member.DisplayScore,
			Action:       member.Recommendation.Action.String(),
			Reason:       member.Recommendation.Reason,
			Deficit:      member.Recommendation.Deficit,

			AttacksUsed:        member.Participation.AttacksUsed,
			AttacksPossible:    member.Participation.AttacksPossible,
			RoundsParticipated: member.Participation.RoundsParticipated,
		}

		if stats, ok := member.History.Get(); ok {
			row.AvgStars = bigquery.NullFloat64{Float64: stats.AvgStars, Valid: true}
			row.AvgDestruction = bigquery.NullFloat64{Float64: stats.AvgDestruction, Valid: true}
			row.ThreeStarRate = bigquery.NullFloat64{Float64: stats.ThreeStarRate, Valid: true}
			row.SampleSize = bigquery.NullInt64{Int64: int64(stats.SampleSize), Valid: true}
		}

		rows = append(rows, row)
	}
	return rows
}

// ExportEvaluation appends one row per evaluated member to the warehouse table
func (e *Exporter) ExportEvaluation(ctx context.Context, eval *processing.ClanEvaluation) error {
	rows := RowsFromEvaluation(eval)
	if len(rows) == 0 {
		return nil
	}

	inserter := e.client.Dataset(e.dataset).Table(evaluationTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("failed to insert evaluation rows: %w", err)
	}

	log.Info().
		Str("clan_tag", eval.ClanTag).
		Str("dataset", e.dataset).
		Int("row_count", len(rows)).
		Msg("Exported evaluation cycle to BigQuery")

	return nil
}
