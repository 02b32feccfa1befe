package sheets

import (
	"context"
	"fmt"

	"coc_roster_eval/internal/config"
	"coc_roster_eval/internal/domain/cwl"
	"coc_roster_eval/internal/processing"

	"github.com/rs/zerolog/log"
)

// evaluationColumns is the width of the member evaluation table
const evaluationColumns = 12

// EvaluationSheetConfig holds the resolved tab names for one clan's
// evaluation output
type EvaluationSheetConfig struct {
	SpreadsheetID        string
	EvaluationTabName    string
	ParticipationTabName string
}

// EvaluationSheetsManager handles business logic for evaluation sheet
// management. Separated from infrastructure concerns for better testability.
type EvaluationSheetsManager struct {
	api        SheetsAPI
	retryRead  config.RetryConfig
	retryWrite config.RetryConfig
}

// NewEvaluationSheetsManager creates a new evaluation sheets manager with the given API client
func NewEvaluationSheetsManager(api SheetsAPI) *EvaluationSheetsManager {
	return &EvaluationSheetsManager{
		api:        api,
		retryRead:  config.DefaultResilienceConfig.SheetRead,
		retryWrite: config.DefaultResilienceConfig.SheetWrite,
	}
}

// EnsureEvaluationSheets creates the evaluation and participation tabs for a
// clan if they don't exist
func (m *EvaluationSheetsManager) EnsureEvaluationSheets(ctx context.Context, spreadsheetID, clanTag string) (*EvaluationSheetConfig, error) {
	evaluationTab := m.GenerateEvaluationTabName(clanTag)
	participationTab := m.GenerateParticipationTabName(clanTag)

	log.Debug().
		Str("clan_tag", clanTag).
		Str("evaluation_tab", evaluationTab).
		Str("participation_tab", participationTab).
		Msg("Ensuring evaluation sheets exist")

	if err := m.ensureSheet(ctx, spreadsheetID, evaluationTab, m.evaluationHeaders()); err != nil {
		return nil, fmt.Errorf("failed to ensure evaluation sheet: %w", err)
	}
	if err := m.ensureSheet(ctx, spreadsheetID, participationTab, m.participationHeaders()); err != nil {
		return nil, fmt.Errorf("failed to ensure participation sheet: %w", err)
	}

	return &EvaluationSheetConfig{
		SpreadsheetID:        spreadsheetID,
		EvaluationTabName:    evaluationTab,
		ParticipationTabName: participationTab,
	}, nil
}

func (m *EvaluationSheetsManager) ensureSheet(ctx context.Context, spreadsheetID, sheetName string, headers []interface{}) error {
	var exists bool
	err := config.WithRetry(ctx, m.retryRead, "sheet_exists", func(ctx context.Context) error {
		var err error
		exists, err = m.api.SheetExists(ctx, spreadsheetID, sheetName)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to check if sheet exists: %w", err)
	}
	if exists {
		return nil
	}

	log.Info().
		Str("sheet_name", sheetName).
		Msg("Creating sheet")

	if err := m.api.CreateSheet(ctx, spreadsheetID, sheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	rangeSpec := fmt.Sprintf("'%s'!A1", sheetName)
	if err := m.writeRange(ctx, spreadsheetID, rangeSpec, [][]interface{}{headers}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	return nil
}

// writeRange updates a range with the sheet-write retry policy
func (m *EvaluationSheetsManager) writeRange(ctx context.Context, spreadsheetID, rangeSpec string, values [][]interface{}) error {
	return config.WithRetry(ctx, m.retryWrite, "update_range", func(ctx context.Context) error {
		return m.api.UpdateRange(ctx, spreadsheetID, rangeSpec, values)
	})
}

// clearRange clears a range with the sheet-write retry policy
func (m *EvaluationSheetsManager) clearRange(ctx context.Context, spreadsheetID, rangeSpec string) error {
	return config.WithRetry(ctx, m.retryWrite, "clear_range", func(ctx context.Context) error {
		return m.api.ClearRange(ctx, spreadsheetID, rangeSpec)
	})
}

// GenerateEvaluationTabName creates a standardized evaluation tab name for a clan
func (m *EvaluationSheetsManager) GenerateEvaluationTabName(clanTag string) string {
	return fmt.Sprintf("Evaluation - %s", clanTag)
}

// GenerateParticipationTabName creates a standardized CWL participation tab name for a clan
func (m *EvaluationSheetsManager) GenerateParticipationTabName(clanTag string) string {
	return fmt.Sprintf("CWL - %s", clanTag)
}

func (m *EvaluationSheetsManager) evaluationHeaders() []interface{} {
	return []interface{}{
		"Rank", "Tag", "Name", "Role", "TH", "Donations", "Received",
		"War Stars", "Score", "Action", "Reason", "Deficit",
	}
}

func (m *EvaluationSheetsManager) participationHeaders() []interface{} {
	return []interface{}{
		"Tag", "Name", "Season", "Attacks Used", "Attacks Possible",
		"Rounds", "Rate",
	}
}

// UpdateEvaluationTable rewrites the member evaluation table from a
// completed cycle. The table is fully replaced each cycle; members are
// already ordered by score.
func (m *EvaluationSheetsManager) UpdateEvaluationTable(ctx context.Context, sheetConfig *EvaluationSheetConfig, eval *processing.ClanEvaluation) error {
	rows := m.ConvertEvaluationRows(eval)

	if err := m.api.EnsureSheetCapacity(ctx, sheetConfig.SpreadsheetID, sheetConfig.EvaluationTabName, len(rows)+1, evaluationColumns); err != nil {
		return fmt.Errorf("failed to ensure sheet capacity: %w", err)
	}

	clearSpec := fmt.Sprintf("'%s'!A2:L", sheetConfig.EvaluationTabName)
	if err := m.clearRange(ctx, sheetConfig.SpreadsheetID, clearSpec); err != nil {
		return fmt.Errorf("failed to clear evaluation table: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	rangeSpec := fmt.Sprintf("'%s'!A2", sheetConfig.EvaluationTabName)
	if err := m.writeRange(ctx, sheetConfig.SpreadsheetID, rangeSpec, rows); err != nil {
		return fmt.Errorf("failed to update evaluation table: %w", err)
	}

	log.Info().
		Str("sheet_name", sheetConfig.EvaluationTabName).
		Int("member_count", len(rows)).
		Msg("Updated evaluation table")

	return nil
}

// ConvertEvaluationRows flattens a cycle's members into sheet rows.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func (m *EvaluationSheetsManager) ConvertEvaluationRows(eval *processing.ClanEvaluation) [][]interface{} {
	rows := make([][]interface{}, 0, len(eval.Members))
	for i, member := range eval.Members {
		rows = append(rows, []interface{}{
			i + 1,
			member.Profile.Tag,
			member.Profile.Name,
			member.Profile.Role.String(),
			member.Profile.TownHallLevel,
			member.Profile.Donations,
			member.Profile.DonationsReceived,
			member.Profile.WarStars,
			member.DisplayScore,
			member.Recommendation.Action.String(),
			member.Recommendation.Reason,
			member.Recommendation.Deficit,
		})
	}
	return rows
}

// UpdateParticipationTable rewrites the CWL participation table from a
// completed cycle
func (m *EvaluationSheetsManager) UpdateParticipationTable(ctx context.Context, sheetConfig *EvaluationSheetConfig, eval *processing.ClanEvaluation) error {
	rows := m.ConvertParticipationRows(eval)

	clearSpec := fmt.Sprintf("'%s'!A2:G", sheetConfig.ParticipationTabName)
	if err := m.clearRange(ctx, sheetConfig.SpreadsheetID, clearSpec); err != nil {
		return fmt.Errorf("failed to clear participation table: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	rangeSpec := fmt.Sprintf("'%s'!A2", sheetConfig.ParticipationTabName)
	if err := m.writeRange(ctx, sheetConfig.SpreadsheetID, rangeSpec, rows); err != nil {
		return fmt.Errorf("failed to update participation table: %w", err)
	}

	log.Info().
		Str("sheet_name", sheetConfig.ParticipationTabName).
		Int("member_count", len(rows)).
		Msg("Updated participation table")

	return nil
}

// ConvertParticipationRows flattens a cycle's CWL participation into sheet
// rows, skipping members with no recorded rounds.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func (m *EvaluationSheetsManager) ConvertParticipationRows(eval *processing.ClanEvaluation) [][]interface{} {
	rows := make([][]interface{}, 0, len(eval.Members))
	for _, member := range eval.Members {
		part := member.Participation
		if part.RoundsParticipated == 0 {
			continue
		}
		rows = append(rows, []interface{}{
			member.Profile.Tag,
			member.Profile.Name,
			eval.Season,
			part.AttacksUsed,
			part.AttacksPossible,
			part.RoundsParticipated,
			fmt.Sprintf("%.1f%%", cwl.ParticipationRate(part)*100),
		})
	}
	return rows
}
