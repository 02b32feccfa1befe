package deployment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"coc_roster_eval/internal/processing"

	"github.com/rs/zerolog/log"
)

// FileDeployer is the transport used to publish rendered result files
type FileDeployer interface {
	DeployBytes(data []byte, filename string) error
	Disconnect() error
}

// EvaluationPublisher renders a completed evaluation cycle to JSON, keeps a
// local copy, and pushes the file to the web host
type EvaluationPublisher struct {
	deployer FileDeployer
	dataDir  string
}

// NewEvaluationPublisher creates a publisher writing local copies under dataDir
func NewEvaluationPublisher(deployer FileDeployer, dataDir string) *EvaluationPublisher {
	return &EvaluationPublisher{
		deployer: deployer,
		dataDir:  dataDir,
	}
}

// EvaluationFilename returns the published filename for a clan's evaluation
func EvaluationFilename(clanTag string) string {
	return fmt.Sprintf("roster_eval_%s.json", strings.TrimPrefix(clanTag, "#"))
}

// RenderEvaluationJSON serializes a cycle for publication.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func RenderEvaluationJSON(eval *processing.ClanEvaluation) ([]byte, error) {
	data, err := json.MarshalIndent(eval, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evaluation: %w", err)
	}
	return data, nil
}

// PublishEvaluation writes the cycle JSON locally and deploys it. A failed
// deploy still leaves the local copy in place.
func (p *EvaluationPublisher) PublishEvaluation(eval *processing.ClanEvaluation) error {
	data, err := RenderEvaluationJSON(eval)
	if err != nil {
		return err
	}

	filename := EvaluationFilename(eval.ClanTag)
	localPath := filepath.Join(p.dataDir, filename)
	if err := os.WriteFile(localPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write local evaluation file: %w", err)
	}

	if err := p.deployer.DeployBytes(data, filename); err != nil {
		return fmt.Errorf("failed to deploy evaluation file: %w", err)
	}

	log.Info().
		Str("clan_tag", eval.ClanTag).
		Str("filename", filename).
		Int("member_count", len(eval.Members)).
		Msg("Published evaluation cycle")

	return nil
}
