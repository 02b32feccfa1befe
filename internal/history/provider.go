package history

import (
	"sync"

	"coc_roster_eval/internal/app"

	"github.com/rs/zerolog/log"
)

// SnapshotLister provides the stored war records the provider replays
type SnapshotLister interface {
	ListWarSnapshots() ([]app.WarSnapshot, error)
}

// Provider computes per-member historical stats from stored war snapshots.
// The attack index is built lazily on first use and reused until Reload.
type Provider struct {
	store SnapshotLister

	mu      sync.Mutex
	loaded  bool
	attacks map[string][]recordedAttack
}

type recordedAttack struct {
	stars       int
	destruction int
}

func NewProvider(store SnapshotLister) *Provider {
	return &Provider{store: store}
}

// Reload discards the attack index so the next lookup rebuilds it
func (p *Provider) Reload() {
	p.mu.Lock()
	p.loaded = false
	p.attacks = nil
	p.mu.Unlock()
}

func (p *Provider) ensureLoaded() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded {
		return nil
	}

	snapshots, err := p.store.ListWarSnapshots()
	if err != nil {
		return err
	}

	p.attacks = make(map[string][]recordedAttack)
	for _, snap := range snapshots {
		p.indexSide(snap.War.Clan)
		p.indexSide(snap.War.Opponent)
	}
	p.loaded = true

	log.Debug().
		Int("wars", len(snapshots)).
		Int("players", len(p.attacks)).
		Msg("Built historical attack index")

	return nil
}

func (p *Provider) indexSide(side app.WarClan) {
	for _, member := range side.Members {
		for _, attack := range member.Attacks {
			p.attacks[attack.AttackerTag] = append(p.attacks[attack.AttackerTag], recordedAttack{
				stars:       attack.Stars,
				destruction: attack.DestructionPercentage,
			})
		}
	}
}

// Stats returns the member's aggregated attack history, or NoHistory when
// the member has no recorded attacks. Only index build failures are errors;
// having no data is a normal state.
func (p *Provider) Stats(memberTag string) (History, error) {
	if err := p.ensureLoaded(); err != nil {
		return NoHistory(), err
	}

	p.mu.Lock()
	attacks := p.attacks[memberTag]
	p.mu.Unlock()

	if len(attacks) == 0 {
		return NoHistory(), nil
	}

	var totalStars, totalDestruction, threeStars int
	for _, attack := range attacks {
		totalStars += attack.stars
		totalDestruction += attack.destruction
		if attack.stars == 3 {
			threeStars++
		}
	}

	n := float64(len(attacks))
	return HistoryOf(Stats{
		AvgStars:       float64(totalStars) / n,
		AvgDestruction: float64(totalDestruction) / n,
		ThreeStarRate:  float64(threeStars) / n * 100,
		SampleSize:     len(attacks),
	}), nil
}
