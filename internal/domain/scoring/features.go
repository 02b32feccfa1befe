package scoring

import (
	"coc_roster_eval/internal/domain/cwl"
	"coc_roster_eval/internal/domain/roster"
	"coc_roster_eval/internal/history"
)

// FeatureVector is one member's numeric signals in the fixed order matching
// ScoringWeights. Historical features are zero when the member has no war
// record; participation rate is zero when no attacks were possible.
type FeatureVector struct {
	TownHall          float64
	WarStars          float64
	DonationHundreds  float64
	WarPreferenceIn   float64
	LeagueTierScaled  float64
	AvgStars          float64
	AvgDestruction    float64 // fraction, 0-1
	ThreeStarRate     float64 // fraction, 0-1
	ParticipationRate float64
}

// ExtractFeatures converts one member's profile, optional history, and CWL
// participation summary into a feature vector.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func ExtractFeatures(profile roster.MemberProfile, hist history.History, part cwl.ParticipationSummary) FeatureVector {
	features := FeatureVector{
		TownHall:         float64(profile.TownHallLevel),
		WarStars:         float64(profile.WarStars),
		DonationHundreds: float64(profile.Donations) / 100,
	}

	if profile.WarOptedIn {
		features.WarPreferenceIn = 1
	}

	if profile.LeagueTierID > 0 {
		features.LeagueTierScaled = float64(profile.LeagueTierID) / 1_000_000
	}

	if stats, present := hist.Get(); present {
		features.AvgStars = stats.AvgStars
		features.AvgDestruction = stats.AvgDestruction / 100
		features.ThreeStarRate = stats.ThreeStarRate / 100
	}

	features.ParticipationRate = cwl.ParticipationRate(part)

	return features
}
