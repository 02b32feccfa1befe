package scoring

import "math"

// Score computes the weighted sum of a feature vector. The unrounded value
// is what ranking must use; rounding happens only at the presentation
// boundary via DisplayScore, so members clustered near a rounding boundary
// still sort by their true score.
//
// Pure function: No I/O operations, fully deterministic and idempotent.
func Score(features FeatureVector, weights ScoringWeights) float64 {
	return features.TownHall*weights.TownHall +
		features.WarStars*weights.WarStars +
		features.DonationHundreds*weights.Donations +
		features.WarPreferenceIn*weights.WarPreference +
		features.LeagueTierScaled*weights.LeagueTier +
		features.AvgStars*weights.AvgStars +
		features.AvgDestruction*weights.AvgDestruction +
		features.ThreeStarRate*weights.ThreeStarRate +
		features.ParticipationRate*weights.Participation
}

// DisplayScore rounds a score to the nearest integer for presentation
func DisplayScore(score float64) int {
	return int(math.Round(score))
}
