package scoring

// ScoringWeights holds the coefficients of the weighted member score. All
// values are non-negative by convention, but nothing here enforces that:
// the score is computed correctly for any finite coefficients.
type ScoringWeights struct {
	TownHall       float64 `json:"townHall"`
	WarStars       float64 `json:"warStars"`
	Donations      float64 `json:"donations"` // applied per 100 donations
	WarPreference  float64 `json:"warPreference"`
	LeagueTier     float64 `json:"leagueTier"`
	AvgStars       float64 `json:"avgStars"`
	AvgDestruction float64 `json:"avgDestruction"`
	ThreeStarRate  float64 `json:"threeStarRate"`
	Participation  float64 `json:"participation"`
}

// DefaultWeights returns the built-in scoring policy used when no stored
// document exists or the stored one cannot be parsed.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		TownHall:       5,
		WarStars:       0.1,
		Donations:      2,
		WarPreference:  10,
		LeagueTier:     1,
		AvgStars:       15,
		AvgDestruction: 10,
		ThreeStarRate:  10,
		Participation:  20,
	}
}
