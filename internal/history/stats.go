package history

// Stats summarizes a member's recorded war attacks. AvgDestruction and
// ThreeStarRate are percentages (0-100), matching how the game reports
// destruction; scoring converts them to fractions.
type Stats struct {
	AvgStars       float64 `json:"avgStars"`
	AvgDestruction float64 `json:"avgDestruction"`
	ThreeStarRate  float64 `json:"threeStarRate"`
	SampleSize     int     `json:"sampleSize"`
}

// History is either a member's Stats or the explicit absence of any war
// record. Absence is a valid state, not an error; it contributes zero to
// scoring.
type History struct {
	stats   Stats
	present bool
}

// HistoryOf wraps recorded stats
func HistoryOf(stats Stats) History {
	return History{stats: stats, present: true}
}

// NoHistory marks a member with no recorded war attacks
func NoHistory() History {
	return History{}
}

// Get returns the stats and whether any exist
func (h History) Get() (Stats, bool) {
	return h.stats, h.present
}

// Present reports whether the member has any recorded war attacks
func (h History) Present() bool {
	return h.present
}
