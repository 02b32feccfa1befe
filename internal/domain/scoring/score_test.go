package scoring

import (
	"math"
	"testing"

	"coc_roster_eval/internal/domain/cwl"
	"coc_roster_eval/internal/domain/roster"
	"coc_roster_eval/internal/history"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestScoreWeightedSum(t *testing.T) {
	features := FeatureVector{
		TownHall:          14,
		WarStars:          800,
		DonationHundreds:  12.5,
		WarPreferenceIn:   1,
		LeagueTierScaled:  29.000022,
		AvgStars:          2.1,
		AvgDestruction:    0.87,
		ThreeStarRate:     0.4,
		ParticipationRate: 0.833,
	}
	weights := ScoringWeights{
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

	expected := 14*5.0 + 800*0.1 + 12.5*2 + 1*10.0 + 29.000022*1 +
		2.1*15 + 0.87*10 + 0.4*10 + 0.833*20

	if got := Score(features, weights); math.Abs(got-expected) > 1e-9 {
		t.Errorf("Expected score %f, got %f", expected, got)
	}
}

func TestScoreZeroWeightsZeroScore(t *testing.T) {
	features := FeatureVector{TownHall: 15, WarStars: 2000, ParticipationRate: 1}
	if got := Score(features, ScoringWeights{}); got != 0 {
		t.Errorf("Expected 0 with zero weights, got %f", got)
	}
}

func TestDisplayScore(t *testing.T) {
	testCases := []struct {
		score    float64
		expected int
	}{
		{0, 0},
		{12.4, 12},
		{12.5, 13},
		{-3.6, -4},
		{199.999, 200},
	}

	for _, tc := range testCases {
		if got := DisplayScore(tc.score); got != tc.expected {
			t.Errorf("DisplayScore(%f): expected %d, got %d", tc.score, tc.expected, got)
		}
	}
}

func TestExtractFeatures(t *testing.T) {
	profile := roster.MemberProfile{
		Tag:           "#ABC",
		Role:          roster.RoleElder,
		TownHallLevel: 14,
		Donations:     1250,
		WarStars:      800,
		WarOptedIn:    true,
		LeagueTierID:  29000022,
	}
	hist := history.HistoryOf(history.Stats{
		AvgStars:       2.1,
		AvgDestruction: 87,
		ThreeStarRate:  40,
		SampleSize:     30,
	})
	part := cwl.ParticipationSummary{AttacksUsed: 5, AttacksPossible: 6, RoundsParticipated: 3}

	features := ExtractFeatures(profile, hist, part)

	if features.TownHall != 14 {
		t.Errorf("Expected townHall 14, got %f", features.TownHall)
	}
	if features.DonationHundreds != 12.5 {
		t.Errorf("Expected donationHundreds 12.5, got %f", features.DonationHundreds)
	}
	if features.WarPreferenceIn != 1 {
		t.Errorf("Expected warPreferenceIn 1, got %f", features.WarPreferenceIn)
	}
	if math.Abs(features.LeagueTierScaled-29.000022) > 1e-9 {
		t.Errorf("Expected leagueTierScaled 29.000022, got %f", features.LeagueTierScaled)
	}
	if math.Abs(features.AvgDestruction-0.87) > 1e-9 {
		t.Errorf("Expected avgDestruction 0.87, got %f", features.AvgDestruction)
	}
	if math.Abs(features.ThreeStarRate-0.4) > 1e-9 {
		t.Errorf("Expected threeStarRate 0.4, got %f", features.ThreeStarRate)
	}
	if math.Abs(features.ParticipationRate-5.0/6.0) > 1e-9 {
		t.Errorf("Expected participationRate ~0.833, got %f", features.ParticipationRate)
	}
}

func TestExtractFeaturesAbsentHistory(t *testing.T) {
	profile := roster.MemberProfile{TownHallLevel: 10, WarStars: 100}

	features := ExtractFeatures(profile, history.NoHistory(), cwl.ParticipationSummary{})

	if features.AvgStars != 0 || features.AvgDestruction != 0 || features.ThreeStarRate != 0 {
		t.Errorf("Absent history must contribute zero, got %+v", features)
	}
	if features.ParticipationRate != 0 {
		t.Errorf("Zero possible attacks must yield rate 0, got %f", features.ParticipationRate)
	}
	if features.LeagueTierScaled != 0 {
		t.Errorf("No league tier must contribute zero, got %f", features.LeagueTierScaled)
	}
}

func genFeatures() gopter.Gen {
	nonNegative := gen.Float64Range(0, 1000)
	return gopter.CombineGens(
		nonNegative, nonNegative, nonNegative,
		gen.Float64Range(0, 1), nonNegative,
		gen.Float64Range(0, 3), gen.Float64Range(0, 1),
		gen.Float64Range(0, 1), gen.Float64Range(0, 1),
	).Map(func(values []interface{}) FeatureVector {
		return FeatureVector{
			TownHall:          values[0].(float64),
			WarStars:          values[1].(float64),
			DonationHundreds:  values[2].(float64),
			WarPreferenceIn:   values[3].(float64),
			LeagueTierScaled:  values[4].(float64),
			AvgStars:          values[5].(float64),
			AvgDestruction:    values[6].(float64),
			ThreeStarRate:     values[7].(float64),
			ParticipationRate: values[8].(float64),
		}
	})
}

func genWeights() gopter.Gen {
	w := gen.Float64Range(0, 100)
	return gopter.CombineGens(w, w, w, w, w, w, w, w, w).Map(func(values []interface{}) ScoringWeights {
		return ScoringWeights{
			TownHall:       values[0].(float64),
			WarStars:       values[1].(float64),
			Donations:      values[2].(float64),
			WarPreference:  values[3].(float64),
			LeagueTier:     values[4].(float64),
			AvgStars:       values[5].(float64),
			AvgDestruction: values[6].(float64),
			ThreeStarRate:  values[7].(float64),
			Participation:  values[8].(float64),
		}
	})
}

func TestScoreProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: raising one coefficient never lowers the score when the
	// paired feature is non-negative
	properties.Property("monotone in each weight", prop.ForAll(
		func(features FeatureVector, weights ScoringWeights, bump float64) bool {
			base := Score(features, weights)

			raised := weights
			raised.Participation += bump
			if Score(features, raised) < base {
				return false
			}

			raised = weights
			raised.TownHall += bump
			if Score(features, raised) < base {
				return false
			}

			raised = weights
			raised.Donations += bump
			return Score(features, raised) >= base
		},
		genFeatures(),
		genWeights(),
		gen.Float64Range(0, 50),
	))

	// Property: scoring is deterministic
	properties.Property("deterministic", prop.ForAll(
		func(features FeatureVector, weights ScoringWeights) bool {
			return Score(features, weights) == Score(features, weights)
		},
		genFeatures(),
		genWeights(),
	))

	properties.TestingRun(t)
}
