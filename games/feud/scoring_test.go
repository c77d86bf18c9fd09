package feud_test

import (
	"testing"

	"github.com/Seednode/feudbox/games/feud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v float64) *float64 {
	return &v
}

func closestRound(correct *float64, band *feud.Range) *feud.Round {
	return &feud.Round{
		ID:            2,
		Type:          feud.RoundClosest,
		CorrectAnswer: correct,
		ExpectedRange: band,
	}
}

func TestRevealSurvey(t *testing.T) {
	r := &feud.Round{
		Type: feud.RoundSurvey,
		Answers: []feud.SurveyAnswer{
			{Label: "Sales & Marketing", Points: 40},
			{Label: "R&D", Points: 30},
		},
	}

	award, revealed, err := feud.RevealSurvey(r, nil, 1, feud.Team2)
	require.NoError(t, err)
	assert.Equal(t, feud.Award{Team: feud.Team2, Points: 30}, award)
	assert.Equal(t, []int{1}, revealed)

	_, again, err := feud.RevealSurvey(r, revealed, 1, feud.Team2)
	assert.ErrorIs(t, err, feud.ErrAlreadyRevealed)
	assert.Equal(t, revealed, again)

	_, _, err = feud.RevealSurvey(r, revealed, 5, feud.Team1)
	assert.ErrorIs(t, err, feud.ErrInvalidIndex)

	original := []int{1}
	_, grown, err := feud.RevealSurvey(r, original, 0, feud.Team1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, grown)
	assert.Equal(t, []int{1}, original)
}

func TestScoreMulti(t *testing.T) {
	r := &feud.Round{
		Type: feud.RoundMulti,
		Choices: []feud.MultiAnswer{
			{Label: "a"},
			{Label: "b", IsCorrect: true},
			{Label: "c"},
		},
	}

	tests := []struct {
		name       string
		sel1, sel2 int
		want       [2]int
	}{
		{"both correct", 1, 1, [2]int{50, 50}},
		{"team 1 only", 1, 0, [2]int{50, 0}},
		{"team 2 only", 2, 1, [2]int{0, 50}},
		{"neither", 0, 2, [2]int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := feud.ScoreMulti(r, tt.sel1, tt.sel2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := feud.ScoreMulti(r, 3, 0)
	assert.ErrorIs(t, err, feud.ErrInvalidIndex)
}

func TestScoreClosest(t *testing.T) {
	band := &feud.Range{Min: 65, Max: 75}

	tests := []struct {
		name   string
		g1, g2 float64
		want   [2]int
	}{
		{"exact with runner-up in band", 70, 68, [2]int{75, 25}},
		{"exact with runner-up out of band", 70, 90, [2]int{75, 0}},
		{"team 2 exact", 64, 70, [2]int{0, 75}},
		{"both exact", 70, 70.0004, [2]int{75, 75}},
		{"equidistant tie", 68, 72, [2]int{50, 50}},
		{"closer in range, farther out", 60, 68, [2]int{0, 50}},
		{"closer out of range still wins", 90, 55, [2]int{0, 50}},
		{"both in range", 66, 73, [2]int{25, 50}},
		{"band is inclusive", 65, 71, [2]int{25, 50}},
		{"exact within tolerance", 70.0009, 69, [2]int{75, 25}},
		{"outside tolerance", 70.002, 69, [2]int{50, 25}},
	}

	r := closestRound(num(70), band)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feud.ScoreClosest(r, num(tt.g1), num(tt.g2))
			assert.Equal(t, [2]bool{true, true}, got.Scored)
			assert.Equal(t, tt.want, got.Points)
		})
	}
}

func TestScoreClosestLoneGuess(t *testing.T) {
	r := closestRound(num(70), &feud.Range{Min: 65, Max: 75})

	got := feud.ScoreClosest(r, num(70), nil)
	assert.Equal(t, [2]bool{true, false}, got.Scored)
	assert.Equal(t, 75, got.Points[0])

	got = feud.ScoreClosest(r, nil, num(68))
	assert.Equal(t, [2]bool{false, false}, got.Scored)

	got = feud.ScoreClosest(r, nil, nil)
	assert.Equal(t, [2]bool{false, false}, got.Scored)
}

func TestScoreClosestUnconfigured(t *testing.T) {
	for name, r := range map[string]*feud.Round{
		"nil":  closestRound(nil, nil),
		"zero": closestRound(num(0), &feud.Range{Min: -1, Max: 1}),
	} {
		t.Run(name, func(t *testing.T) {
			got := feud.ScoreClosest(r, num(0), num(0))
			assert.Equal(t, [2]bool{true, true}, got.Scored)
			assert.Equal(t, [2]int{0, 0}, got.Points)

			lone := feud.ScoreClosest(r, num(0), nil)
			assert.Equal(t, [2]bool{false, false}, lone.Scored)
		})
	}
}

func TestScoreClosestNoBand(t *testing.T) {
	r := closestRound(num(100), nil)

	got := feud.ScoreClosest(r, num(90), num(80))
	assert.Equal(t, [2]int{50, 0}, got.Points)
}

func TestScoreClosestPolicyOverride(t *testing.T) {
	r := closestRound(num(285000), &feud.Range{Min: 260000, Max: 310000})

	got := feud.ScoreClosest(r, num(280000), num(240000))
	assert.Equal(t, [2]int{50, 0}, got.Points)

	r.Policy = &feud.ClosestPolicy{RunnerUpRange: &feud.Range{Min: 235000, Max: 400000}}
	got = feud.ScoreClosest(r, num(280000), num(240000))
	assert.Equal(t, [2]int{50, 25}, got.Points)

	r.Policy = &feud.ClosestPolicy{ExactPoints: 100, CloserPoints: 60, RunnerUpPoints: 10}
	got = feud.ScoreClosest(r, num(285000), num(300000))
	assert.Equal(t, [2]int{100, 10}, got.Points)

	got = feud.ScoreClosest(r, num(280000), num(290000))
	assert.Equal(t, [2]int{60, 60}, got.Points)
}

func TestScoreClosestExactShutout(t *testing.T) {
	r := closestRound(num(70), &feud.Range{Min: 65, Max: 75})
	r.Policy = &feud.ClosestPolicy{ExactShutout: true}

	got := feud.ScoreClosest(r, num(70), num(68))
	assert.Equal(t, [2]int{75, 0}, got.Points)

	got = feud.ScoreClosest(r, num(60), num(68))
	assert.Equal(t, [2]int{0, 50}, got.Points)

	got = feud.ScoreClosest(r, num(66), num(69))
	assert.Equal(t, [2]int{25, 50}, got.Points)
}

func TestAwardOpen(t *testing.T) {
	r := &feud.Round{Type: feud.RoundOpen}

	for _, p := range []int{0, 1, 40} {
		got, err := feud.AwardOpen(r, p)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	for _, p := range []int{-1, 41} {
		_, err := feud.AwardOpen(r, p)
		assert.ErrorIs(t, err, feud.ErrPointsOutOfRange)
	}

	r.MaxPoints = 100
	got, err := feud.AwardOpen(r, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, got)
}

func TestAwardLightning(t *testing.T) {
	for _, inc := range feud.LightningIncrements {
		got, err := feud.AwardLightning(inc)
		require.NoError(t, err)
		assert.Equal(t, inc, got)
	}

	for _, inc := range []int{0, 1, 25, -5} {
		_, err := feud.AwardLightning(inc)
		assert.ErrorIs(t, err, feud.ErrInvalidIncrement)
	}
}

func TestCanonicalOrderIsStable(t *testing.T) {
	answers := []feud.SurveyAnswer{
		{Label: "a", Points: 20},
		{Label: "b", Points: 40},
		{Label: "c", Points: 20},
		{Label: "d", Points: 35},
	}

	assert.Equal(t, []int{1, 3, 0, 2}, feud.CanonicalOrder(answers))
}

func TestScoreRanking(t *testing.T) {
	answers := []feud.SurveyAnswer{
		{Label: "G&A", Points: 10},
		{Label: "Sales & Marketing", Points: 30},
		{Label: "R&D", Points: 20},
	}

	tests := []struct {
		name  string
		order []int
		want  int
	}{
		{"canonical", []int{1, 2, 0}, 60},
		{"reversed", []int{0, 2, 1}, 20},
		{"adjacent swap", []int{2, 1, 0}, 10 + 15 + 10},
		{"rotated", []int{0, 1, 2}, 15 + 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := feud.ScoreRanking(answers, tt.order)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreRankingReversedLongList(t *testing.T) {
	answers := []feud.SurveyAnswer{
		{Label: "a", Points: 50},
		{Label: "b", Points: 40},
		{Label: "c", Points: 30},
		{Label: "d", Points: 20},
		{Label: "e", Points: 10},
	}

	got, err := feud.ScoreRanking(answers, []int{4, 3, 2, 1, 0})
	require.NoError(t, err)
	// Only the middle answer stays put; every other item moves two or more.
	assert.Equal(t, 30, got)
}

func TestScoreRankingRoundsHalfPoints(t *testing.T) {
	answers := []feud.SurveyAnswer{
		{Label: "a", Points: 15},
		{Label: "b", Points: 5},
	}

	got, err := feud.ScoreRanking(answers, []int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 8+3, got)
}

func TestScoreRankingRejectsBadOrders(t *testing.T) {
	answers := []feud.SurveyAnswer{{Points: 1}, {Points: 2}, {Points: 3}}

	for name, order := range map[string][]int{
		"short":        {0, 1},
		"duplicate":    {0, 0, 1},
		"out of range": {0, 1, 3},
		"negative":     {-1, 0, 1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := feud.ScoreRanking(answers, order)
			assert.ErrorIs(t, err, feud.ErrInvalidOrder)
		})
	}
}

func TestAddStrike(t *testing.T) {
	strikes, team := 0, feud.Team1

	strikes, team = feud.AddStrike(strikes, team)
	assert.Equal(t, 1, strikes)
	assert.Equal(t, feud.Team1, team)

	strikes, team = feud.AddStrike(strikes, team)
	assert.Equal(t, 2, strikes)
	assert.Equal(t, feud.Team1, team)

	strikes, team = feud.AddStrike(strikes, team)
	assert.Equal(t, 0, strikes)
	assert.Equal(t, feud.Team2, team)
}
