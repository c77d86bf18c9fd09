package feud_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Seednode/feudbox/games/feud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRounds(t *testing.T) {
	rounds, err := feud.DefaultRounds()
	require.NoError(t, err)
	require.NotEmpty(t, rounds)

	byID := make(map[int]feud.Round, len(rounds))
	for _, r := range rounds {
		byID[r.ID] = r
	}

	r12, ok := byID[12]
	require.True(t, ok)
	require.NotNil(t, r12.Policy)
	assert.Equal(t, &feud.Range{Min: 235000, Max: 400000}, r12.RunnerUpRange())

	r2 := byID[2]
	assert.Nil(t, r2.Policy)
	assert.Equal(t, r2.ExpectedRange, r2.RunnerUpRange())
	require.NotNil(t, r2.CorrectAnswer)
	assert.Equal(t, 70.0, *r2.CorrectAnswer)

	assert.True(t, byID[13].Ranked)
	assert.Equal(t, feud.RoundLightning, byID[15].Type)
	assert.True(t, byID[9].Choices[2].IsCorrect)
}

func TestDefaultRoundTwoKeepsRunnerUp(t *testing.T) {
	rounds, err := feud.DefaultRounds()
	require.NoError(t, err)

	for i := range rounds {
		if rounds[i].ID != 2 {
			continue
		}

		got := feud.ScoreClosest(&rounds[i], num(70), num(68))
		assert.Equal(t, [2]int{75, 25}, got.Points)
		return
	}
	t.Fatal("round 2 missing from defaults")
}

func TestLoadRoundsRejectsBadContent(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"empty",
			"rounds: []\n",
			"no rounds",
		},
		{
			"unknown field",
			"rounds:\n  - id: 1\n    type: open\n    bogus: true\n",
			"bogus",
		},
		{
			"two correct choices",
			"rounds:\n  - id: 1\n    type: multi\n    choices:\n      - {label: a, correct: true}\n      - {label: b, correct: true}\n",
			"exactly one correct",
		},
		{
			"duplicate id",
			"rounds:\n  - {id: 1, type: open}\n  - {id: 1, type: lightning}\n",
			"duplicate id",
		},
		{
			"unknown type",
			"rounds:\n  - {id: 1, type: buzzer}\n",
			"unknown round type",
		},
		{
			"policy on open round",
			"policies:\n  1: {exact_points: 10}\nrounds:\n  - {id: 1, type: open}\n",
			"not closest",
		},
		{
			"policy for missing round",
			"policies:\n  7: {exact_points: 10}\nrounds:\n  - {id: 1, type: open}\n",
			"unknown round 7",
		},
		{
			"inverted range",
			"rounds:\n  - id: 1\n    type: closest\n    correct_answer: 5\n    expected_range: {min: 9, max: 1}\n",
			"inverted",
		},
		{
			"ranked multi",
			"rounds:\n  - {id: 1, type: multi, ranked: true}\n",
			"only survey rounds",
		},
		{
			"empty survey",
			"rounds:\n  - {id: 1, type: survey}\n",
			"no answers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := feud.LoadRounds(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRoundsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rounds.yaml")
	content := `policies:
  3:
    exact_shutout: true
rounds:
  - id: 3
    type: closest
    correct_answer: 10
    expected_range: {min: 8, max: 12}
  - id: 4
    type: open
    max_points: 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rounds, err := feud.LoadRoundsFile(path)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	require.NotNil(t, rounds[0].Policy)
	assert.True(t, rounds[0].Policy.ExactShutout)
	assert.Equal(t, 25, rounds[1].MaxPoints)

	_, err = feud.LoadRoundsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
