/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package feud

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"
)

//go:embed rounds.yaml
var defaultRounds []byte

// contentFile is the on-disk layout of a round list. Policies are keyed by
// round id and attached to the matching closest round on load.
type contentFile struct {
	Policies map[int]ClosestPolicy `yaml:"policies"`
	Rounds   []Round               `yaml:"rounds"`
}

// DefaultRounds returns the built-in Financial Feud round list.
func DefaultRounds() ([]Round, error) {
	return LoadRounds(bytes.NewReader(defaultRounds))
}

// LoadRoundsFile reads a round list from path.
func LoadRoundsFile(path string) ([]Round, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rounds, err := LoadRounds(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return rounds, nil
}

// LoadRounds decodes and validates a YAML round list.
func LoadRounds(r io.Reader) ([]Round, error) {
	var content contentFile

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&content); err != nil {
		return nil, fmt.Errorf("decode rounds: %w", err)
	}

	rounds, err := applyPolicies(content.Rounds, content.Policies)
	if err != nil {
		return nil, err
	}

	if err := Validate(rounds); err != nil {
		return nil, err
	}

	return rounds, nil
}

func applyPolicies(rounds []Round, policies map[int]ClosestPolicy) ([]Round, error) {
	byID := make(map[int]int, len(rounds))
	for i, r := range rounds {
		byID[r.ID] = i
	}

	for id, p := range policies {
		i, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("policy for unknown round %d", id)
		}
		if rounds[i].Type != RoundClosest {
			return nil, fmt.Errorf("policy for round %d: round is %s, not closest", id, rounds[i].Type)
		}

		policy := p
		rounds[i].Policy = &policy
	}

	return rounds, nil
}

// Validate checks the authoring contract of every round and reports all
// problems at once.
func Validate(rounds []Round) error {
	if len(rounds) == 0 {
		return ErrNoRounds
	}

	var errs []error
	seen := make(map[int]bool, len(rounds))

	for _, r := range rounds {
		if seen[r.ID] {
			errs = append(errs, fmt.Errorf("round %d: duplicate id", r.ID))
		}
		seen[r.ID] = true

		if err := validateRound(&r); err != nil {
			errs = append(errs, fmt.Errorf("round %d: %w", r.ID, err))
		}
	}

	return errors.Join(errs...)
}

func validateRound(r *Round) error {
	if r.Ranked && r.Type != RoundSurvey {
		return errors.New("only survey rounds can be ranked")
	}

	switch r.Type {
	case RoundSurvey:
		if len(r.Answers) == 0 {
			return errors.New("survey round has no answers")
		}
		for i, a := range r.Answers {
			if a.Points < 0 {
				return fmt.Errorf("answer %d has negative points", i)
			}
		}

	case RoundMulti:
		correct := 0
		for _, c := range r.Choices {
			if c.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("multi round needs exactly one correct choice, has %d", correct)
		}

	case RoundClosest:
		for _, band := range []*Range{r.ExpectedRange, r.RunnerUpRange()} {
			if band != nil && band.Min > band.Max {
				return fmt.Errorf("range %v-%v is inverted", band.Min, band.Max)
			}
		}

	case RoundOpen:
		if r.MaxPoints < 0 {
			return errors.New("max_points must not be negative")
		}

	case RoundLightning:

	default:
		return fmt.Errorf("unknown round type %q", r.Type)
	}

	return nil
}
