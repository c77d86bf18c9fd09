/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package feud

import "math"

type RoundType string

const (
	RoundSurvey    RoundType = "survey"
	RoundMulti     RoundType = "multi"
	RoundClosest   RoundType = "closest"
	RoundOpen      RoundType = "open"
	RoundLightning RoundType = "lightning"
)

const (
	defaultOpenMax    = 40
	multiBonus        = 50
	exactTolerance    = 0.001
	exactPoints       = 75
	closerPoints      = 50
	runnerUpPoints    = 25
	rankingHalfCredit = 0.5
)

// Team identifies one of the two competing teams. Zero means "no team".
type Team int

const (
	Team1 Team = 1
	Team2 Team = 2
)

func (t Team) Valid() bool {
	return t == Team1 || t == Team2
}

// Other returns the opposing team.
func (t Team) Other() Team {
	if t == Team1 {
		return Team2
	}
	return Team1
}

func (t Team) index() int {
	return int(t) - 1
}

type SurveyAnswer struct {
	Label  string `yaml:"label" json:"label"`
	Points int    `yaml:"points" json:"points"`
}

type MultiAnswer struct {
	Label     string `yaml:"label" json:"label"`
	IsCorrect bool   `yaml:"correct" json:"-"`
}

// Range is an inclusive numeric band.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (r *Range) Contains(v float64) bool {
	if r == nil {
		return false
	}
	return v >= r.Min && v <= r.Max
}

// ClosestPolicy tunes the closest-numeric scorer for a single round.
// Zero point values fall back to the defaults. ExactShutout denies the
// runner-up credit to the other team whenever one team is exact.
type ClosestPolicy struct {
	ExactPoints    int    `yaml:"exact_points"`
	CloserPoints   int    `yaml:"closer_points"`
	RunnerUpPoints int    `yaml:"runner_up_points"`
	RunnerUpRange  *Range `yaml:"runner_up_range"`
	ExactShutout   bool   `yaml:"exact_shutout"`
}

func (p *ClosestPolicy) exact() int {
	if p == nil || p.ExactPoints == 0 {
		return exactPoints
	}
	return p.ExactPoints
}

func (p *ClosestPolicy) closer() int {
	if p == nil || p.CloserPoints == 0 {
		return closerPoints
	}
	return p.CloserPoints
}

func (p *ClosestPolicy) runnerUp() int {
	if p == nil || p.RunnerUpPoints == 0 {
		return runnerUpPoints
	}
	return p.RunnerUpPoints
}

// Round is the read-only descriptor for one round of play.
type Round struct {
	ID        int       `yaml:"id"`
	Type      RoundType `yaml:"type"`
	Label     string    `yaml:"label"`
	Title     string    `yaml:"title"`
	Prompt    string    `yaml:"prompt"`
	HostNotes string    `yaml:"host_notes"`

	Answers []SurveyAnswer `yaml:"answers"`
	Ranked  bool           `yaml:"ranked"`

	Choices []MultiAnswer `yaml:"choices"`

	CorrectAnswer *float64       `yaml:"correct_answer"`
	ExpectedRange *Range         `yaml:"expected_range"`
	Policy        *ClosestPolicy `yaml:"-"`

	MaxPoints int `yaml:"max_points"`
}

// Scoreable reports whether a closest round has a usable target.
func (r *Round) Scoreable() bool {
	return r.CorrectAnswer != nil && *r.CorrectAnswer != 0
}

// RunnerUpRange is the band a non-winning closest guess must land in to
// earn partial credit.
func (r *Round) RunnerUpRange() *Range {
	if r.Policy != nil && r.Policy.RunnerUpRange != nil {
		return r.Policy.RunnerUpRange
	}
	return r.ExpectedRange
}

func (r *Round) openCap() int {
	if r.MaxPoints <= 0 {
		return defaultOpenMax
	}
	return r.MaxPoints
}

func (r *Round) isExact(guess float64) bool {
	return r.Scoreable() && math.Abs(guess-*r.CorrectAnswer) < exactTolerance
}
