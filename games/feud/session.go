/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package feud

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

type ActionType string

const (
	ActionRevealAnswer   ActionType = "reveal_answer"
	ActionSelectChoice   ActionType = "select_choice"
	ActionRevealChoices  ActionType = "reveal_choices"
	ActionSubmitGuess    ActionType = "submit_guess"
	ActionAwardOpen      ActionType = "award_open"
	ActionAwardLightning ActionType = "award_lightning"
	ActionSubmitRanking  ActionType = "submit_ranking"
	ActionAddStrike      ActionType = "add_strike"
	ActionSwitchTeam     ActionType = "switch_team"
	ActionAdvanceRound   ActionType = "advance_round"
	ActionResetGame      ActionType = "reset_game"
	ActionSetTeamNames   ActionType = "set_team_names"
)

// Action is a single host or team event. Team zero means the active team.
type Action struct {
	Type   ActionType
	Team   Team
	Index  int
	Value  string
	Points int
	Order  []int
	Names  [2]string
}

// RoundState is everything that is thrown away when the round advances.
// Slices are replaced, never appended to in place, so copies of a State
// never observe each other's changes.
type RoundState struct {
	Revealed []int

	Selections  [2]*int
	Shown       bool
	MultiPoints [2]int

	Guesses       [2]*float64
	ClosestScored [2]bool
	ClosestPoints [2]int

	OpenAwards [2]*int

	LightningTotals [2]int

	Rankings      [2][]int
	RankingPoints [2]int
}

// State is the whole scoreboard for one game.
type State struct {
	Scores     [2]int
	TeamNames  [2]string
	Active     Team
	Strikes    int
	RoundIndex int
	Finished   bool
	Round      RoundState
}

// Game applies actions to a State against a fixed list of rounds.
type Game struct {
	rounds []Round
}

func NewGame(rounds []Round) (*Game, error) {
	if len(rounds) == 0 {
		return nil, ErrNoRounds
	}

	return &Game{rounds: slices.Clone(rounds)}, nil
}

func (g *Game) Len() int {
	return len(g.rounds)
}

// Round returns the descriptor at index i, or nil when out of range.
func (g *Game) Round(i int) *Round {
	if i < 0 || i >= len(g.rounds) {
		return nil
	}
	return &g.rounds[i]
}

// NewState returns a fresh game with team 1 in control.
func (g *Game) NewState(team1, team2 string) State {
	return State{
		TeamNames: [2]string{team1, team2},
		Active:    Team1,
	}
}

// Apply returns the state that results from a. On error the input state is
// returned unchanged.
func (g *Game) Apply(s State, a Action) (State, error) {
	next, err := g.apply(s, a)
	if err != nil {
		return s, err
	}
	return next, nil
}

func (g *Game) apply(s State, a Action) (State, error) {
	switch a.Type {
	case ActionResetGame:
		return g.NewState(s.TeamNames[0], s.TeamNames[1]), nil
	case ActionSetTeamNames:
		return setTeamNames(s, a.Names)
	}

	if s.Finished {
		return s, ErrGameOver
	}

	r := g.Round(s.RoundIndex)

	switch a.Type {
	case ActionRevealAnswer:
		return revealAnswer(s, r, a.Index)
	case ActionSelectChoice:
		return selectChoice(s, r, a.Team, a.Index)
	case ActionRevealChoices:
		return revealChoices(s, r)
	case ActionSubmitGuess:
		return submitGuess(s, r, a.Team, a.Value)
	case ActionAwardOpen:
		return awardOpen(s, r, a.Team, a.Points)
	case ActionAwardLightning:
		return awardLightning(s, r, a.Team, a.Points)
	case ActionSubmitRanking:
		return submitRanking(s, r, a.Team, a.Order)
	case ActionAddStrike:
		s.Strikes, s.Active = AddStrike(s.Strikes, s.Active)
		return s, nil
	case ActionSwitchTeam:
		s.Active = s.Active.Other()
		return s, nil
	case ActionAdvanceRound:
		return g.advance(s), nil
	}

	return s, ErrUnknownAction
}

func (g *Game) advance(s State) State {
	s.Round = RoundState{}
	s.Strikes = 0

	if s.RoundIndex+1 >= len(g.rounds) {
		s.Finished = true
		return s
	}

	s.RoundIndex++
	return s
}

// resolve maps the zero team onto the active team.
func resolve(s State, t Team) (Team, error) {
	if t == 0 {
		return s.Active, nil
	}
	if !t.Valid() {
		return 0, ErrInvalidTeam
	}
	return t, nil
}

func (s *State) award(t Team, points int) {
	s.Scores[t.index()] += points
}

func setTeamNames(s State, names [2]string) (State, error) {
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
		if names[i] == "" {
			return s, ErrInvalidTeamName
		}
	}
	s.TeamNames = names
	return s, nil
}

func revealAnswer(s State, r *Round, index int) (State, error) {
	if r.Type != RoundSurvey || r.Ranked {
		return s, ErrWrongRoundType
	}

	award, revealed, err := RevealSurvey(r, s.Round.Revealed, index, s.Active)
	if err != nil {
		return s, err
	}

	s.Round.Revealed = revealed
	s.award(award.Team, award.Points)
	return s, nil
}

func selectChoice(s State, r *Round, t Team, index int) (State, error) {
	if r.Type != RoundMulti {
		return s, ErrWrongRoundType
	}
	if s.Round.Shown {
		return s, ErrAlreadyScored
	}

	t, err := resolve(s, t)
	if err != nil {
		return s, err
	}
	if index < 0 || index >= len(r.Choices) {
		return s, ErrInvalidIndex
	}

	s.Round.Selections[t.index()] = &index
	return s, nil
}

func revealChoices(s State, r *Round) (State, error) {
	if r.Type != RoundMulti {
		return s, ErrWrongRoundType
	}
	if s.Round.Shown {
		return s, ErrAlreadyScored
	}

	sel := s.Round.Selections
	if sel[0] == nil || sel[1] == nil {
		return s, ErrAwaitingTeams
	}

	points, err := ScoreMulti(r, *sel[0], *sel[1])
	if err != nil {
		return s, err
	}

	s.Round.Shown = true
	s.Round.MultiPoints = points
	s.award(Team1, points[0])
	s.award(Team2, points[1])
	return s, nil
}

// ParseGuess reads a numeric guess, tolerating thousands separators and a
// trailing percent sign.
func ParseGuess(raw string) (float64, error) {
	v := strings.TrimSpace(raw)
	v = strings.TrimSuffix(v, "%")
	v = strings.ReplaceAll(v, ",", "")

	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidGuess
	}
	return f, nil
}

func submitGuess(s State, r *Round, t Team, raw string) (State, error) {
	if r.Type != RoundClosest {
		return s, ErrWrongRoundType
	}

	t, err := resolve(s, t)
	if err != nil {
		return s, err
	}
	if s.Round.ClosestScored[t.index()] {
		return s, ErrAlreadyScored
	}

	guess, err := ParseGuess(raw)
	if err != nil {
		return s, err
	}

	s.Round.Guesses[t.index()] = &guess

	res := ScoreClosest(r, s.Round.Guesses[0], s.Round.Guesses[1])
	for i, scored := range res.Scored {
		if !scored || s.Round.ClosestScored[i] {
			continue
		}
		s.Round.ClosestScored[i] = true
		s.Round.ClosestPoints[i] = res.Points[i]
		s.Scores[i] += res.Points[i]
	}

	return s, nil
}

func awardOpen(s State, r *Round, t Team, points int) (State, error) {
	if r.Type != RoundOpen {
		return s, ErrWrongRoundType
	}

	t, err := resolve(s, t)
	if err != nil {
		return s, err
	}
	if s.Round.OpenAwards[t.index()] != nil {
		return s, ErrAlreadyScored
	}

	points, err = AwardOpen(r, points)
	if err != nil {
		return s, err
	}

	s.Round.OpenAwards[t.index()] = &points
	s.award(t, points)
	return s, nil
}

func awardLightning(s State, r *Round, t Team, increment int) (State, error) {
	if r.Type != RoundLightning {
		return s, ErrWrongRoundType
	}

	t, err := resolve(s, t)
	if err != nil {
		return s, err
	}

	points, err := AwardLightning(increment)
	if err != nil {
		return s, err
	}

	s.Round.LightningTotals[t.index()] += points
	s.award(t, points)
	return s, nil
}

func submitRanking(s State, r *Round, t Team, order []int) (State, error) {
	if r.Type != RoundSurvey || !r.Ranked {
		return s, ErrWrongRoundType
	}

	t, err := resolve(s, t)
	if err != nil {
		return s, err
	}
	if s.Round.Rankings[t.index()] != nil {
		return s, ErrAlreadyScored
	}

	points, err := ScoreRanking(r.Answers, order)
	if err != nil {
		return s, err
	}

	s.Round.Rankings[t.index()] = slices.Clone(order)
	s.Round.RankingPoints[t.index()] = points
	s.award(t, points)
	return s, nil
}

// Complete reports whether every score for the current round has been
// settled. Lightning rounds never complete on their own.
func (g *Game) Complete(s State) bool {
	if s.Finished {
		return true
	}

	r := g.Round(s.RoundIndex)
	rs := s.Round

	switch r.Type {
	case RoundSurvey:
		if r.Ranked {
			return rs.Rankings[0] != nil && rs.Rankings[1] != nil
		}
		return len(rs.Revealed) == len(r.Answers)
	case RoundMulti:
		return rs.Shown
	case RoundClosest:
		return rs.ClosestScored[0] && rs.ClosestScored[1]
	case RoundOpen:
		return rs.OpenAwards[0] != nil && rs.OpenAwards[1] != nil
	}

	return false
}

// Winner returns the leading team once the game is finished. Zero means
// the game is still running or ended level.
func (g *Game) Winner(s State) Team {
	if !s.Finished {
		return 0
	}

	switch {
	case s.Scores[0] > s.Scores[1]:
		return Team1
	case s.Scores[1] > s.Scores[0]:
		return Team2
	}
	return 0
}

// Suggest offers the best unrevealed survey answer for free text typed by
// the host. The host still has to reveal it explicitly.
func (g *Game) Suggest(s State, text string) (Match, bool) {
	if s.Finished {
		return Match{}, false
	}

	r := g.Round(s.RoundIndex)
	if r.Type != RoundSurvey || r.Ranked {
		return Match{}, false
	}

	labels := make([]string, len(r.Answers))
	for i, a := range r.Answers {
		labels[i] = a.Label
	}

	return BestMatch(text, labels, s.Round.Revealed, DefaultMatchThreshold)
}
