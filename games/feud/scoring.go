/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package feud

import (
	"math"
	"slices"
	"sort"
)

// Award is a point delta for a single team.
type Award struct {
	Team   Team `json:"team"`
	Points int  `json:"points"`
}

// RevealSurvey awards the authored points for answer index to team and
// returns the grown reveal set. The input set is never modified.
func RevealSurvey(r *Round, revealed []int, index int, team Team) (Award, []int, error) {
	if index < 0 || index >= len(r.Answers) {
		return Award{}, revealed, ErrInvalidIndex
	}
	if slices.Contains(revealed, index) {
		return Award{}, revealed, ErrAlreadyRevealed
	}

	next := make([]int, 0, len(revealed)+1)
	next = append(next, revealed...)
	next = append(next, index)
	sort.Ints(next)

	return Award{Team: team, Points: r.Answers[index].Points}, next, nil
}

// ScoreMulti returns the bonus each team earns for its selection.
func ScoreMulti(r *Round, sel1, sel2 int) ([2]int, error) {
	var out [2]int
	for i, sel := range [2]int{sel1, sel2} {
		if sel < 0 || sel >= len(r.Choices) {
			return [2]int{}, ErrInvalidIndex
		}
		if r.Choices[sel].IsCorrect {
			out[i] = multiBonus
		}
	}
	return out, nil
}

// ClosestResult holds the outcome of a closest-numeric comparison. Scored
// marks which teams have a final result; Points is only meaningful for
// those teams.
type ClosestResult struct {
	Points [2]int
	Scored [2]bool
}

// ScoreClosest compares both guesses against the round target. A nil guess
// means that team has not answered yet: a lone exact guess scores
// immediately, anything else waits for the other team.
func ScoreClosest(r *Round, guess1, guess2 *float64) ClosestResult {
	var res ClosestResult

	if guess1 == nil || guess2 == nil {
		for i, g := range [2]*float64{guess1, guess2} {
			if g != nil && r.isExact(*g) {
				res.Points[i] = r.Policy.exact()
				res.Scored[i] = true
			}
		}
		return res
	}

	res.Scored = [2]bool{true, true}

	if !r.Scoreable() {
		return res
	}

	g := [2]float64{*guess1, *guess2}
	exact := [2]bool{r.isExact(g[0]), r.isExact(g[1])}
	band := r.RunnerUpRange()

	shutout := r.Policy != nil && r.Policy.ExactShutout

	runnerUp := func(i int) int {
		if band.Contains(g[i]) && !(shutout && (exact[0] || exact[1])) {
			return r.Policy.runnerUp()
		}
		return 0
	}

	switch {
	case exact[0] && exact[1]:
		res.Points = [2]int{r.Policy.exact(), r.Policy.exact()}
	case exact[0]:
		res.Points = [2]int{r.Policy.exact(), runnerUp(1)}
	case exact[1]:
		res.Points = [2]int{runnerUp(0), r.Policy.exact()}
	default:
		target := *r.CorrectAnswer
		d1 := math.Abs(g[0] - target)
		d2 := math.Abs(g[1] - target)

		switch {
		case d1 < d2:
			res.Points = [2]int{r.Policy.closer(), runnerUp(1)}
		case d2 < d1:
			res.Points = [2]int{runnerUp(0), r.Policy.closer()}
		default:
			res.Points = [2]int{r.Policy.closer(), r.Policy.closer()}
		}
	}

	return res
}

// AwardOpen validates a host-graded award against the round cap.
func AwardOpen(r *Round, points int) (int, error) {
	if points < 0 || points > r.openCap() {
		return 0, ErrPointsOutOfRange
	}
	return points, nil
}

// LightningIncrements are the quick-award buttons offered to the host.
var LightningIncrements = []int{5, 10, 15, 20}

func AwardLightning(increment int) (int, error) {
	if !slices.Contains(LightningIncrements, increment) {
		return 0, ErrInvalidIncrement
	}
	return increment, nil
}

// CanonicalOrder lists answer indices by descending points. Equal points
// keep their authored order.
func CanonicalOrder(answers []SurveyAnswer) []int {
	order := make([]int, len(answers))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return answers[order[a]].Points > answers[order[b]].Points
	})
	return order
}

// ScoreRanking scores a submitted ordering of answer indices. Each answer
// in its canonical slot earns full points, one slot away earns half, and
// anything further earns nothing.
func ScoreRanking(answers []SurveyAnswer, order []int) (int, error) {
	if len(order) != len(answers) {
		return 0, ErrInvalidOrder
	}

	seen := make([]bool, len(answers))
	for _, idx := range order {
		if idx < 0 || idx >= len(answers) || seen[idx] {
			return 0, ErrInvalidOrder
		}
		seen[idx] = true
	}

	canonical := make([]int, len(answers))
	for pos, idx := range CanonicalOrder(answers) {
		canonical[idx] = pos
	}

	total := 0
	for pos, idx := range order {
		diff := pos - canonical[idx]
		if diff < 0 {
			diff = -diff
		}

		switch diff {
		case 0:
			total += answers[idx].Points
		case 1:
			total += int(math.Round(float64(answers[idx].Points) * rankingHalfCredit))
		}
	}

	return total, nil
}
