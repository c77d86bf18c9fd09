package feud

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultMatchThreshold is the minimum similarity for a survey suggestion.
const DefaultMatchThreshold = 0.35

// Similarity returns a score in [0,1] for how closely a matches b, ignoring
// case and surrounding whitespace.
func Similarity(a, b string) float64 {
	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))

	if s1 == s2 {
		return 1
	}

	l1 := utf8.RuneCountInString(s1)
	l2 := utf8.RuneCountInString(s2)

	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		shorter, longer := l1, l2
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return float64(shorter) / float64(longer)
	}

	longest := max(l1, l2)
	if longest == 0 {
		return 1
	}

	return 1 - float64(levenshtein.ComputeDistance(s1, s2))/float64(longest)
}

// wordScore credits shared keywords, so "churn" can find
// "Decrease churn and improve retention".
func wordScore(input, answer string) float64 {
	in := strings.ToLower(strings.TrimSpace(input))
	inWords := strings.Fields(in)
	words := strings.Fields(strings.ToLower(answer))

	score := 0.0
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		for _, iw := range inWords {
			if strings.Contains(iw, w) || strings.Contains(w, iw) {
				score += 0.25
				break
			}
		}
	}

	significant, matched := 0, 0
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 3 {
			continue
		}
		significant++
		if strings.Contains(in, w) {
			matched++
		}
	}
	if matched > 0 {
		score += float64(matched) / float64(significant) * 0.3
	}

	return score
}

// Match is a candidate answer for free-text input.
type Match struct {
	Index      int     `json:"index"`
	Label      string  `json:"label"`
	Similarity float64 `json:"similarity"`
}

// BestMatch finds the closest label to input at or above threshold,
// skipping indices in exclude. It only suggests; nothing is scored.
func BestMatch(input string, labels []string, exclude []int, threshold float64) (Match, bool) {
	if strings.TrimSpace(input) == "" {
		return Match{}, false
	}

	skip := make(map[int]bool, len(exclude))
	for _, i := range exclude {
		skip[i] = true
	}

	best := Match{Index: -1}
	for i, label := range labels {
		if skip[i] {
			continue
		}

		s := max(Similarity(input, label), wordScore(input, label))
		if s >= threshold && s > best.Similarity {
			best = Match{Index: i, Label: label, Similarity: s}
		}
	}

	return best, best.Index >= 0
}
