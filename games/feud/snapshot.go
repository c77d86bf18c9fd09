package feud

// Snapshot is the read-only view of a game handed to displays. Host
// snapshots include the answer key; viewer snapshots only show what has
// been revealed.
type Snapshot struct {
	Round    int        `json:"round"`
	Rounds   int        `json:"rounds"`
	Finished bool       `json:"finished"`
	Winner   Team       `json:"winner,omitempty"`
	Teams    [2]TeamRow `json:"teams"`
	Active   Team       `json:"active_team"`
	Strikes  int        `json:"strikes"`
	Current  *RoundView `json:"current,omitempty"`
}

type TeamRow struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type AnswerView struct {
	Label    string `json:"label,omitempty"`
	Points   int    `json:"points,omitempty"`
	Revealed bool   `json:"revealed"`
}

type ChoiceView struct {
	Label   string `json:"label"`
	Correct *bool  `json:"correct,omitempty"`
}

type RoundView struct {
	ID        int       `json:"id"`
	Type      RoundType `json:"type"`
	Label     string    `json:"label"`
	Title     string    `json:"title"`
	Prompt    string    `json:"prompt"`
	HostNotes string    `json:"host_notes,omitempty"`
	Complete  bool      `json:"complete"`

	Answers        []AnswerView `json:"answers,omitempty"`
	Ranked         bool         `json:"ranked,omitempty"`
	Rankings       [2][]int     `json:"rankings,omitempty"`
	RankingPoints  [2]*int      `json:"ranking_points,omitempty"`
	CanonicalOrder []int        `json:"canonical_order,omitempty"`

	Choices     []ChoiceView `json:"choices,omitempty"`
	Selections  [2]*int      `json:"selections,omitempty"`
	MultiPoints *[2]int      `json:"multi_points,omitempty"`

	CorrectAnswer *float64    `json:"correct_answer,omitempty"`
	ExpectedRange *Range      `json:"expected_range,omitempty"`
	Guesses       [2]*float64 `json:"guesses,omitempty"`
	ClosestPoints [2]*int     `json:"closest_points,omitempty"`

	MaxPoints  int     `json:"max_points,omitempty"`
	OpenAwards [2]*int `json:"open_awards,omitempty"`

	Increments      []int  `json:"increments,omitempty"`
	LightningTotals [2]int `json:"lightning_totals"`
}

// Snapshot renders s for a display. host selects the answer-key view.
// Viewer snapshots hide each team's guesses, picks and rankings until the
// other team can no longer act on them.
func (g *Game) Snapshot(s State, host bool) Snapshot {
	return g.snapshot(s, host, 0)
}

// TeamSnapshot is the viewer snapshot for a device playing for t. It also
// shows t's own pending answers.
func (g *Game) TeamSnapshot(s State, t Team) Snapshot {
	return g.snapshot(s, false, t)
}

func (g *Game) snapshot(s State, host bool, own Team) Snapshot {
	snap := Snapshot{
		Round:    s.RoundIndex + 1,
		Rounds:   len(g.rounds),
		Finished: s.Finished,
		Winner:   g.Winner(s),
		Active:   s.Active,
		Strikes:  s.Strikes,
	}
	for i := range snap.Teams {
		snap.Teams[i] = TeamRow{Name: s.TeamNames[i], Score: s.Scores[i]}
	}

	if s.Finished {
		return snap
	}

	snap.Current = g.roundView(s, host, own)
	return snap
}

func (g *Game) roundView(s State, host bool, own Team) *RoundView {
	r := g.Round(s.RoundIndex)
	rs := s.Round
	complete := g.Complete(s)

	// visible reports whether team i's answer may be shown.
	visible := func(i int, settled bool) bool {
		return host || settled || own.index() == i
	}

	v := &RoundView{
		ID:       r.ID,
		Type:     r.Type,
		Label:    r.Label,
		Title:    r.Title,
		Prompt:   r.Prompt,
		Complete: complete,
	}
	if host {
		v.HostNotes = r.HostNotes
	}

	switch r.Type {
	case RoundSurvey:
		v.Ranked = r.Ranked
		revealed := make(map[int]bool, len(rs.Revealed))
		for _, i := range rs.Revealed {
			revealed[i] = true
		}

		v.Answers = make([]AnswerView, len(r.Answers))
		for i, a := range r.Answers {
			av := AnswerView{Revealed: revealed[i]}
			switch {
			case host, revealed[i], r.Ranked && complete:
				av.Label, av.Points = a.Label, a.Points
			case r.Ranked:
				av.Label = a.Label
			}
			v.Answers[i] = av
		}

		if r.Ranked {
			for i := range rs.Rankings {
				if rs.Rankings[i] != nil && visible(i, complete) {
					v.Rankings[i] = rs.Rankings[i]
					v.RankingPoints[i] = &rs.RankingPoints[i]
				}
			}
			if host || complete {
				v.CanonicalOrder = CanonicalOrder(r.Answers)
			}
		}

	case RoundMulti:
		v.Choices = make([]ChoiceView, len(r.Choices))
		for i, c := range r.Choices {
			cv := ChoiceView{Label: c.Label}
			if host || rs.Shown {
				correct := c.IsCorrect
				cv.Correct = &correct
			}
			v.Choices[i] = cv
		}
		for i := range rs.Selections {
			if visible(i, rs.Shown) {
				v.Selections[i] = rs.Selections[i]
			}
		}
		if rs.Shown {
			points := rs.MultiPoints
			v.MultiPoints = &points
		}

	case RoundClosest:
		v.ExpectedRange = r.ExpectedRange
		if host || complete {
			v.CorrectAnswer = r.CorrectAnswer
		}
		for i := range rs.Guesses {
			if !visible(i, complete) {
				continue
			}
			v.Guesses[i] = rs.Guesses[i]
			if rs.ClosestScored[i] {
				v.ClosestPoints[i] = &rs.ClosestPoints[i]
			}
		}

	case RoundOpen:
		v.MaxPoints = r.openCap()
		v.OpenAwards = rs.OpenAwards

	case RoundLightning:
		v.Increments = LightningIncrements
		v.LightningTotals = rs.LightningTotals
	}

	return v
}
