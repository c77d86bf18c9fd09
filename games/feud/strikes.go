package feud

const maxStrikes = 2

// AddStrike advances the strike counter. The third strike clears the
// counter and hands control to the other team.
func AddStrike(strikes int, active Team) (int, Team) {
	if strikes < maxStrikes {
		return strikes + 1, active
	}
	return 0, active.Other()
}
