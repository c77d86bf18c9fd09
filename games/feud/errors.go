/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package feud

import "errors"

var (
	ErrAlreadyRevealed  = errors.New("answer already revealed")
	ErrAlreadyScored    = errors.New("already scored this round")
	ErrAwaitingTeams    = errors.New("waiting on both teams")
	ErrGameOver         = errors.New("game is over")
	ErrInvalidGuess     = errors.New("guess is not a number")
	ErrInvalidIncrement = errors.New("increment must be one of 5, 10, 15 or 20")
	ErrInvalidIndex     = errors.New("answer index out of range")
	ErrInvalidOrder     = errors.New("ranking must list every answer exactly once")
	ErrInvalidTeam      = errors.New("team must be 1 or 2")
	ErrInvalidTeamName  = errors.New("team names must not be empty")
	ErrPointsOutOfRange = errors.New("points outside allowed range")
	ErrNoRounds         = errors.New("no rounds configured")
	ErrUnknownAction    = errors.New("unknown action")
	ErrWrongRoundType   = errors.New("action does not apply to this round")
)
