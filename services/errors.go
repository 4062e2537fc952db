package services

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by a service wraps exactly one of these, so callers
// (and mapServiceErrorToHTTP) can switch on the category with errors.Is.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrInvalidState     = errors.New("operation not allowed in the current state")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
)

// Not found.
var (
	ErrTournamentNotFound = fmt.Errorf("%w: tournament", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("%w: match", ErrNotFound)
	ErrPlayerNotFound     = fmt.Errorf("%w: player", ErrNotFound)
)

// Invalid state.
var (
	ErrTournamentNotPending    = fmt.Errorf("%w: tournament is not pending", ErrInvalidState)
	ErrTournamentNotInProgress = fmt.Errorf("%w: tournament is not in progress", ErrInvalidState)
	ErrTournamentInUse         = fmt.Errorf("%w: tournament in use", ErrInvalidState)
	ErrFormatNotSupported      = fmt.Errorf("%w: format not supported", ErrInvalidState)
	ErrMatchAlreadyFinished    = fmt.Errorf("%w: match already finished", ErrInvalidState)
	ErrMatchNotPending         = fmt.Errorf("%w: match is not pending", ErrInvalidState)
	ErrMatchIsBye              = fmt.Errorf("%w: bye matches cannot be played", ErrInvalidState)
)

// Validation.
var (
	ErrNotEnoughPlayers       = fmt.Errorf("%w: at least 2 players are required", ErrValidationFailed)
	ErrTooManyPlayers         = fmt.Errorf("%w: more players than the tournament allows", ErrValidationFailed)
	ErrPlayerInactive         = fmt.Errorf("%w: player is inactive", ErrValidationFailed)
	ErrInvalidSeeding         = fmt.Errorf("%w: invalid seeding", ErrValidationFailed)
	ErrInvalidSeedingMode     = fmt.Errorf("%w: seeding mode must be automatic or manual", ErrValidationFailed)
	ErrTournamentNameRequired = fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	ErrInvalidFormat          = fmt.Errorf("%w: unknown tournament format", ErrValidationFailed)
	ErrInvalidBestOf          = fmt.Errorf("%w: best_of must be 3, 5 or 7", ErrValidationFailed)
	ErrInvalidMaxPlayers      = fmt.Errorf("%w: max_players must not be negative", ErrValidationFailed)
	ErrPlayerNameRequired     = fmt.Errorf("%w: player name is required", ErrValidationFailed)
	ErrInvalidMatchStatus     = fmt.Errorf("%w: status must be in_progress or finished", ErrValidationFailed)
	ErrWinnerNotInMatch       = fmt.Errorf("%w: winner is not a player of this match", ErrValidationFailed)
	ErrNoSets                 = fmt.Errorf("%w: at least one set is required", ErrValidationFailed)
	ErrTiedSet                = fmt.Errorf("%w: a set cannot end in a tie", ErrValidationFailed)
	ErrNegativeScore          = fmt.Errorf("%w: set scores cannot be negative", ErrValidationFailed)
	ErrMatchIncomplete        = fmt.Errorf("%w: match is not decided", ErrValidationFailed)
	ErrBothPlayersReachedSets = fmt.Errorf("%w: both players reached the winning set count", ErrValidationFailed)
	ErrTooManySets            = fmt.Errorf("%w: more sets than best_of allows", ErrValidationFailed)
	ErrSetAfterMatchDecided   = fmt.Errorf("%w: set recorded after the match was decided", ErrValidationFailed)
)

// Conflict.
var (
	ErrWinnerMismatch         = fmt.Errorf("%w: declared winner does not match the set scores", ErrConflict)
	ErrTournamentNameConflict = fmt.Errorf("%w: tournament name already exists", ErrConflict)
)
