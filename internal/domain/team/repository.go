package team

import (
	"context"
	"errors"
)

// ErrAlreadyRegistered is returned by TryRegister when the captain already
// owns a team in the competition.
var ErrAlreadyRegistered = errors.New("captain already has a team in this competition")

// Repository describes team persistence needs from use cases.
//
// TryRegister must be linearizable per (CompetitionID, CaptainUserID): when
// concurrent calls race for the same pair, exactly one succeeds and the rest
// fail with ErrAlreadyRegistered. Registrations by different captains never
// contend with each other.
type Repository interface {
	TryRegister(ctx context.Context, t Team) (Team, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]Team, error)
}
