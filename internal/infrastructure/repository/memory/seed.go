package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/game-lobby/internal/domain/competition"
)

// Seed loads a demo competition so memory-backed deployments have something
// to join out of the box.
func Seed(ctx context.Context, repo *CompetitionRepository) error {
	now := time.Now().UTC()

	return repo.Create(ctx, competition.Competition{
		ID:          "comp-demo-1",
		Pin:         "123456",
		Name:        "Demo Competition",
		OwnerUserID: "user-organizer-1",
		State:       competition.StateRegistration,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}
