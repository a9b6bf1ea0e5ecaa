package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/game-lobby/internal/domain/team"
)

// TeamRepository is the in-memory team registry. Registration is an
// insert-if-absent under a single mutex, which makes the one-team-per-captain
// rule atomic under concurrent joins.
type TeamRepository struct {
	mu            sync.Mutex
	byID          map[string]team.Team
	byCompCaptain map[string]map[string]string
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{
		byID:          make(map[string]team.Team),
		byCompCaptain: make(map[string]map[string]string),
	}
}

var _ team.Repository = (*TeamRepository)(nil)

func (r *TeamRepository) TryRegister(_ context.Context, t team.Team) (team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	captains, ok := r.byCompCaptain[t.CompetitionID]
	if !ok {
		captains = make(map[string]string)
		r.byCompCaptain[t.CompetitionID] = captains
	}
	if _, taken := captains[t.CaptainUserID]; taken {
		return team.Team{}, team.ErrAlreadyRegistered
	}

	captains[t.CaptainUserID] = t.ID
	r.byID[t.ID] = t

	return t, nil
}

func (r *TeamRepository) ListByCompetition(_ context.Context, competitionID string) ([]team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var teams []team.Team
	for _, t := range r.byID {
		if t.CompetitionID == competitionID {
			teams = append(teams, t)
		}
	}
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].CreatedAt.Before(teams[j].CreatedAt) ||
			(teams[i].CreatedAt.Equal(teams[j].CreatedAt) && teams[i].ID < teams[j].ID)
	})

	return teams, nil
}
