package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/game-lobby/internal/domain/competition"
)

// CompetitionRepository is the in-memory competition store used for local
// development and tests.
type CompetitionRepository struct {
	mu    sync.RWMutex
	byID  map[string]competition.Competition
	byPin map[string]string
}

func NewCompetitionRepository() *CompetitionRepository {
	return &CompetitionRepository{
		byID:  make(map[string]competition.Competition),
		byPin: make(map[string]string),
	}
}

var _ competition.Repository = (*CompetitionRepository)(nil)

func (r *CompetitionRepository) Create(_ context.Context, c competition.Competition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; exists {
		return fmt.Errorf("competition %s already exists", c.ID)
	}
	if _, exists := r.byPin[c.Pin]; exists {
		return fmt.Errorf("pin %s already in use", c.Pin)
	}

	r.byID[c.ID] = c
	r.byPin[c.Pin] = c.ID

	return nil
}

func (r *CompetitionRepository) GetByPin(_ context.Context, pin string) (competition.Competition, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPin[pin]
	if !ok {
		return competition.Competition{}, false, nil
	}

	return r.byID[id], true, nil
}

func (r *CompetitionRepository) TransitionState(_ context.Context, id string, from, to competition.State) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	if c.State != from {
		return false, nil
	}

	c.State = to
	r.byID[id] = c

	return true, nil
}
