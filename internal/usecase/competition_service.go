package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/riskibarqy/game-lobby/internal/domain/competition"
	"github.com/riskibarqy/game-lobby/internal/domain/team"
	"github.com/riskibarqy/game-lobby/internal/platform/cache"
	idgen "github.com/riskibarqy/game-lobby/internal/platform/id"
	"github.com/riskibarqy/game-lobby/internal/platform/logging"
)

const (
	pinDigits          = 6
	pinGenerateRetries = 5
)

type CreateCompetitionInput struct {
	Name        string
	OwnerUserID string
}

// CompetitionService owns the competition lifecycle: creation with a unique
// short pin, the Registration -> InProgress -> Finished transitions, and team
// listings for organizers.
type CompetitionService struct {
	competitionRepo competition.Repository
	teamRepo        team.Repository
	pinCache        *cache.Store
	idGen           idgen.Generator
	logger          *logging.Logger
	now             func() time.Time
	newPin          func() (string, error)
}

func NewCompetitionService(
	competitionRepo competition.Repository,
	teamRepo team.Repository,
	pinCache *cache.Store,
	idGen idgen.Generator,
	logger *logging.Logger,
) *CompetitionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &CompetitionService{
		competitionRepo: competitionRepo,
		teamRepo:        teamRepo,
		pinCache:        pinCache,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
		newPin:          randomPin,
	}
}

func (s *CompetitionService) Create(ctx context.Context, input CreateCompetitionInput) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Create")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.OwnerUserID = strings.TrimSpace(input.OwnerUserID)
	if input.Name == "" {
		return competition.Competition{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.OwnerUserID == "" {
		return competition.Competition{}, fmt.Errorf("%w: owner user id is required", ErrInvalidInput)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return competition.Competition{}, fmt.Errorf("generate competition id: %w", err)
	}

	// Pins are short, so collisions with live competitions are possible.
	// Retry with fresh pins a few times before giving up.
	var lastErr error
	for attempt := 0; attempt < pinGenerateRetries; attempt++ {
		pin, err := s.newPin()
		if err != nil {
			return competition.Competition{}, fmt.Errorf("generate pin: %w", err)
		}

		if _, exists, err := s.competitionRepo.GetByPin(ctx, pin); err != nil {
			return competition.Competition{}, fmt.Errorf("check pin collision: %w", err)
		} else if exists {
			lastErr = fmt.Errorf("pin %s already in use", pin)
			continue
		}

		now := s.now().UTC()
		comp := competition.Competition{
			ID:          id,
			Pin:         pin,
			Name:        input.Name,
			OwnerUserID: input.OwnerUserID,
			State:       competition.StateRegistration,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := comp.Validate(); err != nil {
			return competition.Competition{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		if err := s.competitionRepo.Create(ctx, comp); err != nil {
			return competition.Competition{}, fmt.Errorf("create competition: %w", err)
		}

		return comp, nil
	}

	return competition.Competition{}, fmt.Errorf("%w: could not allocate a unique pin: %v", ErrDependencyUnavailable, lastErr)
}

// Start moves a competition from Registration to InProgress, closing the join
// window.
func (s *CompetitionService) Start(ctx context.Context, pin, actorUserID string) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Start")
	defer span.End()

	return s.transition(ctx, pin, actorUserID, competition.StateRegistration, competition.StateInProgress)
}

// Finish moves a competition from InProgress to Finished.
func (s *CompetitionService) Finish(ctx context.Context, pin, actorUserID string) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Finish")
	defer span.End()

	return s.transition(ctx, pin, actorUserID, competition.StateInProgress, competition.StateFinished)
}

func (s *CompetitionService) transition(ctx context.Context, pin, actorUserID string, from, to competition.State) (competition.Competition, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return competition.Competition{}, fmt.Errorf("%w: pin is required", ErrInvalidInput)
	}

	comp, exists, err := s.competitionRepo.GetByPin(ctx, pin)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("get competition by pin: %w", err)
	}
	if !exists {
		return competition.Competition{}, fmt.Errorf("%w: competition pin=%s", ErrNotFound, pin)
	}
	if comp.OwnerUserID != actorUserID {
		return competition.Competition{}, fmt.Errorf("%w: only the owner may change competition state", ErrForbidden)
	}

	updated, err := s.competitionRepo.TransitionState(ctx, comp.ID, from, to)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("transition competition state: %w", err)
	}
	if !updated {
		return competition.Competition{}, fmt.Errorf("%w: competition state=%s, want %s", ErrIllegalGameState, comp.State, from)
	}

	s.invalidatePin(ctx, pin)

	comp.State = to
	comp.UpdatedAt = s.now().UTC()
	return comp, nil
}

// ListTeams returns the teams registered in the competition, owner only.
func (s *CompetitionService) ListTeams(ctx context.Context, pin, actorUserID string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.ListTeams")
	defer span.End()

	pin = strings.TrimSpace(pin)
	if pin == "" {
		return nil, fmt.Errorf("%w: pin is required", ErrInvalidInput)
	}

	comp, exists, err := s.competitionRepo.GetByPin(ctx, pin)
	if err != nil {
		return nil, fmt.Errorf("get competition by pin: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: competition pin=%s", ErrNotFound, pin)
	}
	if comp.OwnerUserID != actorUserID {
		return nil, fmt.Errorf("%w: only the owner may list teams", ErrForbidden)
	}

	teams, err := s.teamRepo.ListByCompetition(ctx, comp.ID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	return teams, nil
}

// invalidatePin drops the cached check_pin answer after a state change so
// pre-checks observe the new join window promptly.
func (s *CompetitionService) invalidatePin(ctx context.Context, pin string) {
	if s.pinCache == nil {
		return
	}
	s.pinCache.Delete(ctx, "check_pin:"+pin)
}

func randomPin() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < pinDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", pinDigits, n), nil
}
