package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/game-lobby/internal/domain/competition"
	"github.com/riskibarqy/game-lobby/internal/domain/liveevent"
	"github.com/riskibarqy/game-lobby/internal/domain/team"
	"github.com/riskibarqy/game-lobby/internal/platform/cache"
	idgen "github.com/riskibarqy/game-lobby/internal/platform/id"
	"github.com/riskibarqy/game-lobby/internal/platform/logging"
)

// EventPublisher is the live-event sink the join path notifies on success.
// Publish must never block the caller.
type EventPublisher interface {
	Publish(pin string, event liveevent.Event)
}

type JoinTeamInput struct {
	Pin           string
	CaptainUserID string
	TeamName      string
	Members       []string
}

type CheckPinResult struct {
	Exists   bool
	Joinable bool
}

// JoinService coordinates team registration: it gates joins on the
// competition lifecycle, enforces one team per captain through the registry's
// insert-if-absent primitive, and announces successful joins to live
// spectators.
type JoinService struct {
	competitionRepo competition.Repository
	teamRepo        team.Repository
	events          EventPublisher
	pinCache        *cache.Store
	idGen           idgen.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewJoinService(
	competitionRepo competition.Repository,
	teamRepo team.Repository,
	events EventPublisher,
	pinCache *cache.Store,
	idGen idgen.Generator,
	logger *logging.Logger,
) *JoinService {
	if logger == nil {
		logger = logging.Default()
	}

	return &JoinService{
		competitionRepo: competitionRepo,
		teamRepo:        teamRepo,
		events:          events,
		pinCache:        pinCache,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *JoinService) JoinTeam(ctx context.Context, input JoinTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JoinService.JoinTeam")
	defer span.End()

	input.Pin = strings.TrimSpace(input.Pin)
	input.CaptainUserID = strings.TrimSpace(input.CaptainUserID)
	input.TeamName = strings.TrimSpace(input.TeamName)
	if input.Pin == "" {
		return team.Team{}, fmt.Errorf("%w: pin is required", ErrInvalidInput)
	}
	if input.CaptainUserID == "" {
		return team.Team{}, fmt.Errorf("%w: captain user id is required", ErrInvalidInput)
	}
	if input.TeamName == "" {
		return team.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	comp, exists, err := s.competitionRepo.GetByPin(ctx, input.Pin)
	if err != nil {
		return team.Team{}, fmt.Errorf("get competition by pin: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: competition pin=%s", ErrNotFound, input.Pin)
	}
	if !comp.Joinable() {
		return team.Team{}, fmt.Errorf("%w: competition state=%s", ErrIllegalGameState, comp.State)
	}

	teamID, err := s.idGen.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	candidate := team.Team{
		ID:            teamID,
		CompetitionID: comp.ID,
		Name:          input.TeamName,
		CaptainUserID: input.CaptainUserID,
		Members:       normalizeMembers(input.Members, input.CaptainUserID),
		CreatedAt:     s.now().UTC(),
	}
	if err := candidate.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// The registry is the linearization point: concurrent joins by the same
	// captain resolve here, and the competition may have left Registration
	// since the snapshot above without affecting the uniqueness guarantee.
	created, err := s.teamRepo.TryRegister(ctx, candidate)
	if err != nil {
		if errors.Is(err, team.ErrAlreadyRegistered) {
			return team.Team{}, fmt.Errorf("%w: competition=%s captain=%s", ErrCaptainAlreadyHasTeam, comp.ID, input.CaptainUserID)
		}
		return team.Team{}, fmt.Errorf("register team: %w", err)
	}

	s.publishTeamJoined(ctx, comp.Pin, created)

	return created, nil
}

func (s *JoinService) CheckPin(ctx context.Context, pin string) (CheckPinResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JoinService.CheckPin")
	defer span.End()

	pin = strings.TrimSpace(pin)
	if pin == "" {
		return CheckPinResult{}, fmt.Errorf("%w: pin is required", ErrInvalidInput)
	}

	if s.pinCache == nil {
		return s.loadPinStatus(ctx, pin)
	}

	value, err := s.pinCache.GetOrLoad(ctx, "check_pin:"+pin, func(ctx context.Context) (any, error) {
		return s.loadPinStatus(ctx, pin)
	})
	if err != nil {
		return CheckPinResult{}, err
	}

	result, ok := value.(CheckPinResult)
	if !ok {
		return CheckPinResult{}, fmt.Errorf("unexpected cache value for pin=%s", pin)
	}

	return result, nil
}

func (s *JoinService) loadPinStatus(ctx context.Context, pin string) (CheckPinResult, error) {
	comp, exists, err := s.competitionRepo.GetByPin(ctx, pin)
	if err != nil {
		return CheckPinResult{}, fmt.Errorf("get competition by pin: %w", err)
	}
	if !exists {
		return CheckPinResult{}, nil
	}

	return CheckPinResult{
		Exists:   true,
		Joinable: comp.Joinable(),
	}, nil
}

// publishTeamJoined is fire-and-forget: the join already committed, so a
// notification problem is logged and swallowed.
func (s *JoinService) publishTeamJoined(ctx context.Context, pin string, created team.Team) {
	if s.events == nil {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "publish team joined event panicked", "pin", pin, "panic", rec)
		}
	}()

	s.events.Publish(pin, liveevent.TeamJoined(pin, created.ID, created.Name, created.CreatedAt))
}

func normalizeMembers(members []string, captainUserID string) []string {
	out := make([]string, 0, len(members)+1)
	seen := make(map[string]struct{}, len(members)+1)
	for _, member := range append([]string{captainUserID}, members...) {
		member = strings.TrimSpace(member)
		if member == "" {
			continue
		}
		if _, ok := seen[member]; ok {
			continue
		}
		seen[member] = struct{}{}
		out = append(out, member)
	}

	return out
}
