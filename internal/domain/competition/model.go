package competition

import (
	"fmt"
	"strings"
	"time"
)

// State is the lifecycle phase of a competition. Team joins are accepted
// only while the competition is in StateRegistration.
type State string

const (
	StateRegistration State = "registration"
	StateInProgress   State = "in_progress"
	StateFinished     State = "finished"
)

func ParseState(v string) (State, error) {
	switch State(strings.ToLower(strings.TrimSpace(v))) {
	case StateRegistration:
		return StateRegistration, nil
	case StateInProgress:
		return StateInProgress, nil
	case StateFinished:
		return StateFinished, nil
	default:
		return "", fmt.Errorf("unknown competition state %q", v)
	}
}

// Competition is a single game instance that players join via its pin.
type Competition struct {
	ID          string
	Pin         string
	Name        string
	OwnerUserID string
	State       State
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Joinable reports whether the competition currently accepts team joins.
func (c Competition) Joinable() bool {
	return c.State == StateRegistration
}

func (c Competition) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("competition id is required")
	}
	if c.Pin == "" {
		return fmt.Errorf("competition pin is required")
	}
	if c.Name == "" {
		return fmt.Errorf("competition name is required")
	}
	if c.OwnerUserID == "" {
		return fmt.Errorf("competition owner is required")
	}
	if _, err := ParseState(string(c.State)); err != nil {
		return err
	}

	return nil
}
