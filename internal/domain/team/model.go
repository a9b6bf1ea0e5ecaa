package team

import (
	"fmt"
	"time"
)

// Team is a group of players registered for one competition. It has exactly
// one captain; within a competition a captain owns at most one team. Teams
// are immutable after creation.
type Team struct {
	ID            string
	CompetitionID string
	Name          string
	CaptainUserID string
	Members       []string
	CreatedAt     time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.CompetitionID == "" {
		return fmt.Errorf("team competition id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.CaptainUserID == "" {
		return fmt.Errorf("team captain is required")
	}

	return nil
}
