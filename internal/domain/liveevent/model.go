package liveevent

import "time"

type Reason string

const ReasonTeamJoined Reason = "team_joined"

// Event is an ephemeral live notification for spectators of one competition.
// It only exists in transit through the broadcaster and is never persisted;
// late subscribers do not receive it.
type Event struct {
	Pin        string    `json:"pin"`
	Reason     Reason    `json:"reason"`
	TeamID     string    `json:"teamId"`
	TeamName   string    `json:"teamName"`
	OccurredAt time.Time `json:"occurredAt"`
}

func TeamJoined(pin, teamID, teamName string, occurredAt time.Time) Event {
	return Event{
		Pin:        pin,
		Reason:     ReasonTeamJoined,
		TeamID:     teamID,
		TeamName:   teamName,
		OccurredAt: occurredAt.UTC(),
	}
}
