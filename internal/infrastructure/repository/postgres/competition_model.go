package postgres

import (
	"time"

	"github.com/riskibarqy/game-lobby/internal/domain/competition"
)

type competitionTableModel struct {
	ID          string    `db:"id"`
	Pin         string    `db:"pin"`
	Name        string    `db:"name"`
	OwnerUserID string    `db:"owner_user_id"`
	State       string    `db:"state"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func competitionFromRow(row competitionTableModel) competition.Competition {
	return competition.Competition{
		ID:          row.ID,
		Pin:         row.Pin,
		Name:        row.Name,
		OwnerUserID: row.OwnerUserID,
		State:       competition.State(row.State),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
