package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/game-lobby/internal/domain/team"
)

type teamTableModel struct {
	ID            string         `db:"id"`
	CompetitionID string         `db:"competition_id"`
	Name          string         `db:"name"`
	CaptainUserID string         `db:"captain_user_id"`
	Members       pq.StringArray `db:"members"`
	CreatedAt     time.Time      `db:"created_at"`
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:            row.ID,
		CompetitionID: row.CompetitionID,
		Name:          row.Name,
		CaptainUserID: row.CaptainUserID,
		Members:       append([]string(nil), row.Members...),
		CreatedAt:     row.CreatedAt,
	}
}
