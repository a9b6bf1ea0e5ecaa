package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/game-lobby/internal/domain/team"
	qb "github.com/riskibarqy/game-lobby/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

var _ team.Repository = (*TeamRepository)(nil)

// TryRegister inserts the team and lets the unique index on
// (competition_id, captain_user_id) arbitrate concurrent joins by the same
// captain.
func (r *TeamRepository) TryRegister(ctx context.Context, t team.Team) (team.Team, error) {
	query, args, err := qb.InsertInto("teams").
		Columns("id", "competition_id", "name", "captain_user_id", "members", "created_at").
		Values(t.ID, t.CompetitionID, t.Name, t.CaptainUserID, pq.Array(t.Members), t.CreatedAt).
		ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build register team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return team.Team{}, team.ErrAlreadyRegistered
		}
		return team.Team{}, fmt.Errorf("register team: %w", err)
	}

	return t, nil
}

func (r *TeamRepository) ListByCompetition(ctx context.Context, competitionID string) ([]team.Team, error) {
	query, args, err := qb.Select("*").
		From("teams").
		Where(qb.Eq("competition_id", competitionID)).
		OrderBy("created_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}
