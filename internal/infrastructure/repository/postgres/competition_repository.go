package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/game-lobby/internal/domain/competition"
	qb "github.com/riskibarqy/game-lobby/internal/platform/querybuilder"
)

type CompetitionRepository struct {
	db *sqlx.DB
}

func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

var _ competition.Repository = (*CompetitionRepository)(nil)

func (r *CompetitionRepository) Create(ctx context.Context, c competition.Competition) error {
	query, args, err := qb.InsertInto("competitions").
		Columns("id", "pin", "name", "owner_user_id", "state", "created_at", "updated_at").
		Values(c.ID, c.Pin, c.Name, c.OwnerUserID, string(c.State), c.CreatedAt, c.UpdatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create competition query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create competition: %w", err)
	}

	return nil
}

func (r *CompetitionRepository) GetByPin(ctx context.Context, pin string) (competition.Competition, bool, error) {
	query, args, err := qb.Select("*").
		From("competitions").
		Where(qb.Eq("pin", pin)).
		Limit(1).
		ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build get competition by pin query: %w", err)
	}

	var row competitionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("get competition by pin: %w", err)
	}

	return competitionFromRow(row), true, nil
}

// TransitionState is a compare-and-set on the state column: the UPDATE only
// matches when the row still holds the expected state, so concurrent
// transitions collapse to a single winner.
func (r *CompetitionRepository) TransitionState(ctx context.Context, id string, from, to competition.State) (bool, error) {
	query, args, err := qb.Update("competitions").
		Set("state", string(to)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Eq("state", string(from)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build transition competition state query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("transition competition state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected transition competition state: %w", err)
	}

	return affected == 1, nil
}
