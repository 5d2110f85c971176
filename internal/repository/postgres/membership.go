package postgres

import (
	"context"
	"time"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/repository"
)

type membershipRepository struct {
	db DBTX
}

func NewMembershipRepository(db DBTX) repository.MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	query := `INSERT INTO memberships (pod_id, user_id, role, joined_on) VALUES ($1, $2, $3, $4)`
	if m.JoinedOn.IsZero() {
		m.JoinedOn = time.Now()
	}
	_, err := r.db.ExecContext(ctx, query, m.PodID, m.UserID, m.Role, m.JoinedOn)
	return err
}

func (r *membershipRepository) Get(ctx context.Context, podID, userID int32) (*domain.Membership, error) {
	m := &domain.Membership{}
	query := `SELECT pod_id, user_id, role, joined_on FROM memberships WHERE pod_id = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, podID, userID).Scan(&m.PodID, &m.UserID, &m.Role, &m.JoinedOn)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *membershipRepository) CountByPod(ctx context.Context, podID int32) (int32, error) {
	var count int32
	query := `SELECT COUNT(*) FROM memberships WHERE pod_id = $1`
	err := r.db.QueryRowContext(ctx, query, podID).Scan(&count)
	return count, err
}

func (r *membershipRepository) ListByPod(ctx context.Context, podID int32) ([]domain.Membership, error) {
	query := `SELECT pod_id, user_id, role, joined_on FROM memberships WHERE pod_id = $1 ORDER BY joined_on ASC`
	rows, err := r.db.QueryContext(ctx, query, podID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.PodID, &m.UserID, &m.Role, &m.JoinedOn); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *membershipRepository) Delete(ctx context.Context, podID, userID int32) (bool, error) {
	query := `DELETE FROM memberships WHERE pod_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, podID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
