package postgres

import (
	"context"
	"time"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/repository"
)

type podRepository struct {
	db DBTX
}

func NewPodRepository(db DBTX) repository.PodRepository {
	return &podRepository{db: db}
}

const podColumns = `id, owner_id, title, description, capacity, status, COALESCE(chat_channel_ref, ''), meet_at, created_on, updated_on`

func (r *podRepository) Create(ctx context.Context, p *domain.Pod) error {
	query := `INSERT INTO pods (owner_id, title, description, capacity, status, chat_channel_ref, meet_at, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	p.CreatedOn = now
	p.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, p.OwnerID, p.Title, p.Description, p.Capacity, p.Status, p.ChatChannelRef, p.MeetAt, p.CreatedOn, p.UpdatedOn).Scan(&p.ID)
}

func (r *podRepository) GetByID(ctx context.Context, id int32) (*domain.Pod, error) {
	query := `SELECT ` + podColumns + ` FROM pods WHERE id = $1`
	return r.scanPod(r.db.QueryRowContext(ctx, query, id))
}

func (r *podRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Pod, error) {
	query := `SELECT ` + podColumns + ` FROM pods WHERE id = $1 FOR UPDATE`
	return r.scanPod(r.db.QueryRowContext(ctx, query, id))
}

func (r *podRepository) scanPod(row interface{ Scan(...any) error }) (*domain.Pod, error) {
	p := &domain.Pod{}
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Capacity, &p.Status, &p.ChatChannelRef, &p.MeetAt, &p.CreatedOn, &p.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *podRepository) UpdateStatus(ctx context.Context, id int32, status domain.PodStatus) error {
	query := `UPDATE pods SET status = $1, updated_on = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

func (r *podRepository) SetChatChannelRef(ctx context.Context, id int32, channelRef string) error {
	query := `UPDATE pods SET chat_channel_ref = $1, updated_on = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, channelRef, time.Now(), id)
	return err
}

func (r *podRepository) ListByStatus(ctx context.Context, status domain.PodStatus) ([]domain.Pod, error) {
	query := `SELECT ` + podColumns + ` FROM pods WHERE status = $1 ORDER BY meet_at ASC`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pods []domain.Pod
	for rows.Next() {
		var p domain.Pod
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Capacity, &p.Status, &p.ChatChannelRef, &p.MeetAt, &p.CreatedOn, &p.UpdatedOn); err != nil {
			return nil, err
		}
		pods = append(pods, p)
	}
	return pods, rows.Err()
}

func (r *podRepository) ListExpired(ctx context.Context, now time.Time) ([]domain.Pod, error) {
	query := `SELECT ` + podColumns + ` FROM pods WHERE meet_at < $1 AND status IN ($2, $3)`
	rows, err := r.db.QueryContext(ctx, query, now, domain.PodStatusRecruiting, domain.PodStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pods []domain.Pod
	for rows.Next() {
		var p domain.Pod
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Capacity, &p.Status, &p.ChatChannelRef, &p.MeetAt, &p.CreatedOn, &p.UpdatedOn); err != nil {
			return nil, err
		}
		pods = append(pods, p)
	}
	return pods, rows.Err()
}
