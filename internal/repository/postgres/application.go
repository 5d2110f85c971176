package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/repository"

	"github.com/lib/pq"
)

type applicationRepository struct {
	db DBTX
}

func NewApplicationRepository(db DBTX) repository.ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `id, pod_id, applicant_id, message, status, hidden, applied_on, reviewed_on, reviewer_id`

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (pod_id, applicant_id) WHERE status = 'PENDING'.
const uniqueViolation = "23505"

func (r *applicationRepository) Create(ctx context.Context, a *domain.Application) error {
	query := `INSERT INTO applications (pod_id, applicant_id, message, status, hidden, applied_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	a.Status = domain.ApplicationStatusPending
	a.Hidden = false
	a.AppliedOn = time.Now()
	err := r.db.QueryRowContext(ctx, query, a.PodID, a.ApplicantID, a.Message, a.Status, a.Hidden, a.AppliedOn).Scan(&a.ID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrAlreadyApplied(a.PodID, a.ApplicantID)
	}
	return err
}

func (r *applicationRepository) GetByID(ctx context.Context, id int32) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return r.scanApplication(r.db.QueryRowContext(ctx, query, id))
}

func (r *applicationRepository) GetPending(ctx context.Context, podID, applicantID int32) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
	          WHERE pod_id = $1 AND applicant_id = $2 AND status = $3`
	return r.scanApplication(r.db.QueryRowContext(ctx, query, podID, applicantID, domain.ApplicationStatusPending))
}

func (r *applicationRepository) scanApplication(row interface{ Scan(...any) error }) (*domain.Application, error) {
	a := &domain.Application{}
	var reviewedOn sql.NullTime
	var reviewerID sql.NullInt32
	err := row.Scan(&a.ID, &a.PodID, &a.ApplicantID, &a.Message, &a.Status, &a.Hidden, &a.AppliedOn, &reviewedOn, &reviewerID)
	if err != nil {
		return nil, err
	}
	if reviewedOn.Valid {
		a.ReviewedOn = &reviewedOn.Time
	}
	if reviewerID.Valid {
		a.ReviewerID = &reviewerID.Int32
	}
	return a, nil
}

func (r *applicationRepository) ListByPod(ctx context.Context, podID int32, includeHidden bool) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
	          WHERE pod_id = $1 AND (hidden = false OR $2) ORDER BY applied_on DESC`
	rows, err := r.db.QueryContext(ctx, query, podID, includeHidden)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		var a domain.Application
		var reviewedOn sql.NullTime
		var reviewerID sql.NullInt32
		if err := rows.Scan(&a.ID, &a.PodID, &a.ApplicantID, &a.Message, &a.Status, &a.Hidden, &a.AppliedOn, &reviewedOn, &reviewerID); err != nil {
			return nil, err
		}
		if reviewedOn.Valid {
			a.ReviewedOn = &reviewedOn.Time
		}
		if reviewerID.Valid {
			a.ReviewerID = &reviewerID.Int32
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// Review is a conditional update: the WHERE status = 'PENDING' clause makes
// the PENDING -> terminal transition the only one the database will accept.
func (r *applicationRepository) Review(ctx context.Context, id int32, decision domain.ApplicationStatus, reviewerID int32) (*domain.Application, error) {
	query := `UPDATE applications SET status = $1, reviewed_on = $2, reviewer_id = $3
	          WHERE id = $4 AND status = $5
	          RETURNING ` + applicationColumns
	row := r.db.QueryRowContext(ctx, query, decision, time.Now(), reviewerID, id, domain.ApplicationStatusPending)
	app, err := r.scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Row exists but is no longer pending, or does not exist at all.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			if errors.Is(getErr, sql.ErrNoRows) {
				return nil, domain.ErrApplicationNotFound(id)
			}
			return nil, getErr
		}
		return nil, domain.ErrAlreadyReviewed(id)
	}
	return app, err
}

func (r *applicationRepository) Hide(ctx context.Context, id int32) (bool, error) {
	query := `UPDATE applications SET hidden = true WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *applicationRepository) Delete(ctx context.Context, id int32) (bool, error) {
	query := `DELETE FROM applications WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, domain.ApplicationStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
