package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"podpal-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// unchanged inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements repository.Store on PostgreSQL.
type Store struct {
	db   *sql.DB
	pods repository.PodRepository
	apps repository.ApplicationRepository
	mems repository.MembershipRepository
	usrs repository.UserRepository
	nots repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:   db,
		pods: NewPodRepository(db),
		apps: NewApplicationRepository(db),
		mems: NewMembershipRepository(db),
		usrs: NewUserRepository(db),
		nots: NewNotificationRepository(db),
	}
}

func (s *Store) Pods() repository.PodRepository                   { return s.pods }
func (s *Store) Applications() repository.ApplicationRepository   { return s.apps }
func (s *Store) Memberships() repository.MembershipRepository     { return s.mems }
func (s *Store) Users() repository.UserRepository                 { return s.usrs }
func (s *Store) Notifications() repository.NotificationRepository { return s.nots }

// ExecTx runs fn against a Store whose repositories share one transaction.
// fn returning an error rolls the whole transaction back, so a failed
// application transition also undoes the membership insert that preceded it.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txStore := &Store{
		db:   s.db,
		pods: NewPodRepository(tx),
		apps: NewApplicationRepository(tx),
		mems: NewMembershipRepository(tx),
		usrs: NewUserRepository(tx),
		nots: NewNotificationRepository(tx),
	}

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
