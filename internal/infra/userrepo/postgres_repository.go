package userrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yanqian/findmy/internal/domain/auth"
)

const (
	uniqueViolation   = "23505"
	subjectConstraint = "users_google_subject_key"
)

var userColumns = []string{"id", "email", "nickname", "password_hash", "google_subject", "created_at"}

// DB is the subset of pgx used by the repository; *pgxpool.Pool satisfies it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository persists users in Postgres.
type PostgresRepository struct {
	db   DB
	psql sq.StatementBuilderType
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a user row. An empty Google subject is stored as NULL.
func (r *PostgresRepository) Create(ctx context.Context, in auth.NewUser) (auth.User, error) {
	query, args, err := r.psql.Insert("users").
		Columns("email", "nickname", "password_hash", "google_subject").
		Values(in.Email, in.Nickname, in.PasswordHash, nullable(in.GoogleSubject)).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return auth.User{}, fmt.Errorf("build insert: %w", err)
	}
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return auth.User{}, uniqueError(err)
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	return r.getUser(ctx, sq.Eq{"email": email})
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	return r.getUser(ctx, sq.Eq{"id": id})
}

// GetByGoogleSubject fetches the user bound to a Google account.
func (r *PostgresRepository) GetByGoogleSubject(ctx context.Context, subject string) (auth.User, bool, error) {
	return r.getUser(ctx, sq.Eq{"google_subject": subject})
}

// LinkGoogle binds subject to the user.
func (r *PostgresRepository) LinkGoogle(ctx context.Context, userID int64, subject string) (auth.User, error) {
	query, args, err := r.psql.Update("users").
		Set("google_subject", subject).
		Where(sq.Eq{"id": userID}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return auth.User{}, fmt.Errorf("build update: %w", err)
	}
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, fmt.Errorf("user %d not found", userID)
	}
	if err != nil {
		return auth.User{}, uniqueError(err)
	}
	return user, nil
}

func (r *PostgresRepository) getUser(ctx context.Context, where sq.Eq) (auth.User, bool, error) {
	query, args, err := r.psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return auth.User{}, false, fmt.Errorf("build select: %w", err)
	}
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, false, nil
	}
	if err != nil {
		return auth.User{}, false, err
	}
	return user, true, nil
}

func uniqueError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	if pgErr.ConstraintName == subjectConstraint {
		return auth.ErrSubjectTaken
	}
	return auth.ErrEmailExists
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanUser(row pgx.Row) (auth.User, error) {
	var (
		user    auth.User
		subject *string
		created time.Time
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Nickname, &user.PasswordHash, &subject, &created); err != nil {
		return auth.User{}, err
	}
	if subject != nil {
		user.GoogleSubject = *subject
	}
	user.CreatedAt = created.UTC()
	return user, nil
}

var _ auth.Repository = (*PostgresRepository)(nil)
