package restaurantrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yanqian/findmy/internal/domain/restaurant"
)

const uniqueViolation = "23505"

var restaurantColumns = []string{
	"id", "name", "address", "phone", "email", "website",
	"average_rating", "capacity", "cuisine_type", "opening_hours",
	"created_at", "updated_at",
}

// DB is the subset of pgx used by the repository; *pgxpool.Pool satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository persists restaurants in Postgres.
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

// Create inserts a new restaurant row.
func (r *PostgresRepository) Create(ctx context.Context, in restaurant.Input) (restaurant.Restaurant, error) {
	hours, err := encodeHours(in.OpeningHours)
	if err != nil {
		return restaurant.Restaurant{}, err
	}
	query, args, err := r.psql.Insert("restaurants").
		Columns("name", "address", "phone", "email", "website", "average_rating", "capacity", "cuisine_type", "opening_hours").
		Values(in.Name, in.Address, in.Phone, in.Email, in.Website, in.AverageRating, in.Capacity, in.CuisineType, hours).
		Suffix("RETURNING " + strings.Join(restaurantColumns, ", ")).
		ToSql()
	if err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("build insert: %w", err)
	}
	item, err := scanRestaurant(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return restaurant.Restaurant{}, translateError(err)
	}
	return item, nil
}

// Get fetches by primary key.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (restaurant.Restaurant, bool, error) {
	query, args, err := r.psql.Select(restaurantColumns...).
		From("restaurants").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return restaurant.Restaurant{}, false, fmt.Errorf("build select: %w", err)
	}
	item, err := scanRestaurant(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return restaurant.Restaurant{}, false, nil
	}
	if err != nil {
		return restaurant.Restaurant{}, false, err
	}
	return item, true, nil
}

// List returns every restaurant ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]restaurant.Restaurant, error) {
	return r.selectMany(ctx, r.psql.Select(restaurantColumns...).From("restaurants").OrderBy("id"))
}

// Update replaces every mutable column.
func (r *PostgresRepository) Update(ctx context.Context, id int64, in restaurant.Input) (restaurant.Restaurant, bool, error) {
	hours, err := encodeHours(in.OpeningHours)
	if err != nil {
		return restaurant.Restaurant{}, false, err
	}
	query, args, err := r.psql.Update("restaurants").
		Set("name", in.Name).
		Set("address", in.Address).
		Set("phone", in.Phone).
		Set("email", in.Email).
		Set("website", in.Website).
		Set("average_rating", in.AverageRating).
		Set("capacity", in.Capacity).
		Set("cuisine_type", in.CuisineType).
		Set("opening_hours", hours).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(restaurantColumns, ", ")).
		ToSql()
	if err != nil {
		return restaurant.Restaurant{}, false, fmt.Errorf("build update: %w", err)
	}
	item, err := scanRestaurant(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return restaurant.Restaurant{}, false, nil
	}
	if err != nil {
		return restaurant.Restaurant{}, false, translateError(err)
	}
	return item, true, nil
}

// Delete removes a restaurant row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.psql.Delete("restaurants").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Search filters by address and cuisine type.
func (r *PostgresRepository) Search(ctx context.Context, filter restaurant.Filter) ([]restaurant.Restaurant, error) {
	builder := r.psql.Select(restaurantColumns...).From("restaurants")
	if location := strings.TrimSpace(filter.Location); location != "" {
		builder = builder.Where(sq.ILike{"address": "%" + escapeLike(location) + "%"})
	}
	if cuisine := strings.TrimSpace(filter.Cuisine); cuisine != "" {
		builder = builder.Where(sq.Or{
			sq.ILike{"cuisine_type": "%" + escapeLike(cuisine) + "%"},
			sq.Expr("? ILIKE '%' || cuisine_type || '%'", cuisine),
		})
	}
	return r.selectMany(ctx, builder.OrderBy("average_rating DESC", "id"))
}

func (r *PostgresRepository) selectMany(ctx context.Context, builder sq.SelectBuilder) ([]restaurant.Restaurant, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]restaurant.Restaurant, 0)
	for rows.Next() {
		item, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row rowScanner) (restaurant.Restaurant, error) {
	var (
		item    restaurant.Restaurant
		website *string
		hours   []byte
		created time.Time
		updated time.Time
	)
	if err := row.Scan(
		&item.ID, &item.Name, &item.Address, &item.Phone, &item.Email, &website,
		&item.AverageRating, &item.Capacity, &item.CuisineType, &hours,
		&created, &updated,
	); err != nil {
		return restaurant.Restaurant{}, err
	}
	item.Website = website
	item.OpeningHours = map[string]string{}
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &item.OpeningHours); err != nil {
			return restaurant.Restaurant{}, fmt.Errorf("decode opening hours: %w", err)
		}
	}
	item.CreatedAt = created.UTC()
	item.UpdatedAt = updated.UTC()
	return item, nil
}

func encodeHours(hours map[string]string) ([]byte, error) {
	if hours == nil {
		hours = map[string]string{}
	}
	data, err := json.Marshal(hours)
	if err != nil {
		return nil, fmt.Errorf("encode opening hours: %w", err)
	}
	return data, nil
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return restaurant.ErrEmailExists
	}
	return err
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

var _ restaurant.Repository = (*PostgresRepository)(nil)
