package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Event channels published on Redis when listings change state.
const (
	EventListingDeleted   = "EVENT_LISTING_DELETED"
	EventListingPublished = "EVENT_LISTING_PUBLISHED"
)

const listingColumns = `id::text, title, company_name, location, apply_url, type,
	experience_level, salary, short_description, description, expires_at`

// Repository persists job listings in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewRepository returns a configured Repository. rdb may be nil, in which
// case no change events are published.
func NewRepository(pool *pgxpool.Pool, rdb *redis.Client) *Repository {
	return &Repository{pool: pool, rdb: rdb}
}

// ListPublished returns every listing whose expiry is in the future, newest first.
func (r *Repository) ListPublished(ctx context.Context) ([]JobListing, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+listingColumns+`
		 FROM job_listings
		 WHERE expires_at > NOW()
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listPublished query: %w", err)
	}
	return collect(rows)
}

// ListByOwner returns every listing created by userID, published or not.
func (r *Repository) ListByOwner(ctx context.Context, userID string) ([]JobListing, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+listingColumns+`
		 FROM job_listings
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listByOwner query: %w", err)
	}
	return collect(rows)
}

// Get returns a single listing owned by userID.
func (r *Repository) Get(ctx context.Context, userID, id string) (*JobListing, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM job_listings WHERE id::text = $1 AND user_id = $2`,
		id, userID,
	)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

// Create inserts an unpublished listing for userID.
func (r *Repository) Create(ctx context.Context, userID string, d *Draft) (*JobListing, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO job_listings (id, user_id, title, company_name, location, apply_url,
		                           type, experience_level, salary, short_description, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+listingColumns,
		uuid.New(), userID, d.Title, d.CompanyName, d.Location, d.ApplyURL,
		string(d.Type), string(d.ExperienceLevel), d.Salary, d.ShortDescription, d.Description,
	)
	l, err := scanListing(row)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return l, nil
}

// Update replaces the editable fields of a listing owned by userID.
func (r *Repository) Update(ctx context.Context, userID, id string, d *Draft) (*JobListing, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE job_listings
		 SET title = $1, company_name = $2, location = $3, apply_url = $4, type = $5,
		     experience_level = $6, salary = $7, short_description = $8, description = $9,
		     updated_at = NOW()
		 WHERE id::text = $10 AND user_id = $11
		 RETURNING `+listingColumns,
		d.Title, d.CompanyName, d.Location, d.ApplyURL, string(d.Type),
		string(d.ExperienceLevel), d.Salary, d.ShortDescription, d.Description,
		id, userID,
	)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return l, nil
}

// Delete removes a listing owned by userID.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM job_listings WHERE id::text = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.publish(ctx, EventListingDeleted, id, userID)
	return nil
}

// Publish extends the listing's expiry by days from now (or from its current
// expiry when still published). Called once a checkout is confirmed.
func (r *Repository) Publish(ctx context.Context, userID, id string, days int) (*JobListing, error) {
	if days < 1 {
		return nil, &ValidationError{Msg: "publish duration must be at least one day"}
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE job_listings
		 SET expires_at = GREATEST(COALESCE(expires_at, NOW()), NOW()) + make_interval(days => $1),
		     updated_at = NOW()
		 WHERE id::text = $2 AND user_id = $3
		 RETURNING `+listingColumns,
		days, id, userID,
	)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("publish listing: %w", err)
	}
	r.publish(ctx, EventListingPublished, id, userID)
	return l, nil
}

func (r *Repository) publish(ctx context.Context, channel, id, userID string) {
	if r.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]string{
		"type":      channel,
		"listingId": id,
		"userId":    userID,
	})
	if err := r.rdb.Publish(ctx, channel, event).Err(); err != nil {
		slog.Warn("publish listing event failed", "channel", channel, "err", err)
	}
}

func collect(rows pgx.Rows) ([]JobListing, error) {
	defer rows.Close()
	out := make([]JobListing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func scanListing(row pgx.Row) (*JobListing, error) {
	var (
		l        JobListing
		typ, lvl string
	)
	if err := row.Scan(
		&l.ID, &l.Title, &l.CompanyName, &l.Location, &l.ApplyURL, &typ,
		&lvl, &l.Salary, &l.ShortDescription, &l.Description, &l.ExpiresAt,
	); err != nil {
		return nil, err
	}
	l.Type = Type(typ)
	l.ExperienceLevel = ExperienceLevel(lvl)
	return &l, nil
}
