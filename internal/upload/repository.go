// Package upload manages upload records: metadata rows describing files that
// live in the object store.
package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Upload represents one stored file: its type, name, public location, and owner.
type Upload struct {
	ID        string    `json:"id"`
	FileType  string    `json:"fileType"`
	Filename  string    `json:"filename"`
	FileURL   string    `json:"fileUrl"`
	OwnerID   string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch holds the fields a PATCH request may change. Nil means "leave as is".
// Ownership is not part of a Patch: a record's owner is never client-assignable.
type Patch struct {
	FileType *string `json:"fileType"`
	Filename *string `json:"filename"`
	FileURL  *string `json:"fileUrl"`
}

// ErrNotFound is returned when an upload does not exist or the id is not a
// well-formed identifier.
var ErrNotFound = errors.New("upload not found")

// PostgresRepository handles all upload database operations.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgresRepository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns all uploads in insertion order. An empty store yields an
// empty slice, not an error.
func (r *PostgresRepository) List(ctx context.Context) ([]Upload, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, file_type, filename, file_url, owner_id, created_at, updated_at
		 FROM uploads ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	uploads := []Upload{}
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.FileType, &u.Filename, &u.FileURL, &u.OwnerID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return uploads, nil
}

// GetByID fetches an upload by its UUID. A malformed id is reported as
// ErrNotFound, same as a missing row.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Upload, error) {
	u := &Upload{}
	err := r.db.QueryRow(ctx,
		`SELECT id, file_type, filename, file_url, owner_id, created_at, updated_at
		 FROM uploads WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.FileType, &u.Filename, &u.FileURL, &u.OwnerID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get upload by id: %w", err)
	}
	return u, nil
}

// Create inserts a new upload and returns the record with its assigned id
// and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, u *Upload) (*Upload, error) {
	created := &Upload{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO uploads (file_type, filename, file_url, owner_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, file_type, filename, file_url, owner_id, created_at, updated_at`,
		u.FileType, u.Filename, u.FileURL, u.OwnerID,
	).Scan(&created.ID, &created.FileType, &created.Filename, &created.FileURL, &created.OwnerID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}
	return created, nil
}

// Update applies the non-nil fields of patch to the upload. The owner guard
// in the WHERE clause makes the ownership check atomic: the row is only
// touched if it still belongs to ownerID. ErrNotFound is returned when no
// row matched.
func (r *PostgresRepository) Update(ctx context.Context, id, ownerID string, patch Patch) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE uploads
		 SET file_type  = COALESCE($3, file_type),
		     filename   = COALESCE($4, filename),
		     file_url   = COALESCE($5, file_url),
		     updated_at = now()
		 WHERE id = $1 AND owner_id = $2`,
		id, ownerID, patch.FileType, patch.Filename, patch.FileURL,
	)
	if isInvalidUUID(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update upload: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the upload, guarded by the same atomic owner check as Update.
func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM uploads WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if isInvalidUUID(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isInvalidUUID checks whether an error is a PostgreSQL
// invalid_text_representation (code 22P02), raised for malformed UUIDs.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
