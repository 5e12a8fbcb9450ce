package upload

import "context"

// Repository is the persistence contract the Service depends on.
// *PostgresRepository is the production implementation.
type Repository interface {
	List(ctx context.Context) ([]Upload, error)
	GetByID(ctx context.Context, id string) (*Upload, error)
	Create(ctx context.Context, u *Upload) (*Upload, error)
	Update(ctx context.Context, id, ownerID string, patch Patch) error
	Delete(ctx context.Context, id, ownerID string) error
}
