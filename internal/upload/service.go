package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/uploadhub/service/internal/storage"
)

// unknownFileType is stored when the client supplies no content type.
const unknownFileType = "unknown"

// ErrForbidden is returned when the acting principal does not own the record.
var ErrForbidden = errors.New("upload owned by another user")

// ErrUploadFailed is returned when the object-store write fails. No record
// is created in that case.
var ErrUploadFailed = errors.New("object store upload failed")

// ValidationError reports a required field that would be empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "required field is missing or empty: " + e.Field
}

// Service orchestrates the upload workflow: push bytes to the object store,
// persist the resulting metadata, and enforce ownership on mutation.
type Service struct {
	repo  Repository
	store storage.Storage
}

// NewService creates a new upload Service.
func NewService(repo Repository, store storage.Storage) *Service {
	return &Service{repo: repo, store: store}
}

// List returns all upload records.
func (s *Service) List(ctx context.Context) ([]Upload, error) {
	return s.repo.List(ctx)
}

// Get returns the upload with the given id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Upload, error) {
	return s.repo.GetByID(ctx, id)
}

// Create writes the payload to the object store under a generated key and
// persists an Upload whose fileUrl is the location the store returned and
// whose filename is derived from the storage key. The store write strictly
// precedes persistence: no record is visible before its backing object exists.
func (s *Service) Create(ctx context.Context, ownerID, clientFilename, contentType string, body io.Reader, size int64) (*Upload, error) {
	if ownerID == "" {
		return nil, &ValidationError{Field: "owner"}
	}

	fileType := contentType
	if fileType == "" {
		fileType = unknownFileType
	}

	key := uuid.NewString() + strings.ToLower(filepath.Ext(clientFilename))

	result, err := s.store.Put(ctx, key, body, size, fileType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	created, err := s.repo.Create(ctx, &Upload{
		FileType: fileType,
		Filename: result.Key,
		FileURL:  result.Location,
		OwnerID:  ownerID,
	})
	if err != nil {
		// The blob was already written and there is no compensating delete;
		// the orphaned object is an accepted leak, but it must be visible.
		log.Printf("upload: record persistence failed after successful store write, orphaned object key=%q: %v", result.Key, err)
		return nil, err
	}

	return created, nil
}

// Update applies patch to the upload with the given id. The principal must
// own the record; the repository re-checks ownership atomically when applying,
// so a concurrent delete or reassignment cannot slip between check and write.
func (s *Service) Update(ctx context.Context, id, principalID string, patch Patch) error {
	if err := validatePatch(patch); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != principalID {
		return ErrForbidden
	}

	return s.repo.Update(ctx, id, principalID, patch)
}

// Delete removes the upload with the given id after an ownership check, then
// removes the backing object best-effort.
func (s *Service) Delete(ctx context.Context, id, principalID string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != principalID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id, principalID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, existing.Filename); err != nil {
		log.Printf("upload: failed to remove object key=%q after record delete: %v", existing.Filename, err)
	}

	return nil
}

// validatePatch rejects patches that would blank out a required field.
func validatePatch(patch Patch) error {
	if patch.FileType != nil && *patch.FileType == "" {
		return &ValidationError{Field: "fileType"}
	}
	if patch.Filename != nil && *patch.Filename == "" {
		return &ValidationError{Field: "filename"}
	}
	if patch.FileURL != nil && *patch.FileURL == "" {
		return &ValidationError{Field: "fileUrl"}
	}
	return nil
}
