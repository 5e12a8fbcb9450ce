package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uploadhub/service/internal/storage"
)

// Mock repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]Upload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Upload), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Upload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Upload), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, u *Upload) (*Upload, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Upload), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id, ownerID string, patch Patch) error {
	args := m.Called(ctx, id, ownerID, patch)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// Mock object store
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*storage.PutResult, error) {
	args := m.Called(ctx, key, reader, size, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PutResult), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func TestService_Create_PersistsStoreLocation(t *testing.T) {
	repo := new(MockRepository)
	store := new(MockStorage)
	svc := NewService(repo, store)

	store.On("Put", mock.Anything, mock.Anything, mock.Anything, int64(12), "text/plain").
		Return(&storage.PutResult{Key: "abc123", Location: "https://bucket/abc123"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *Upload) bool {
		return u.FileURL == "https://bucket/abc123" &&
			u.Filename == "abc123" &&
			u.FileType == "text/plain" &&
			u.OwnerID == "alice"
	})).Return(&Upload{
		ID:       "id-1",
		FileType: "text/plain",
		Filename: "abc123",
		FileURL:  "https://bucket/abc123",
		OwnerID:  "alice",
	}, nil)

	created, err := svc.Create(context.Background(), "alice", "notes.txt", "text/plain", strings.NewReader("Hello World!"), 12)
	require.NoError(t, err)

	assert.Equal(t, "https://bucket/abc123", created.FileURL)
	assert.Equal(t, "text/plain", created.FileType)
	assert.Equal(t, "abc123", created.Filename)
	assert.Equal(t, "alice", created.OwnerID)
	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestService_Create_KeyCarriesClientExtension(t *testing.T) {
	repo := new(MockRepository)
	store := new(MockStorage)
	svc := NewService(repo, store)

	var putKey string
	store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		putKey = key
		return strings.HasSuffix(key, ".png")
	}), mock.Anything, mock.Anything, mock.Anything).
		Return(&storage.PutResult{Key: "k.png", Location: "https://bucket/k.png"}, nil)
	repo.On("Create", mock.Anything, mock.Anything).
		Return(&Upload{ID: "id-1"}, nil)

	_, err := svc.Create(context.Background(), "alice", "photo.PNG", "image/png", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(putKey, ".png"), "key %q should keep the lowercased client extension", putKey)
}

func TestService_Create_DefaultsUnknownFileType(t *testing.T) {
	repo := new(MockRepository)
	store := new(MockStorage)
	svc := NewService(repo, store)

	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, "unknown").
		Return(&storage.PutResult{Key: "k", Location: "https://bucket/k"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *Upload) bool {
		return u.FileType == "unknown"
	})).Return(&Upload{ID: "id-1", FileType: "unknown"}, nil)

	created, err := svc.Create(context.Background(), "alice", "blob", "", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.Equal(t, "unknown", created.FileType)
	store.AssertExpectations(t)
}

func TestService_Create_StoreFailure_NoRecordCreated(t *testing.T) {
	repo := new(MockRepository)
	store := new(MockStorage)
	svc := NewService(repo, store)

	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := svc.Create(context.Background(), "alice", "notes.txt", "text/plain", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadFailed)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_MissingOwner(t *testing.T) {
	repo := new(MockRepository)
	store := new(MockStorage)
	svc := NewService(repo, store)

	_, err := svc.Create(context.Background(), "", "notes.txt", "text/plain", strings.NewReader("x"), 1)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "owner", vErr.Field)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Create_PersistFailureSurfacesError(t *testing.T) {
	repo := new(MockRepository)
	store := new(MockStorage)
	svc := NewService(repo, store)

	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&storage.PutResult{Key: "k", Location: "https://bucket/k"}, nil)
	repo.On("Create", mock.Anything, mock.Anything).
		Return(nil, errors.New("insert failed"))

	_, err := svc.Create(context.Background(), "alice", "notes.txt", "text/plain", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUploadFailed)
}

func TestService_List_EmptyStore(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockStorage))

	repo.On("List", mock.Anything).Return([]Upload{}, nil)

	uploads, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, uploads)
}

func TestService_Get_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockStorage))

	repo.On("GetByID", mock.Anything, "doesnotexist").Return(nil, ErrNotFound)

	_, err := svc.Get(context.Background(), "doesnotexist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Update_Forbidden(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockStorage))

	repo.On("GetByID", mock.Anything, "id-1").
		Return(&Upload{ID: "id-1", OwnerID: "alice"}, nil)

	fileType := "image/png"
	err := svc.Update(context.Background(), "id-1", "bob", Patch{FileType: &fileType})
	assert.ErrorIs(t, err, ErrForbidden)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Update_Success(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockStorage))

	fileType := "image/png"
	patch := Patch{FileType: &fileType}

	repo.On("GetByID", mock.Anything, "id-1").
		Return(&Upload{ID: "id-1", OwnerID: "alice"}, nil)
	repo.On("Update", mock.Anything, "id-1", "alice", patch).Return(nil)

	err := svc.Update(context.Background(), "id-1", "alice", patch)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Update_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockStorage))

	repo.On("GetByID", mock.Anything, "id-404").Return(nil, ErrNotFound)

	err := svc.Update(context.Background(), "id-404", "alice", Patch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Update_RejectsBlankField(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockStorage))

	blank := ""
	err := svc.Update(context.Background(), "id-1", "alice", Patch{Filename: &blank})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "filename", vErr.Field)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestService_Delete_Forbidden(t *testing.T) {
	repo := new(MockRepository)
	store := new(MockStorage)
	svc := NewService(repo, store)

	repo.On("GetByID", mock.Anything, "id-1").
		Return(&Upload{ID: "id-1", OwnerID: "alice", Filename: "abc123"}, nil)

	err := svc.Delete(context.Background(), "id-1", "bob")
	assert.ErrorIs(t, err, ErrForbidden)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_Delete_RemovesRecordAndObject(t *testing.T) {
	repo := new(MockRepository)
	store := new(MockStorage)
	svc := NewService(repo, store)

	repo.On("GetByID", mock.Anything, "id-1").
		Return(&Upload{ID: "id-1", OwnerID: "alice", Filename: "abc123"}, nil)
	repo.On("Delete", mock.Anything, "id-1", "alice").Return(nil)
	store.On("Delete", mock.Anything, "abc123").Return(nil)

	err := svc.Delete(context.Background(), "id-1", "alice")
	require.NoError(t, err)
	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestService_Delete_ObjectRemovalFailureIsNotFatal(t *testing.T) {
	repo := new(MockRepository)
	store := new(MockStorage)
	svc := NewService(repo, store)

	repo.On("GetByID", mock.Anything, "id-1").
		Return(&Upload{ID: "id-1", OwnerID: "alice", Filename: "abc123"}, nil)
	repo.On("Delete", mock.Anything, "id-1", "alice").Return(nil)
	store.On("Delete", mock.Anything, "abc123").Return(errors.New("connection refused"))

	err := svc.Delete(context.Background(), "id-1", "alice")
	assert.NoError(t, err)
}
