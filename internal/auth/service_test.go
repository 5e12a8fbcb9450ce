package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/uploadhub/service/internal/config"
	"github.com/uploadhub/service/internal/user"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, username, passwordHash string) (*user.User, error) {
	args := m.Called(ctx, username, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret"}
}

func TestService_Register_IssuesParsableToken(t *testing.T) {
	users := new(MockUserStore)
	svc := NewService(users, testConfig())

	users.On("Create", mock.Anything, "alice", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2hunter2")) == nil
	})).Return(&user.User{ID: "id-1", Username: "alice"}, nil)

	token, u, err := svc.Register(context.Background(), "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "id-1", claims["sub"])
	assert.Equal(t, "alice", claims["username"])
}

func TestService_Register_UsernameTaken(t *testing.T) {
	users := new(MockUserStore)
	svc := NewService(users, testConfig())

	users.On("Create", mock.Anything, "alice", mock.Anything).
		Return(nil, user.ErrAlreadyExists)

	_, _, err := svc.Register(context.Background(), "alice", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_Login_Success(t *testing.T) {
	users := new(MockUserStore)
	svc := NewService(users, testConfig())

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	users.On("GetByUsername", mock.Anything, "alice").
		Return(&user.User{ID: "id-1", Username: "alice", PasswordHash: string(hash)}, nil)

	token, err := svc.Login(context.Background(), "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestService_Login_WrongPassword(t *testing.T) {
	users := new(MockUserStore)
	svc := NewService(users, testConfig())

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	users.On("GetByUsername", mock.Anything, "alice").
		Return(&user.User{ID: "id-1", Username: "alice", PasswordHash: string(hash)}, nil)

	_, err = svc.Login(context.Background(), "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_UnknownUserIndistinguishable(t *testing.T) {
	users := new(MockUserStore)
	svc := NewService(users, testConfig())

	users.On("GetByUsername", mock.Anything, "nobody").
		Return(nil, user.ErrNotFound)

	_, err := svc.Login(context.Background(), "nobody", "whatever-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
