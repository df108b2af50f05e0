package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/quotedesk-backend/internal/users"
	"github.com/angelmondragon/quotedesk-backend/pkg/config"
	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/quotedesk-backend/pkg/errors"
	"github.com/angelmondragon/quotedesk-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type stubUserRepository struct {
	data      map[string]*models.User
	findErr   error
	createErr error
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{data: map[string]*models.User{}}
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if user, ok := s.data[users.NormalizeEmail(email)]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := dto.ToModel()
	user.ID = uuid.New()
	s.data[user.Email] = user
	return user, nil
}

type stubSessions struct {
	issued  []ClientInfo
	revoked []string
}

func (s *stubSessions) Create(ctx context.Context, userID uuid.UUID, meta ClientInfo) (*models.Session, error) {
	s.issued = append(s.issued, meta)
	return &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     "token-" + userID.String(),
		ExpiresAt: time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (s *stubSessions) Revoke(ctx context.Context, token string) error {
	s.revoked = append(s.revoked, token)
	return nil
}

func buildTestService(t *testing.T) (Service, *stubUserRepository, *stubSessions) {
	t.Helper()
	repo := newStubUserRepository()
	sessions := &stubSessions{}
	svc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: sessions, PasswordConfig: testPasswordConfig})
	require.NoError(t, err)
	return svc, repo, sessions
}

func seedUser(t *testing.T, repo *stubUserRepository, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Email: email, PasswordHash: hash, Name: "Ada"}
	repo.data[email] = user
	return user
}

func TestRegisterIssuesSession(t *testing.T) {
	svc, repo, sessions := buildTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    " Ada@Example.com ",
		Password: "correct-horse",
		Name:     "Ada",
	}, ClientInfo{IPAddress: "10.0.0.2"})
	require.NoError(t, err)

	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "ada@example.com", resp.User.Email)

	stored := repo.data["ada@example.com"]
	require.NotNil(t, stored)
	ok, err := security.VerifyPassword("correct-horse", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, sessions.issued, 1)
	assert.Equal(t, "10.0.0.2", sessions.issued[0].IPAddress)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, repo, sessions := buildTestService(t)
	seedUser(t, repo, "ada@example.com", "whatever-123")

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "ADA@example.com", Password: "another-pass", Name: "Ada"}, ClientInfo{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Empty(t, sessions.issued)
}

func TestRegisterRaceMapsUniqueViolation(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	repo.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.com", Password: "another-pass", Name: "Ada"}, ClientInfo{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestRegisterStoreFailure(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	repo.findErr = errors.New("connection refused")

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.com", Password: "another-pass", Name: "Ada"}, ClientInfo{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestLogin(t *testing.T) {
	svc, repo, sessions := buildTestService(t)
	user := seedUser(t, repo, "ada@example.com", "correct-horse")

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ADA@example.com", Password: "correct-horse"}, ClientInfo{UserAgent: "test"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, "token-"+user.ID.String(), resp.Token)
	require.Len(t, sessions.issued, 1)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo, sessions := buildTestService(t)
	seedUser(t, repo, "ada@example.com", "correct-horse")

	cases := []LoginRequest{
		{Email: "ada@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "correct-horse"},
		{Email: "  ", Password: "correct-horse"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req, ClientInfo{})
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, req.Email)
		assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
		assert.Equal(t, invalidCredentialsMessage, typed.Message())
	}
	assert.Empty(t, sessions.issued)
}

func TestLogoutRevokes(t *testing.T) {
	svc, _, sessions := buildTestService(t)
	require.NoError(t, svc.Logout(context.Background(), "abc"))
	assert.Equal(t, []string{"abc"}, sessions.revoked)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{SessionManager: &stubSessions{}})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{UserRepo: newStubUserRepository()})
	assert.Error(t, err)
}
