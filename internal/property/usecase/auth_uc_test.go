package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return domain.ErrUsernameTaken
	}
	user.ID = "user-" + user.Username
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func newAuth(users domain.UserRepository) *AuthUsecase {
	return NewAuthUsecase(users, "test-secret", "admin", "hunter2", zap.NewNop())
}

func TestLoginWrongPasswordReturnsNoToken(t *testing.T) {
	uc := newAuth(newFakeUserRepo())
	token, err := uc.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Empty(t, token)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	uc := newAuth(newFakeUserRepo())
	_, errUnknown := uc.Login(context.Background(), "ghost", "whatever")
	_, errWrongPass := uc.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.Equal(t, errWrongPass.Error(), errUnknown.Error())
}

func TestLoginAdminIssues24HourToken(t *testing.T) {
	uc := newAuth(newFakeUserRepo())
	issued := time.Now().Truncate(time.Second)
	uc.now = func() time.Time { return issued }

	token, err := uc.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uc.now = time.Now
	claims, err := uc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, issued.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	uc := newAuth(newFakeUserRepo())
	uc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	token, err := uc.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)

	_, err = uc.Authenticate(token)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	uc := newAuth(newFakeUserRepo())
	_, err := uc.Authenticate("not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterThenLogin(t *testing.T) {
	uc := newAuth(newFakeUserRepo())

	user, err := uc.Register(context.Background(), "editor", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "editor", user.Username)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	token, err := uc.Login(context.Background(), "editor", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = uc.Login(context.Background(), "editor", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	uc := newAuth(newFakeUserRepo())
	_, err := uc.Register(context.Background(), "editor", "a")
	require.NoError(t, err)
	_, err = uc.Register(context.Background(), "editor", "b")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestRegisterMissingFields(t *testing.T) {
	uc := newAuth(newFakeUserRepo())
	_, err := uc.Register(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
