package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func newAuthService(repo *MockUserRepository) *AuthService {
	return NewAuthService(repo, NewTokenService("auth-test-secret", "kanso-test", time.Hour, repo))
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	t.Run("Success: Should register a valid user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := newAuthService(mockRepo)
		ctx := context.Background()

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := service.Register(ctx, RegisterInput{
			Email:       "Test_Success@kanso.app",
			Password:    "StrongPassword123!",
			DisplayName: "Tester",
		})

		require.NoError(t, err)
		assert.Equal(t, "test_success@kanso.app", user.Email)
		assert.Equal(t, "Tester", user.DisplayName)
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, user.PasswordHash)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Invalid email never reaches the repository", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := newAuthService(mockRepo)

		user, err := service.Register(context.Background(), RegisterInput{Email: "nope", Password: "StrongPassword123!"})

		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.Nil(t, user)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Fail: Short password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := newAuthService(mockRepo)

		_, err := service.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "123"})

		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})

	t.Run("Fail: Duplicate email is wrapped", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := newAuthService(mockRepo)
		ctx := context.Background()

		mockRepo.On("Create", ctx, mock.Anything).Return(domain.ErrEmailAlreadyExists)

		_, err := service.Register(ctx, RegisterInput{Email: "dup@kanso.app", Password: "StrongPassword123!"})

		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	existing, err := domain.NewUser("user-1", "login@kanso.app", "")
	require.NoError(t, err)
	require.NoError(t, existing.SetPassword("CorrectHorse1"))

	t.Run("Success: Issues a token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := newAuthService(mockRepo)

		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(existing, nil)

		session, err := service.Login(context.Background(), LoginInput{Email: " Login@Kanso.app", Password: "CorrectHorse1"})

		require.NoError(t, err)
		assert.Equal(t, "user-1", session.User.ID)
		assert.NotEmpty(t, session.Token.AccessToken)
	})

	t.Run("Fail: Wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := newAuthService(mockRepo)

		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(existing, nil)

		_, err := service.Login(context.Background(), LoginInput{Email: "login@kanso.app", Password: "WrongHorse1"})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Fail: Unknown email looks like a wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := newAuthService(mockRepo)

		mockRepo.On("GetByEmail", mock.Anything, "ghost@kanso.app").Return(nil, domain.ErrUserNotFound)

		_, err := service.Login(context.Background(), LoginInput{Email: "ghost@kanso.app", Password: "whatever1"})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Fail: Database error is not masked", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := newAuthService(mockRepo)
		dbErr := errors.New("connection reset")

		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(nil, dbErr)

		_, err := service.Login(context.Background(), LoginInput{Email: "login@kanso.app", Password: "CorrectHorse1"})

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newAuthService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, "user-9").Return(&domain.User{ID: "user-9"}, nil)

	session, err := service.Refresh(context.Background(), "user-9")

	require.NoError(t, err)
	assert.NotEmpty(t, session.Token.AccessToken)

	userID, err := service.tokens.ValidateToken(session.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-9", userID)
}
