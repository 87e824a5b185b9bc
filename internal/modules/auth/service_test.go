package auth

import (
	"context"
	"testing"

	"filmverse/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Mock repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	if user != nil {
		user.ID = 1 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type stubJWT struct{}

func (stubJWT) GenerateToken(userID int64, email string) (string, error) {
	return "stub-token", nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, stubJWT{})

	repo.On("ExistsByEmail", mock.Anything, "fan@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	user, token, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "  Fan@Example.com ",
		Password: "password123",
		Name:     "Demo Fan",
	})
	require.NoError(t, err)
	assert.Equal(t, "fan@example.com", user.Email)
	assert.Equal(t, "stub-token", token)
	assert.Empty(t, user.PasswordHash)
	repo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, stubJWT{})

	repo.On("ExistsByEmail", mock.Anything, "fan@example.com").Return(true, nil)

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "fan@example.com",
		Password: "password123",
		Name:     "Demo Fan",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, stubJWT{})

	stored := &domain.User{ID: 1, Email: "fan@example.com", PasswordHash: hashOf(t, "password123")}
	repo.On("GetByEmail", mock.Anything, "fan@example.com").Return(stored, nil)

	user, token, err := svc.Login(context.Background(), LoginRequest{
		Email:    "fan@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "stub-token", token)
	assert.Empty(t, user.PasswordHash)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, stubJWT{})

	stored := &domain.User{ID: 1, Email: "fan@example.com", PasswordHash: hashOf(t, "password123")}
	repo.On("GetByEmail", mock.Anything, "fan@example.com").Return(stored, nil)

	_, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "fan@example.com",
		Password: "not-the-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, stubJWT{})

	repo.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(nil, gorm.ErrRecordNotFound)

	_, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever1",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewService(repo, stubJWT{})

	stored := &domain.User{ID: 1, Email: "fan@example.com", Name: "Old Name", AvatarURL: "https://img.example/a.png"}
	repo.On("GetByID", mock.Anything, int64(1)).Return(stored, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.UpdateProfile(context.Background(), 1, UpdateProfileRequest{Name: "New Name"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	assert.Equal(t, "https://img.example/a.png", user.AvatarURL)
}
