package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"velora-api/internal/address"
	"velora-api/internal/auth"
	"velora-api/internal/metrics"
	"velora-api/internal/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context) ([]*User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*User), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) CountByRole(ctx context.Context, role auth.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ExistsByRole(ctx context.Context, role auth.Role) (bool, error) {
	args := m.Called(ctx, role)
	return args.Bool(0), args.Error(1)
}

func newTestService(repo Repository) (Service, *auth.TokenManager, *metrics.Registry) {
	tokens := auth.NewTokenManager([]byte("testsecret"), time.Hour)
	reg := metrics.NewRegistry()
	return NewService(repo, tokens, reg), tokens, reg
}

// fieldErrorFor returns the message reported for field, or "".
func fieldErrorFor(verrs validation.Errors, field string) string {
	for _, fe := range verrs {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	input := RegisterInput{Name: " Jane ", Email: " jane@example.com ", Password: "secret1"}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, tokens, reg := newTestService(mockRepo)
		id := uuid.New()

		mockRepo.On("FindByEmail", ctx, "jane@example.com").Return(nil, ErrNotFound)
		mockRepo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Name == "Jane" &&
				u.Role == auth.RoleCustomer &&
				u.Password != "secret1" &&
				auth.CheckPassword("secret1", u.Password)
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*User).ID = id
		}).Return(nil)

		res, err := svc.Register(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, id, res.User.ID)
		assert.Equal(t, "jane@example.com", res.User.Email)

		claims, err := tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, id, claims.UserUUID())
		assert.Equal(t, uint64(1), reg.UsersRegistered.Load())
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailExists", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, reg := newTestService(mockRepo)

		mockRepo.On("FindByEmail", ctx, "jane@example.com").Return(&User{ID: uuid.New()}, nil)

		_, err := svc.Register(ctx, input)
		assert.ErrorIs(t, err, ErrEmailExists)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Equal(t, uint64(0), reg.UsersRegistered.Load())
	})

	t.Run("ShortPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		_, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "12345"})

		var verrs validation.Errors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "password", verrs[0].Field)
		mockRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("PasswordTooLong", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		_, err := svc.Register(ctx, RegisterInput{Name: "L", Email: "long@example.com", Password: strings.Repeat("a", 80)})

		var verrs validation.Errors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "must be at most 72 bytes", fieldErrorFor(verrs, "password"))
		mockRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("MissingName", func(t *testing.T) {
		svc, _, _ := newTestService(new(MockRepository))

		_, err := svc.Register(ctx, RegisterInput{Name: "  ", Email: "jane@example.com", Password: "secret1"})

		var verrs validation.Errors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("FindByEmail", ctx, "jane@example.com").Return(nil, ErrNotFound)
		mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("db error"))

		_, err := svc.Register(ctx, input)
		assert.EqualError(t, err, "db error")
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	email := "test@example.com"
	password := "password123"

	hashedPassword, err := auth.HashPassword(password)
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		u := &User{ID: uuid.New(), Email: email, Password: hashedPassword, Role: auth.RoleCustomer}
		mockRepo.On("FindByEmail", ctx, email).Return(u, nil)

		res, err := svc.Login(ctx, LoginInput{Email: email, Password: password})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, u, res.User)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, reg := newTestService(mockRepo)

		mockRepo.On("FindByEmail", ctx, email).Return(nil, ErrNotFound)

		_, err := svc.Login(ctx, LoginInput{Email: email, Password: password})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, uint64(1), reg.AuthFailures.With(metrics.ReasonUserNotFound).Load())
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, reg := newTestService(mockRepo)

		mockRepo.On("FindByEmail", ctx, email).Return(&User{ID: uuid.New(), Email: email, Password: hashedPassword}, nil)

		_, err := svc.Login(ctx, LoginInput{Email: email, Password: "wrongpass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "invalid credentials", err.Error())
		assert.Equal(t, uint64(1), reg.AuthFailures.With(metrics.ReasonInvalidPassword).Load())
	})

	t.Run("MissingPassword", func(t *testing.T) {
		svc, _, _ := newTestService(new(MockRepository))

		_, err := svc.Login(ctx, LoginInput{Email: email})

		var verrs validation.Errors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("FindByEmail", ctx, email).Return(nil, errors.New("db down"))

		_, err := svc.Login(ctx, LoginInput{Email: email, Password: password})
		assert.EqualError(t, err, "db down")
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, tokens, _ := newTestService(mockRepo)

		u := &User{ID: uuid.New(), Role: auth.RoleAdmin}
		token, err := tokens.Generate(u.ID)
		require.NoError(t, err)

		mockRepo.On("FindByID", ctx, u.ID).Return(u, nil)

		got, err := svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("Garbage", func(t *testing.T) {
		svc, _, _ := newTestService(new(MockRepository))

		_, err := svc.Authenticate(ctx, "not-a-token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("DeletedUser", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, tokens, _ := newTestService(mockRepo)

		id := uuid.New()
		token, err := tokens.Generate(id)
		require.NoError(t, err)

		mockRepo.On("FindByID", ctx, id).Return(nil, ErrNotFound)

		_, err = svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	existing := func() *User {
		hashed, _ := auth.HashPassword("oldpass")
		return &User{ID: id, Name: "Jane", Email: "jane@example.com", Password: hashed, Role: auth.RoleCustomer}
	}

	t.Run("PartialPatch", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, tokens, _ := newTestService(mockRepo)

		mockRepo.On("FindByID", ctx, id).Return(existing(), nil)
		mockRepo.On("Update", ctx, mock.Anything).Return(nil)

		res, err := svc.UpdateProfile(ctx, id, ProfilePatch{
			Phone:   "555-0100",
			Address: &address.Address{Street: " 1 Main ", City: "Town", ZipCode: "123", Country: "US"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane", res.User.Name)
		assert.Equal(t, "jane@example.com", res.User.Email)
		require.NotNil(t, res.User.Phone)
		assert.Equal(t, "555-0100", *res.User.Phone)
		assert.Equal(t, "1 Main", res.User.Address.Street)
		assert.True(t, auth.CheckPassword("oldpass", res.User.Password))

		claims, err := tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, id, claims.UserUUID())
	})

	t.Run("PasswordRehashed", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("FindByID", ctx, id).Return(existing(), nil)
		mockRepo.On("Update", ctx, mock.MatchedBy(func(u *User) bool {
			return auth.CheckPassword("newpass1", u.Password)
		})).Return(nil)

		_, err := svc.UpdateProfile(ctx, id, ProfilePatch{Password: "newpass1"})
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("FindByID", ctx, id).Return(existing(), nil)
		mockRepo.On("FindByEmail", ctx, "taken@example.com").Return(&User{ID: uuid.New()}, nil)

		_, err := svc.UpdateProfile(ctx, id, ProfilePatch{Email: "taken@example.com"})
		assert.ErrorIs(t, err, ErrEmailExists)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("EmailChanged", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("FindByID", ctx, id).Return(existing(), nil)
		mockRepo.On("FindByEmail", ctx, "new@example.com").Return(nil, ErrNotFound)
		mockRepo.On("Update", ctx, mock.Anything).Return(nil)

		res, err := svc.UpdateProfile(ctx, id, ProfilePatch{Email: "new@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", res.User.Email)
	})

	t.Run("PasswordTooLong", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		_, err := svc.UpdateProfile(ctx, id, ProfilePatch{Password: strings.Repeat("a", 73)})

		var verrs validation.Errors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "must be at most 72 bytes", fieldErrorFor(verrs, "password"))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		svc, _, _ := newTestService(new(MockRepository))

		_, err := svc.UpdateProfile(ctx, id, ProfilePatch{Email: "nope"})

		var verrs validation.Errors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("UserMissing", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("FindByID", ctx, id).Return(nil, ErrNotFound)

		_, err := svc.UpdateProfile(ctx, id, ProfilePatch{Name: "X"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Customer", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("FindByID", ctx, id).Return(&User{ID: id, Role: auth.RoleCustomer}, nil)
		mockRepo.On("Delete", ctx, id).Return(nil)

		assert.NoError(t, svc.DeleteUser(ctx, id))
		mockRepo.AssertExpectations(t)
	})

	t.Run("AdminRefused", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("FindByID", ctx, id).Return(&User{ID: id, Role: auth.RoleAdmin}, nil)

		assert.ErrorIs(t, svc.DeleteUser(ctx, id), ErrCannotDeleteAdmin)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("FindByID", ctx, id).Return(nil, ErrNotFound)

		assert.ErrorIs(t, svc.DeleteUser(ctx, id), ErrNotFound)
	})
}

func TestService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	seed := AdminSeed{Name: "Admin", Email: "admin@velora.test", Password: "admin123", Phone: "555"}

	t.Run("Creates", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("ExistsByRole", ctx, auth.RoleAdmin).Return(false, nil)
		mockRepo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Role == auth.RoleAdmin && u.Email == seed.Email && auth.CheckPassword(seed.Password, u.Password)
		})).Return(nil)

		u, created, err := svc.EnsureAdmin(ctx, seed)
		require.NoError(t, err)
		assert.True(t, created)
		require.NotNil(t, u.Phone)
		assert.Equal(t, "555", *u.Phone)
	})

	t.Run("PasswordTooLong", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("ExistsByRole", ctx, auth.RoleAdmin).Return(false, nil)

		long := seed
		long.Password = strings.Repeat("a", 100)
		_, created, err := svc.EnsureAdmin(ctx, long)
		assert.ErrorIs(t, err, auth.ErrPasswordTooLong)
		assert.False(t, created)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("AlreadyPresent", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _, _ := newTestService(mockRepo)

		mockRepo.On("ExistsByRole", ctx, auth.RoleAdmin).Return(true, nil)

		u, created, err := svc.EnsureAdmin(ctx, seed)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Nil(t, u)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_ListUsers(t *testing.T) {
	mockRepo := new(MockRepository)
	svc, _, _ := newTestService(mockRepo)
	ctx := context.Background()

	users := []*User{{ID: uuid.New()}, {ID: uuid.New()}}
	mockRepo.On("List", ctx).Return(users, nil)

	got, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
