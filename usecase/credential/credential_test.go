package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskr/domain"
	"github.com/fastygo/taskr/repository/sqlite"
)

func newTestUseCase(t *testing.T, caseInsensitive bool) *UseCase {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(sqlite.NewUserRepository(db), Options{
		EmailCaseInsensitive: caseInsensitive,
		BcryptCost:           bcrypt.MinCost,
	}, nil)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t, true)

	user, err := uc.Register(ctx, "Aleksandr", "aleksandr@gogo.com", "python")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "python", user.PasswordHash)

	t.Run("same name different email", func(t *testing.T) {
		_, err := uc.Register(ctx, "Aleksandr", "other@gogo.com", "python")
		assert.ErrorIs(t, err, domain.ErrDuplicateUser)
	})

	t.Run("same email different name", func(t *testing.T) {
		_, err := uc.Register(ctx, "Someone", "aleksandr@gogo.com", "python")
		assert.ErrorIs(t, err, domain.ErrDuplicateUser)
	})

	t.Run("email differing only in case", func(t *testing.T) {
		_, err := uc.Register(ctx, "Another", "Aleksandr@gogo.com", "python")
		assert.ErrorIs(t, err, domain.ErrDuplicateUser)
	})

	t.Run("missing fields", func(t *testing.T) {
		cases := []struct {
			name, email, password, field string
		}{
			{"", "a@b.c", "pw", "name"},
			{"bob", "", "pw", "email"},
			{"bob", "bob@b.c", "", "password"},
		}
		for _, tc := range cases {
			_, err := uc.Register(ctx, tc.name, tc.email, tc.password)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
			assert.Equal(t, tc.field, domain.FieldOf(err))
		}
	})
}

func TestRegister_CaseSensitiveEmail(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t, false)

	_, err := uc.Register(ctx, "Aleksandr", "aleksandr@gogo.com", "python")
	require.NoError(t, err)
	_, err = uc.Register(ctx, "Another", "Aleksandr@gogo.com", "python")
	assert.NoError(t, err)
}

func TestRegisterAdmin(t *testing.T) {
	uc := newTestUseCase(t, true)
	admin, err := uc.RegisterAdmin(context.Background(), "Skynet", "skynet@gogo.com", "skynet")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t, true)

	registered, err := uc.Register(ctx, "Aleksandr", "aleksandr@gogo.com", "python")
	require.NoError(t, err)

	user, err := uc.Authenticate(ctx, "Aleksandr", "python")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, unknownErr := uc.Authenticate(ctx, "foo", "bar")
	_, wrongErr := uc.Authenticate(ctx, "Aleksandr", "wrong")

	assert.ErrorIs(t, unknownErr, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, domain.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	_, err = uc.Authenticate(ctx, "aleksandr", "python")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "names are case-sensitive")
}

func TestNew_InvalidCostFallsBack(t *testing.T) {
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	uc := New(sqlite.NewUserRepository(db), Options{BcryptCost: 99}, nil)
	assert.Equal(t, bcrypt.DefaultCost, uc.opts.BcryptCost)
	require.NotEmpty(t, uc.dummyHash)

	cost, err := bcrypt.Cost(uc.dummyHash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
