package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskr/domain"
	"github.com/fastygo/taskr/repository/sqlite"
)

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	users := sqlite.NewUserRepository(db)
	user := &domain.User{Name: "Aleksandr", Email: "aleks@gogo.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, user))

	uc := New(users, nil)

	got, err := uc.GetProfile(ctx, &domain.Session{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, "Aleksandr", got.Name)

	_, err = uc.GetProfile(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = uc.GetProfile(ctx, &domain.Session{UserID: "gone"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
