package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stocktally-backend/pkg/db/models"
)

func setupUsersTestDB(t *testing.T) *Repository {
	t.Helper()

	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	return NewRepository(db)
}

func TestCreateAndFind(t *testing.T) {
	repo := setupUsersTestDB(t)
	ctx := context.Background()

	token := uuid.NewString()
	created, err := repo.Create(ctx, CreateUserDTO{
		Email:             "nino@example.com",
		Username:          "nino",
		PasswordHash:      "hash",
		VerificationToken: &token,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	byEmail, err := repo.FindByEmail(ctx, "nino@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byUsername, err := repo.FindByUsername(ctx, "nino")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)

	_, err = repo.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMarkVerified(t *testing.T) {
	repo := setupUsersTestDB(t)
	ctx := context.Background()

	token := uuid.NewString()
	created, err := repo.Create(ctx, CreateUserDTO{
		Email:             "nino@example.com",
		Username:          "nino",
		PasswordHash:      "hash",
		VerificationToken: &token,
	})
	require.NoError(t, err)
	require.False(t, created.IsVerified)

	require.NoError(t, repo.MarkVerified(ctx, created.ID))

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsVerified)
	assert.Nil(t, reloaded.VerificationToken)
}

func TestUpdateLastLogin(t *testing.T) {
	repo := setupUsersTestDB(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "nino@example.com",
		Username:     "nino",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.Nil(t, created.LastLoginAt)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.WithinDuration(t, at, *reloaded.LastLoginAt, time.Second)
}

func TestListIDsReturnsEveryUser(t *testing.T) {
	repo := setupUsersTestDB(t)
	ctx := context.Background()

	want := map[uuid.UUID]bool{}
	for _, name := range []string{"alpha", "beta", "gamma"} {
		created, err := repo.Create(ctx, CreateUserDTO{
			Email:        name + "@example.com",
			Username:     name,
			PasswordHash: "hash",
		})
		require.NoError(t, err)
		want[created.ID] = true
	}

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	for _, id := range ids {
		assert.True(t, want[id], "unexpected id %s", id)
	}
}
