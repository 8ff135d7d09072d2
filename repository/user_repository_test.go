package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/invoicely/models"
)

func TestUserCreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user := &models.User{Name: "Alice", Email: "alice@example.com", Phone: "9876543210", Password: "hash"}
	require.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "alice@example.com", found.Email)

	byEmail, err := repo.FindOne(map[string]any{"email": "alice@example.com"})
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	missing, err := repo.FindByID("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserFindByEmailOrPhone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.Create(&models.User{Name: "Alice", Email: "alice@example.com", Phone: "9876543210", Password: "hash"}))

	t.Run("matches email", func(t *testing.T) {
		found, err := repo.FindByEmailOrPhone("alice@example.com", "")
		require.NoError(t, err)
		assert.NotNil(t, found)
	})

	t.Run("matches phone with different email", func(t *testing.T) {
		found, err := repo.FindByEmailOrPhone("other@example.com", "9876543210")
		require.NoError(t, err)
		assert.NotNil(t, found)
	})

	t.Run("no match", func(t *testing.T) {
		found, err := repo.FindByEmailOrPhone("other@example.com", "1234567890")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestUserFindAllFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.Create(&models.User{Name: "Alice Smith", Email: "alice@example.com", Password: "h", Role: models.RoleCustomer}))
	require.NoError(t, repo.Create(&models.User{Name: "Bob Jones", Email: "bob@example.com", Password: "h", Role: models.RoleCustomer}))
	require.NoError(t, repo.Create(&models.User{Name: "Root", Email: "admin@example.com", Password: "h", Role: models.RoleAdmin}))

	t.Run("by role", func(t *testing.T) {
		users, err := repo.FindAll(UserListOptions{Filters: UserFilters{Role: models.RoleCustomer}})
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("by partial name", func(t *testing.T) {
		users, err := repo.FindAll(UserListOptions{Filters: UserFilters{Name: "Alice"}})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "alice@example.com", users[0].Email)
	})

	t.Run("pagination", func(t *testing.T) {
		users, err := repo.FindAll(UserListOptions{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, users, 2)

		users, err = repo.FindAll(UserListOptions{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestUserSoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user := &models.User{Name: "Alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, repo.Create(user))
	require.NoError(t, repo.Delete(user.ID))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	// Row still exists, only marked deleted.
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
