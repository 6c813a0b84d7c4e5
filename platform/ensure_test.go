// SPDX-License-Identifier: GPL-3.0-only

package platform

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"megatron-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, conn.AutoMigrate(&models.PlatformUser{}))
	return conn
}

func TestEnsureUserCreatesWithDefaults(t *testing.T) {
	conn := testDB(t)

	user, err := EnsureUser(context.Background(), conn, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.False(t, user.IsAdmin)
	assert.False(t, user.IsBlacklisted)
	assert.Zero(t, user.WalletHotBalance)
	assert.Zero(t, user.WalletColdBalance)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	conn := testDB(t)
	ctx := context.Background()

	first, err := EnsureUser(ctx, conn, "bob@example.com")
	require.NoError(t, err)
	second, err := EnsureUser(ctx, conn, "bob@example.com")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, conn.Model(&models.PlatformUser{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnsureUserConcurrent(t *testing.T) {
	conn := testDB(t)
	ctx := context.Background()

	const callers = 8
	results := make([]*models.PlatformUser, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = EnsureUser(ctx, conn, "race@example.com")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, "race@example.com", results[i].Email)
	}

	var count int64
	require.NoError(t, conn.Model(&models.PlatformUser{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnsureUserNilConnIsNoop(t *testing.T) {
	user, err := EnsureUser(context.Background(), nil, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
}
