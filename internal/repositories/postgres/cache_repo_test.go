package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stratus-tools/bug-advisor/internal/models"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.QueryLog{},
		&models.CachedResponse{},
		&models.AdminUser{},
		&models.ConfigEntry{},
	))
	return db
}

func cachedRow(hash string, expiresAt time.Time) *models.CachedResponse {
	return &models.CachedResponse{
		QueryHash:    hash,
		Product:      "allocator",
		ResponseText: "check geocoding.xml",
		Confidence:   0.85,
		CreatedAt:    time.Now().UTC(),
		ExpiresAt:    expiresAt,
	}
}

func TestCacheLookupHitAndIncrement(t *testing.T) {
	db := newTestDB(t)
	repo := NewCacheRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, cachedRow("h1", now.Add(time.Hour))))

	row, err := repo.Lookup(ctx, "h1", "allocator", now)
	require.NoError(t, err)
	assert.Equal(t, "check geocoding.xml", row.ResponseText)

	// One increment per hit, monotonic.
	require.NoError(t, repo.IncrementHit(ctx, "h1"))
	require.NoError(t, repo.IncrementHit(ctx, "h1"))

	row, err = repo.Lookup(ctx, "h1", "allocator", now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, row.HitCount)
}

func TestCacheLookupExpiredBehavesAsMiss(t *testing.T) {
	db := newTestDB(t)
	repo := NewCacheRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, cachedRow("h2", now.Add(-time.Minute))))

	_, err := repo.Lookup(ctx, "h2", "allocator", now)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	// Row is still physically present.
	var count int64
	require.NoError(t, db.Model(&models.CachedResponse{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCacheUpsertOverwritesExpiredRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewCacheRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, cachedRow("h3", now.Add(-time.Minute))))
	require.NoError(t, repo.IncrementHit(ctx, "h3"))

	fresh := cachedRow("h3", now.Add(time.Hour))
	fresh.ResponseText = "rerun the batch"
	require.NoError(t, repo.Upsert(ctx, fresh))

	row, err := repo.Lookup(ctx, "h3", "allocator", now)
	require.NoError(t, err)
	assert.Equal(t, "rerun the batch", row.ResponseText)
	assert.Zero(t, row.HitCount)

	var count int64
	require.NoError(t, db.Model(&models.CachedResponse{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCacheLookupWrongProductMisses(t *testing.T) {
	db := newTestDB(t)
	repo := NewCacheRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, cachedRow("h4", now.Add(time.Hour))))

	_, err := repo.Lookup(ctx, "h4", "municipal", now)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestAdminRecordFailureLocksAtThreshold(t *testing.T) {
	db := newTestDB(t)
	repo := NewAdminUserRepo(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.AdminUser{Username: "admin", PasswordHash: "x", IsActive: true}).Error)
	user, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)

	lockUntil := time.Now().UTC().Add(30 * time.Minute)
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.RecordFailure(ctx, user.ID, 5, lockUntil))
	}

	user, err = repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, 4, user.LoginAttempts)
	assert.Nil(t, user.LockedUntil)

	// Fifth failure crosses the threshold in the same statement.
	require.NoError(t, repo.RecordFailure(ctx, user.ID, 5, lockUntil))
	user, err = repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, 5, user.LoginAttempts)
	require.NotNil(t, user.LockedUntil)
}
