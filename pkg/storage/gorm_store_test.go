package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormKVSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	kv, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "visitor-1:cart", []byte(`{"oto-parts":[]}`)))
	require.NoError(t, kv.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "visitor-1:cart")
	require.NoError(t, err)
	assert.Equal(t, `{"oto-parts":[]}`, string(got))
}

func TestNewGormMigratesStateTable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	kv, err := NewGorm(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "k", []byte("v1")))
	require.NoError(t, kv.Set(ctx, "k", []byte("v2")))

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, kv.Delete(ctx, "k"))
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewGormRejectsNilDB(t *testing.T) {
	_, err := NewGorm(nil)
	require.Error(t, err)
}
