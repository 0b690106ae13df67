package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// StateEntry is the single-table layout for the embedded KV adapter.
type StateEntry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     []byte `gorm:"column:value"`
	UpdatedAt time.Time
}

// TableName pins the table name independent of gorm's pluralization.
func (StateEntry) TableName() string { return "state_entries" }

// GormKV is an embedded durable adapter for single-node deployments that run
// without Redis.
type GormKV struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) the embedded database at path.
func OpenSQLite(path string) (*GormKV, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite at %s: %w", path, err)
	}
	return NewGorm(db)
}

// NewGorm wraps an existing gorm DB and ensures the state table exists.
func NewGorm(db *gorm.DB) (*GormKV, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db is required")
	}
	if err := db.AutoMigrate(&StateEntry{}); err != nil {
		return nil, fmt.Errorf("migrating state table: %w", err)
	}
	return &GormKV{db: db}, nil
}

func (g *GormKV) Get(ctx context.Context, key string) ([]byte, error) {
	var entry StateEntry
	err := g.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry.Value, nil
}

func (g *GormKV) Set(ctx context.Context, key string, value []byte) error {
	entry := StateEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (g *GormKV) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Delete(&StateEntry{}, "key = ?", key).Error
}

// Close releases the underlying connection pool.
func (g *GormKV) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
