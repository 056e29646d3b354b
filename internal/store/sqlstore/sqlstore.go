// Package sqlstore is a Postgres-backed kv.Store built on gorm, for setups
// where several machines share one history.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/hay-kot/lingo/internal/core/kv"
)

// entryRow is the kv_entries table.
type entryRow struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (entryRow) TableName() string { return "kv_entries" }

func (r entryRow) entry() kv.Entry {
	return kv.Entry{Key: r.Key, Value: r.Value, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// Store implements kv.Store and kv.Updater on a kv_entries table.
type Store struct {
	db *gorm.DB
}

var (
	_ kv.Store   = (*Store)(nil)
	_ kv.Updater = (*Store)(nil)
)

// Open connects to the database at dsn and migrates the kv_entries table.
func Open(ctx context.Context, dsn string) (*Store, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get gorm sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := gdb.WithContext(ctx).AutoMigrate(&entryRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto-migrate kv_entries: %w", err)
	}

	return &Store{db: gdb}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Get(ctx context.Context, key string) (kv.Entry, error) {
	var row entryRow
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return kv.Entry{}, kv.ErrKeyNotFound
	}
	if err != nil {
		return kv.Entry{}, fmt.Errorf("get %s: %w", key, err)
	}
	return row.entry(), nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, key, func(string, bool) (string, error) { return value, nil })
}

// Update runs fn inside a transaction. A transaction-scoped advisory lock on
// the key covers the case where the row does not exist yet, and the row
// itself is read with FOR UPDATE.
func (s *Store) Update(ctx context.Context, key string, fn kv.UpdateFunc) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}

		var row entryRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", key).
			First(&row).Error
		found := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("read %s: %w", key, err)
		}

		next, err := fn(row.Value, found)
		if err != nil {
			return err
		}

		if !found {
			row = entryRow{Key: key, Value: next}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert %s: %w", key, err)
			}
			return nil
		}

		if row.Value == next {
			return nil
		}
		if err := tx.Model(&row).Update("value", next).Error; err != nil {
			return fmt.Errorf("update %s: %w", key, err)
		}
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("key = ?", key).Delete(&entryRow{})
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return kv.ErrKeyNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]kv.Entry, error) {
	var rows []entryRow
	q := s.db.WithContext(ctx).Order("key ASC")
	if prefix != "" {
		q = q.Where("starts_with(key, ?)", prefix)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	entries := make([]kv.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}
