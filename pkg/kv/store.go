package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jvales/shopstate/pkg/config"
	"github.com/jvales/shopstate/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Store is the durable key-value mirror every manager writes through to.
// Values are JSON serializations; each manager owns a disjoint key, so
// writes never conflict across managers.
type Store struct {
	conn *gorm.DB
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

type entryRecord struct {
	Key       string `gorm:"column:key;primaryKey"`
	Value     []byte `gorm:"column:value"`
	UpdatedAt time.Time
}

func (entryRecord) TableName() string {
	return "kv_entries"
}

// Open boots the embedded SQLite store and ensures the entries table exists.
func Open(ctx context.Context, cfg config.StoreConfig, logg *logger.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	if err := conn.WithContext(ctx).AutoMigrate(&entryRecord{}); err != nil {
		return nil, fmt.Errorf("migrating store: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "key-value store opened")
	}

	return &Store{conn: conn}, nil
}

// Put serializes value and writes it through at key, replacing any
// previous value.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %q: %w", key, err)
	}

	record := entryRecord{Key: key, Value: payload, UpdatedAt: time.Now().UTC()}
	return s.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&record).
		Error
}

// Get decodes the value stored at key into dest. The boolean reports
// whether the key existed.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	var record entryRecord
	err := s.conn.WithContext(ctx).First(&record, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("loading %q: %w", key, err)
	}
	if err := json.Unmarshal(record.Value, dest); err != nil {
		return false, fmt.Errorf("decoding %q: %w", key, err)
	}
	return true, nil
}

// Delete removes the entry at key if present.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.conn.WithContext(ctx).Delete(&entryRecord{}, "key = ?", key).Error
}

// Ping verifies the datasource is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts down the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
