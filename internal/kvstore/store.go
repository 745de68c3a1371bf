package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/fieldbill/pkg/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Record is a named JSON blob. Each ledger persists its whole collection
// as one record.
type Record struct {
	Key       string         `gorm:"primaryKey;size:128"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (Record) TableName() string {
	return "kv_records"
}

type Store interface {
	// Get unmarshals the record into out. The second return is false when
	// the key does not exist; out is left untouched in that case.
	Get(ctx context.Context, key string, out any) (bool, error)
	Put(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

type gormStore struct {
	db *gorm.DB
}

// Provide migrates the backing table and returns the store.
func Provide(gdb *gorm.DB) (Store, error) {
	if err := gdb.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate kv_records: %w", err)
	}
	return &gormStore{db: gdb}, nil
}

func (s *gormStore) Get(ctx context.Context, key string, out any) (bool, error) {
	var rec Record
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(rec.Value, out); err != nil {
		return false, fmt.Errorf("decode record %q: %w", key, err)
	}
	return true, nil
}

func (s *gormStore) Put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	rec := Record{Key: key, Value: raw, UpdatedAt: time.Now().UTC()}

	err = s.db.WithContext(ctx).Create(&rec).Error
	if db.IsDuplicateKeyErr(err) {
		err = s.db.WithContext(ctx).
			Model(&Record{}).
			Where("key = ?", key).
			Updates(map[string]any{"value": rec.Value, "updated_at": rec.UpdatedAt}).
			Error
	}
	return err
}

func (s *gormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&Record{}, "key = ?", key).Error
}
