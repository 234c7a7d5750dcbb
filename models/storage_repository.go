package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageEntry is one value of the durable key-value store that backs
// shopper carts.
type StorageEntry struct {
	Key       string `gorm:"primaryKey;column:storage_key"`
	Value     []byte `gorm:"type:bytea;not null"`
	UpdatedAt time.Time
}

func (e *StorageEntry) TableName() string {
	return "storage_entries"
}

type StorageRepository struct {
	db *gorm.DB
}

func NewStorageRepository(db *gorm.DB) *StorageRepository {
	return &StorageRepository{db: db}
}

// Get returns the value stored under key. ok is false when nothing is stored.
func (r *StorageRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry StorageEntry
	if err := r.db.WithContext(ctx).
		Where("storage_key = ?", key).
		Take(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Value, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *StorageRepository) Set(ctx context.Context, key string, value []byte) error {
	entry := StorageEntry{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "storage_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

// Delete removes key. Deleting a missing key is not an error.
func (r *StorageRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("storage_key = ?", key).
		Delete(&StorageEntry{}).Error
}
