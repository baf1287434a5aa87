// storage/objects.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tictactoe-arena/models"
)

// ObjectStore keeps JSON documents in postgres, one row per (collection, key, user).
type ObjectStore struct {
	DB *gorm.DB
}

func NewObjectStore(db *gorm.DB) *ObjectStore {
	return &ObjectStore{DB: db}
}

func objectScope(collection, key, userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("collection = ? AND key = ? AND user_id = ?", collection, key, userID)
	}
}

func (s *ObjectStore) Read(ctx context.Context, collection, key, userID string) ([]byte, bool, error) {
	var obj models.StorageObject
	err := s.DB.WithContext(ctx).Scopes(objectScope(collection, key, userID)).First(&obj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(obj.Value), true, nil
}

// Update locks the row, hands its value to fn and stores the result. A
// version 0 placeholder is inserted first so even the first write of an
// object goes through the row lock.
func (s *ObjectStore) Update(ctx context.Context, collection, key, userID string, fn func(current []byte, found bool) ([]byte, error)) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		placeholder := models.StorageObject{
			ID:         uuid.NewString(),
			Collection: collection,
			Key:        key,
			UserID:     userID,
			Value:      "{}",
			Version:    0,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "key"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&placeholder).Error
		if err != nil {
			return fmt.Errorf("reserve %s/%s for %s: %w", collection, key, userID, err)
		}

		var obj models.StorageObject
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(objectScope(collection, key, userID)).
			First(&obj).Error
		if err != nil {
			return err
		}

		found := obj.Version > 0
		var current []byte
		if found {
			current = []byte(obj.Value)
		}
		next, err := fn(current, found)
		if err != nil {
			return err
		}

		return tx.Model(&obj).Updates(map[string]interface{}{
			"value":   string(next),
			"version": gorm.Expr("version + 1"),
		}).Error
	})
}

// Delete hard-deletes the object. A missing object is not an error.
func (s *ObjectStore) Delete(ctx context.Context, collection, key, userID string) error {
	err := s.DB.WithContext(ctx).Unscoped().
		Scopes(objectScope(collection, key, userID)).
		Delete(&models.StorageObject{}).Error
	if err != nil {
		return fmt.Errorf("delete %s/%s for %s: %w", collection, key, userID, err)
	}
	return nil
}
