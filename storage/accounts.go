// storage/accounts.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tictactoe-arena/models"
)

var ErrAccountNotFound = errors.New("account not found")

type AccountStore struct {
	DB *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{DB: db}
}

// Ensure inserts the account unless it already exists and returns the stored
// row. An existing row only has last_seen refreshed.
func (s *AccountStore) Ensure(ctx context.Context, account *models.Account) (*models.Account, error) {
	db := s.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen"}),
	}).Create(account).Error
	if err != nil {
		return nil, err
	}
	var stored models.Account
	if err := db.Where("id = ?", account.ID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *AccountStore) Get(ctx context.Context, id string) (*models.Account, error) {
	var acc models.Account
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (s *AccountStore) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Account
	if err := s.DB.WithContext(ctx).Select("id", "display_name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r.DisplayName
	}
	return out, nil
}

func (s *AccountStore) SetAvatar(ctx context.Context, id, url string) error {
	res := s.DB.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("avatar_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Delete hard-deletes the account. Deleting a missing account succeeds.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	if err := s.DB.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.Account{}).Error; err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	return nil
}

// UpsertProfile writes profile fields pulled from the profile service.
func (s *AccountStore) UpsertProfile(ctx context.Context, account *models.Account) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "display_name", "avatar_url", "updated_at"}),
	}).Create(account).Error
}

// LastProfileUpdate is the newest updated_at in the table, or the zero time.
func (s *AccountStore) LastProfileUpdate(ctx context.Context) time.Time {
	var last *time.Time
	err := s.DB.WithContext(ctx).Raw("SELECT MAX(updated_at) FROM accounts WHERE deleted_at IS NULL").Scan(&last).Error
	if err != nil || last == nil {
		return time.Time{}
	}
	return *last
}
