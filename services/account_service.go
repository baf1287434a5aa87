// services/account_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"tictactoe-arena/models"
)

var (
	ErrAccountDelete = errors.New("failed to delete account record")
	ErrInvalidAvatar = errors.New("avatar must be a png, jpg or webp image")
	ErrNoAvatarStore = errors.New("avatar storage is not configured")
)

// AccountRepository stores the core account record.
type AccountRepository interface {
	Ensure(ctx context.Context, account *models.Account) (*models.Account, error)
	Get(ctx context.Context, id string) (*models.Account, error)
	SetAvatar(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
}

// AvatarBucket is the object store holding uploaded avatars.
type AvatarBucket interface {
	Upload(ctx context.Context, key string, file *multipart.FileHeader) (string, error)
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

type AccountService struct {
	Accounts AccountRepository
	Scores   *ScoreService
	Streaks  *StreakService
	Avatars  AvatarBucket
}

func NewAccountService(accounts AccountRepository, scores *ScoreService, streaks *StreakService, avatars AvatarBucket) *AccountService {
	return &AccountService{Accounts: accounts, Scores: scores, Streaks: streaks, Avatars: avatars}
}

// Username derives the handle stored on the account.
func Username(userID, displayName string) string {
	if u := slug.Make(displayName); u != "" {
		return u
	}
	short := userID
	if len(short) > 8 {
		short = short[:8]
	}
	return "player-" + short
}

// EnsureAccount returns the caller's account, creating it on first sight, and
// stamps it as seen now.
func (s *AccountService) EnsureAccount(ctx context.Context, userID, displayName string) (*models.Account, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = userID
	}
	now := time.Now().UTC()
	acc, err := s.Accounts.Ensure(ctx, &models.Account{
		ID:          userID,
		Username:    Username(userID, displayName),
		DisplayName: displayName,
		LastSeen:    &now,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure account %s: %w", userID, err)
	}
	return acc, nil
}

func avatarPrefix(userID string) string {
	return "avatars/" + userID + "/"
}

// UploadAvatar stores the image and points the account at it.
func (s *AccountService) UploadAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (string, error) {
	if s.Avatars == nil {
		return "", ErrNoAvatarStore
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		return "", ErrInvalidAvatar
	}

	key := avatarPrefix(userID) + uuid.NewString() + ext
	url, err := s.Avatars.Upload(ctx, key, file)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	if err := s.Accounts.SetAvatar(ctx, userID, url); err != nil {
		return "", fmt.Errorf("save avatar url: %w", err)
	}
	log.Printf("[ACCOUNT] 🖼️ Avatar updated for %s: %s", userID, key)
	return url, nil
}

// DeleteAccountData removes everything held for the player. Ledger and avatar
// removals are best effort; only the core record failing is an error.
func (s *AccountService) DeleteAccountData(ctx context.Context, userID string) error {
	if err := s.Scores.Delete(ctx, userID); err != nil {
		log.Printf("[ACCOUNT] ⚠️ Ranking cleanup failed for %s: %v", userID, err)
	}
	if err := s.Streaks.Delete(ctx, userID); err != nil {
		log.Printf("[ACCOUNT] ⚠️ Streak cleanup failed for %s: %v", userID, err)
	}
	if s.Avatars != nil {
		if n, err := s.Avatars.DeletePrefix(ctx, avatarPrefix(userID)); err != nil {
			log.Printf("[ACCOUNT] ⚠️ Avatar cleanup failed for %s: %v", userID, err)
		} else if n > 0 {
			log.Printf("[ACCOUNT] 🧹 Removed %d avatar object(s) for %s", n, userID)
		}
	}

	if err := s.Accounts.Delete(ctx, userID); err != nil {
		log.Printf("[ACCOUNT] ❌ Failed to delete account record %s: %v", userID, err)
		return fmt.Errorf("%w: %v", ErrAccountDelete, err)
	}
	log.Printf("[ACCOUNT] 🗑️ Account data deleted for %s", userID)
	return nil
}
