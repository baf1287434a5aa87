package models

import "time"

// Account is the local record of a player. ID is the identity issued by the
// auth service (X-User-ID); the service never creates identities itself.
type Account struct {
	ID          string     `gorm:"primaryKey;type:varchar(128)" json:"id"`
	Username    string     `gorm:"index;not null" json:"username"`
	DisplayName string     `gorm:"not null" json:"display_name"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`

	Timestamps
}
